package model

// Task is a unit of work owned by exactly one user. The id is chosen by the
// client and must be unique across the whole store.
type Task struct {
	ID             string   `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID         uint     `json:"-" gorm:"index;not null" bson:"user_id"`
	Title          string   `json:"title" bson:"title"`
	Category       string   `json:"category" bson:"category"`
	Status         string   `json:"status" bson:"status"`
	CreatedAt      string   `json:"created_at" gorm:"autoCreateTime:false" bson:"created_at"`
	EstimatedHours *float64 `json:"estimated_hours" bson:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours" bson:"actual_hours,omitempty"`
}

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Status   string
	Category string
}
