package model

import "time"

// Category is a user-defined label. Names are not unique.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID    uint      `json:"-" gorm:"index;not null" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
