package model

import "time"

// User is an account. Password accounts carry HashedPassword, OAuth accounts
// carry OAuthProvider and OAuthID; linked accounts carry both.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	Username       *string   `json:"username" gorm:"uniqueIndex" bson:"username,omitempty"`
	HashedPassword *string   `json:"-" bson:"hashed_password,omitempty"`
	OAuthProvider  *string   `json:"oauth_provider" gorm:"column:oauth_provider;uniqueIndex:idx_users_oauth" bson:"oauth_provider,omitempty"`
	OAuthID        *string   `json:"-" gorm:"column:oauth_id;uniqueIndex:idx_users_oauth" bson:"oauth_id,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.HashedPassword != nil && *u.HashedPassword != ""
}
