// Package models contains data structures for the application's domain models.
package models

// User is an account that can author posts.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"not null" json:"username"`
}

// TableName returns the database table name for User.
func (User) TableName() string {
	return "users"
}
