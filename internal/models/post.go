package models

// Post is a message optionally owned by a User.
// UserID is nil for posts without an author and is never serialized.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Message string `gorm:"not null" json:"message"`
	UserID  *uint  `gorm:"column:user_id" json:"-"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string {
	return "posts"
}
