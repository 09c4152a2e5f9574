package models

import "time"

const (
	UserRoleAdmin  = "admin"
	UserRoleEditor = "editor"
)

// User is an operator of the console. Versions and audit entries record the
// username of the user who performed the change.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:'editor'" json:"role"`
}
