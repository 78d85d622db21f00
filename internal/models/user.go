package models

import "time"

// Platform roles, lowest to highest privilege.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is a platform account. Students carry the class they are enrolled
// in; teachers and admins additionally appear in their own tables.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         string     `gorm:"size:32;default:student;index" json:"role"`
	StudentClass string     `gorm:"size:64;index" json:"student_class"`
	PhotoURL     *string    `gorm:"size:512" json:"photo_url"`
	LastActiveAt *time.Time `json:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Admin marks an account as a platform administrator. Either the user ID
// or the email may identify the account.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
