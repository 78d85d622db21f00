package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// TeacherProfile stores teaching staff data, including the classes the
// teacher is allotted to. The class list is persisted as a delimited column
// and hydrated through GORM hooks.
type TeacherProfile struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              *uint     `gorm:"index" json:"user_id"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	Email               string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Subject             string    `gorm:"size:128" json:"subject"`
	Bio                 string    `gorm:"type:text" json:"bio"`
	PhotoURL            *string   `gorm:"size:512" json:"photo_url"`
	AllottedClassesRaw  string    `gorm:"column:allotted_classes;type:text" json:"-"`
	NotificationsOn     bool      `gorm:"default:true" json:"notifications_enabled"`
	EmailNotifications  bool      `gorm:"default:true" json:"email_notifications"`
	AutoRecord          bool      `json:"auto_record"`
	IsActive            bool      `gorm:"default:true" json:"is_active"`
	AddedByAdmin        bool      `json:"added_by_admin"`
	TotalStudents       int       `json:"total_students"`
	ClassesHeld         int       `json:"classes_held"`
	ContentCreated      int       `json:"content_created"`
	AverageRating       float64   `json:"average_rating"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	AllottedClasses     []string  `gorm:"-" json:"allotted_classes"`
}

// BeforeSave normalises the allotted class list before persisting.
func (t *TeacherProfile) BeforeSave(tx *gorm.DB) error {
	t.AllottedClassesRaw = encodeClassList(t.AllottedClasses)
	return nil
}

// AfterFind hydrates the class list after retrieval.
func (t *TeacherProfile) AfterFind(tx *gorm.DB) error {
	t.AllottedClasses = decodeClassList(t.AllottedClassesRaw)
	return nil
}

// HasClass reports whether the teacher is allotted to the given class.
func (t *TeacherProfile) HasClass(className string) bool {
	target := strings.TrimSpace(className)
	for _, class := range t.AllottedClasses {
		if class == target {
			return true
		}
	}
	return false
}

func encodeClassList(classes []string) string {
	if len(classes) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(classes))
	for _, class := range classes {
		trimmed := strings.TrimSpace(class)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeClassList(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	classes := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		classes = append(classes, trimmed)
	}
	return classes
}
