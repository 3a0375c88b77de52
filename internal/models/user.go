package models

import (
	"time"

	"farmconnect/internal/identity"
)

// User is a registered farmer or consumer.
type User struct {
	ID                string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string        `json:"name" gorm:"type:varchar(100);not null"`
	Phone             string        `json:"phone" gorm:"uniqueIndex;type:varchar(20);not null"`
	Email             string        `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash      string        `json:"-" gorm:"type:varchar(255);not null"`
	Role              identity.Role `json:"role" gorm:"type:varchar(16);not null"`
	Village           string        `json:"village,omitempty" gorm:"type:varchar(100)"`
	State             string        `json:"state,omitempty" gorm:"type:varchar(100)"`
	City              string        `json:"city,omitempty" gorm:"type:varchar(100)"`
	PreferredLanguage string        `json:"preferred_language" gorm:"type:varchar(2);not null;default:en"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
