package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                    uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email                 string     `json:"email" gorm:"uniqueIndex;not null"`
	Name                  string     `json:"name" gorm:"not null"`
	DefaultOrganizationID *uuid.UUID `json:"defaultOrganizationId" gorm:"type:uuid"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Credential stores the password hash for a user, one row per user.
// The hash is a self-describing PHC string; PasswordVersion tags the
// algorithm so future migrations can re-hash on login.
type Credential struct {
	UserID          uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	PasswordHash    string    `json:"-" gorm:"not null"`
	PasswordVersion string    `json:"-" gorm:"not null;default:'argon2id:v1'"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
