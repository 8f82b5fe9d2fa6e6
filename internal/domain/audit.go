package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records a security-relevant event. User and organization
// references are nullable and survive deletion of either.
type AuditLog struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         *uuid.UUID     `json:"userId" gorm:"type:uuid"`
	OrganizationID *uuid.UUID     `json:"organizationId" gorm:"type:uuid"`
	Action         string         `json:"action" gorm:"not null"`
	Metadata       datatypes.JSON `json:"metadata"`
	CreatedAt      time.Time      `json:"createdAt"`

	User         *User         `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Organization *Organization `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}
