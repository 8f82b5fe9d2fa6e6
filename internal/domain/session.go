package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one authenticated device or browser. Only the keyed
// hash of the client-held token is stored; the raw token leaves the server
// exactly once, inside the session cookie.
type Session struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID               uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	ActiveOrganizationID *uuid.UUID `json:"activeOrganizationId" gorm:"type:uuid"`
	TokenHash            string     `json:"-" gorm:"uniqueIndex;not null"`
	UserAgent            *string    `json:"userAgent"`
	IPAddress            *string    `json:"ipAddress"`
	CreatedAt            time.Time  `json:"createdAt"`
	ExpiresAt            time.Time  `json:"expiresAt" gorm:"not null"`
	RevokedAt            *time.Time `json:"revokedAt"`
	LastSeenAt           *time.Time `json:"lastSeenAt"`

	User               *User         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ActiveOrganization *Organization `json:"-" gorm:"foreignKey:ActiveOrganizationID;constraint:OnDelete:SET NULL"`
}
