package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dashboard is a per-organization widget layout. Widgets are stored as an
// opaque JSON document; the backend never interprets their contents.
type Dashboard struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID uuid.UUID      `json:"organizationId" gorm:"type:uuid;not null;index:idx_dashboards_org_slug,unique"`
	Slug           string         `json:"slug" gorm:"not null;index:idx_dashboards_org_slug,unique"`
	Name           string         `json:"name" gorm:"not null"`
	Widgets        datatypes.JSON `json:"widgets" gorm:"not null"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	Organization *Organization `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
