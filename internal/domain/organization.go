package domain

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	Plan      string    `json:"plan" gorm:"not null;default:'free'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether a member with this role may mutate the
// organization's membership. Explicit case match, not ordinal comparison,
// so adding a role never silently grants management rights.
func (r Role) CanManage() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// Membership binds a user to an organization with a role. At most one
// membership exists per (organization, user) pair.
type Membership struct {
	OrganizationID uuid.UUID `json:"organizationId" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey;index"`
	Role           Role      `json:"role" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Organization *Organization `json:"organization,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	User         *User         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// OrganizationMember is the read-only projection returned when listing
// an organization's members: membership role joined with user identity.
type OrganizationMember struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}
