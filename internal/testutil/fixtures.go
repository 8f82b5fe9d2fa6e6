package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/service"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	name     string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		name:     "Test User",
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user and credential in the database and returns the
// user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := service.HashPassword(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:        uuid.New(),
		Email:     b.email,
		Name:      b.name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	credential := &domain.Credential{
		UserID:          user.ID,
		PasswordHash:    hash,
		PasswordVersion: "argon2id:v1",
	}
	if err := db.Create(credential).Error; err != nil {
		t.Fatalf("failed to create credential: %v", err)
	}

	return user, b.password
}

// OrganizationBuilder creates test organizations with memberships
type OrganizationBuilder struct {
	name    string
	members []struct {
		userID uuid.UUID
		role   domain.Role
	}
}

// NewOrganizationBuilder creates a new OrganizationBuilder with default values
func NewOrganizationBuilder() *OrganizationBuilder {
	return &OrganizationBuilder{
		name: fmt.Sprintf("org_%s", uuid.New().String()[:8]),
	}
}

// WithName sets the organization name
func (b *OrganizationBuilder) WithName(name string) *OrganizationBuilder {
	b.name = name
	return b
}

// WithMember adds a membership row for the given user and role
func (b *OrganizationBuilder) WithMember(userID uuid.UUID, role domain.Role) *OrganizationBuilder {
	b.members = append(b.members, struct {
		userID uuid.UUID
		role   domain.Role
	}{userID, role})
	return b
}

// Build creates the organization and its memberships in the database
func (b *OrganizationBuilder) Build(t *testing.T, db *gorm.DB) *domain.Organization {
	t.Helper()

	organization := &domain.Organization{
		ID:   uuid.New(),
		Name: b.name,
		Plan: "free",
	}
	if err := db.Create(organization).Error; err != nil {
		t.Fatalf("failed to create organization: %v", err)
	}

	for _, m := range b.members {
		membership := &domain.Membership{
			OrganizationID: organization.ID,
			UserID:         m.userID,
			Role:           m.role,
		}
		if err := db.Create(membership).Error; err != nil {
			t.Fatalf("failed to create membership: %v", err)
		}
	}

	return organization
}
