package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetDefaultOrganization(ctx context.Context, userID, organizationID uuid.UUID) error
}

type CredentialRepository interface {
	Create(ctx context.Context, credential *domain.Credential) error
	// GetByEmail resolves a credential and its owning user in one joined
	// query; gorm.ErrRecordNotFound covers both a missing user and a
	// missing credential row.
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

type OrganizationRepository interface {
	Create(ctx context.Context, organization *domain.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
}

type MembershipRepository interface {
	// Create inserts a membership, silently ignoring a duplicate
	// (organization, user) pair.
	Create(ctx context.Context, membership *domain.Membership) error
	Get(ctx context.Context, organizationID, userID uuid.UUID) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.Membership, error)
	// ListByOrganizationForUpdate reads the organization's memberships
	// under row locks. Only meaningful inside a transaction.
	ListByOrganizationForUpdate(ctx context.Context, organizationID uuid.UUID) ([]*domain.Membership, error)
	ListMembers(ctx context.Context, organizationID uuid.UUID) ([]*domain.OrganizationMember, error)
	Delete(ctx context.Context, organizationID, userID uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetActiveByTokenHash returns the session matching hash that is
	// neither revoked nor expired; gorm.ErrRecordNotFound otherwise.
	GetActiveByTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	RevokeByTokenHash(ctx context.Context, hash string) error
	RevokeByID(ctx context.Context, id uuid.UUID) error
	Touch(ctx context.Context, id uuid.UUID) error
	SetActiveOrganization(ctx context.Context, id, organizationID uuid.UUID) error
}

type DashboardRepository interface {
	Create(ctx context.Context, dashboard *domain.Dashboard) error
	GetBySlug(ctx context.Context, organizationID uuid.UUID, slug string) (*domain.Dashboard, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.Dashboard, error)
	Update(ctx context.Context, dashboard *domain.Dashboard) error
	Delete(ctx context.Context, organizationID uuid.UUID, slug string) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int) ([]*domain.AuditLog, error)
}

type Repositories struct {
	User         UserRepository
	Credential   CredentialRepository
	Organization OrganizationRepository
	Membership   MembershipRepository
	Session      SessionRepository
	Dashboard    DashboardRepository
	AuditLog     AuditLogRepository

	// Transaction runs fn against repositories bound to a single
	// database transaction; all writes commit together or not at all.
	Transaction func(ctx context.Context, fn func(repos *Repositories) error) error
}
