package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	repos *repository.Repositories
	audit *AuditService
}

func NewAuthService(repos *repository.Repositories, audit *AuditService) *AuthService {
	return &AuthService{
		repos: repos,
		audit: audit,
	}
}

type RegisterInput struct {
	Email            string
	Password         string
	Name             string
	OrganizationName string
}

type LoginInput struct {
	Email    string
	Password string
}

type RegisterResult struct {
	User       *domain.User
	Membership *domain.Membership
}

type AuthResult struct {
	User        *domain.User
	Memberships []*domain.Membership
}

// Register creates the organization, user, credential and owner membership
// as one transaction. A failure partway leaves no partial state behind.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(input.Email)

	existing, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var (
		user       *domain.User
		membership *domain.Membership
	)

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		organization := &domain.Organization{
			ID:   uuid.New(),
			Name: input.OrganizationName,
			Plan: "free",
		}
		if err := tx.Organization.Create(ctx, organization); err != nil {
			return err
		}

		user = &domain.User{
			ID:                    uuid.New(),
			Email:                 email,
			Name:                  input.Name,
			DefaultOrganizationID: &organization.ID,
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}

		credential := &domain.Credential{
			UserID:          user.ID,
			PasswordHash:    passwordHash,
			PasswordVersion: "argon2id:v1",
		}
		if err := tx.Credential.Create(ctx, credential); err != nil {
			return err
		}

		membership = &domain.Membership{
			OrganizationID: organization.ID,
			UserID:         user.ID,
			Role:           domain.RoleOwner,
			Organization:   organization,
		}
		return tx.Membership.Create(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "user.register", &user.ID, &membership.OrganizationID, map[string]interface{}{
		"email": user.Email,
	})

	return &RegisterResult{User: user, Membership: membership}, nil
}

// Authenticate verifies email and password. A missing account and a wrong
// password fail with the same error so callers cannot tell them apart.
func (s *AuthService) Authenticate(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(input.Email)

	// One joined read: a user without a credential row fails the same way
	// as an unknown email.
	credential, err := s.repos.Credential.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	user := credential.User

	if !VerifyPassword(input.Password, credential.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	memberships, err := s.repos.Membership.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "user.login", &user.ID, user.DefaultOrganizationID, nil)

	return &AuthResult{User: user, Memberships: memberships}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ListMemberships(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	return s.repos.Membership.ListByUser(ctx, userID)
}

// SelectActiveOrganization picks the organization context for a fresh
// session: the user's default organization if they still belong to it,
// else their first owner membership, else their first membership.
func SelectActiveOrganization(user *domain.User, memberships []*domain.Membership) *uuid.UUID {
	if user.DefaultOrganizationID != nil {
		for _, m := range memberships {
			if m.OrganizationID == *user.DefaultOrganizationID {
				id := m.OrganizationID
				return &id
			}
		}
	}
	for _, m := range memberships {
		if m.Role == domain.RoleOwner {
			id := m.OrganizationID
			return &id
		}
	}
	if len(memberships) > 0 {
		id := memberships[0].OrganizationID
		return &id
	}
	return nil
}
