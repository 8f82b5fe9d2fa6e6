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
	ErrUserNotFound  = errors.New("user not found")
	ErrNotAuthorized = errors.New("not authorized to manage organization")
	ErrLastOwner     = errors.New("cannot remove the last owner")
)

type OrganizationService struct {
	repos *repository.Repositories
	audit *AuditService
}

func NewOrganizationService(repos *repository.Repositories, audit *AuditService) *OrganizationService {
	return &OrganizationService{
		repos: repos,
		audit: audit,
	}
}

// GetMembership returns the caller's membership in an organization, or nil
// when none exists.
func (s *OrganizationService) GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*domain.Membership, error) {
	membership, err := s.repos.Membership.Get(ctx, organizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}

// EnsureCanManage is the single authorization gate for membership-mutating
// operations: only owners and admins pass.
func (s *OrganizationService) EnsureCanManage(ctx context.Context, userID, organizationID uuid.UUID) (*domain.Membership, error) {
	membership, err := s.GetMembership(ctx, userID, organizationID)
	if err != nil {
		return nil, err
	}
	if membership == nil || !membership.Role.CanManage() {
		return nil, ErrNotAuthorized
	}
	return membership, nil
}

type AddMemberInput struct {
	OrganizationID uuid.UUID
	Email          string
	Role           domain.Role
}

// AddMemberByEmail adds an already-registered user to the organization.
// A duplicate add for the same (organization, user) pair is a no-op.
func (s *OrganizationService) AddMemberByEmail(ctx context.Context, input AddMemberInput) error {
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleMember {
		return domain.ErrInvalidRole
	}

	user, err := s.repos.User.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	membership := &domain.Membership{
		OrganizationID: input.OrganizationID,
		UserID:         user.ID,
		Role:           input.Role,
	}
	if err := s.repos.Membership.Create(ctx, membership); err != nil {
		return err
	}

	s.audit.Record(ctx, "organization.member_added", &user.ID, &input.OrganizationID, map[string]interface{}{
		"role": string(input.Role),
	})

	return nil
}

// RemoveMember deletes a membership, refusing to remove the organization's
// last owner. The owner count is read under FOR UPDATE row locks inside the
// delete's transaction: a racing removal blocks on the locked rows and then
// re-counts against the committed state, so two concurrent removals cannot
// both observe a spare owner.
func (s *OrganizationService) RemoveMember(ctx context.Context, organizationID, userID uuid.UUID) error {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		members, err := tx.Membership.ListByOrganizationForUpdate(ctx, organizationID)
		if err != nil {
			return err
		}

		owners := 0
		removingOwner := false
		for _, m := range members {
			if m.Role == domain.RoleOwner {
				owners++
				if m.UserID == userID {
					removingOwner = true
				}
			}
		}

		if removingOwner && owners <= 1 {
			return ErrLastOwner
		}

		return tx.Membership.Delete(ctx, organizationID, userID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, "organization.member_removed", &userID, &organizationID, nil)
	return nil
}

// CreateForUser creates an organization with userID as sole owner and makes
// it the user's default, all inside one transaction.
func (s *OrganizationService) CreateForUser(ctx context.Context, userID uuid.UUID, name string) (*domain.Organization, error) {
	organization := &domain.Organization{
		ID:   uuid.New(),
		Name: name,
		Plan: "free",
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Organization.Create(ctx, organization); err != nil {
			return err
		}

		membership := &domain.Membership{
			OrganizationID: organization.ID,
			UserID:         userID,
			Role:           domain.RoleOwner,
		}
		if err := tx.Membership.Create(ctx, membership); err != nil {
			return err
		}

		return tx.User.SetDefaultOrganization(ctx, userID, organization.ID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "organization.created", &userID, &organization.ID, map[string]interface{}{
		"name": name,
	})

	return organization, nil
}

// ListMembers returns member rows joined with user identity. No
// authorization gate of its own; callers check membership first.
func (s *OrganizationService) ListMembers(ctx context.Context, organizationID uuid.UUID) ([]*domain.OrganizationMember, error) {
	return s.repos.Membership.ListMembers(ctx, organizationID)
}
