package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *membershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	// Idempotent add: a second insert for the same (org, user) pair is a no-op.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(membership).Error
}

func (r *membershipRepository) Get(ctx context.Context, organizationID, userID uuid.UUID) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).
		Preload("Organization").
		First(&membership, "organization_id = ? AND user_id = ?", organizationID, userID).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	var memberships []*domain.Membership
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Order("created_at ASC").
		Find(&memberships, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.Membership, error) {
	var memberships []*domain.Membership
	err := r.db.WithContext(ctx).
		Find(&memberships, "organization_id = ?", organizationID).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) ListByOrganizationForUpdate(ctx context.Context, organizationID uuid.UUID) ([]*domain.Membership, error) {
	var memberships []*domain.Membership
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&memberships, "organization_id = ?", organizationID).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) ListMembers(ctx context.Context, organizationID uuid.UUID) ([]*domain.OrganizationMember, error) {
	var members []*domain.OrganizationMember
	err := r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Select("memberships.user_id, users.email, users.name, memberships.role").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.organization_id = ?", organizationID).
		Order("memberships.created_at ASC").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *membershipRepository) Delete(ctx context.Context, organizationID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Membership{}, "organization_id = ? AND user_id = ?", organizationID, userID).Error
}
