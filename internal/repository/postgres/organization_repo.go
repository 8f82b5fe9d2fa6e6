package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"gorm.io/gorm"
)

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *organizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(ctx context.Context, organization *domain.Organization) error {
	return r.db.WithContext(ctx).Create(organization).Error
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	var organization domain.Organization
	err := r.db.WithContext(ctx).First(&organization, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &organization, nil
}
