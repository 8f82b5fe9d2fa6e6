package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Create(ctx context.Context, dashboard *domain.Dashboard) error {
	return r.db.WithContext(ctx).Create(dashboard).Error
}

func (r *dashboardRepository) GetBySlug(ctx context.Context, organizationID uuid.UUID, slug string) (*domain.Dashboard, error) {
	var dashboard domain.Dashboard
	err := r.db.WithContext(ctx).
		First(&dashboard, "organization_id = ? AND slug = ?", organizationID, slug).Error
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (r *dashboardRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*domain.Dashboard, error) {
	var dashboards []*domain.Dashboard
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&dashboards, "organization_id = ?", organizationID).Error
	if err != nil {
		return nil, err
	}
	return dashboards, nil
}

func (r *dashboardRepository) Update(ctx context.Context, dashboard *domain.Dashboard) error {
	return r.db.WithContext(ctx).Save(dashboard).Error
}

func (r *dashboardRepository) Delete(ctx context.Context, organizationID uuid.UUID, slug string) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Dashboard{}, "organization_id = ? AND slug = ?", organizationID, slug).Error
}
