package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrDashboardNotFound = errors.New("dashboard not found")

type DashboardService struct {
	dashboardRepo repository.DashboardRepository
}

func NewDashboardService(dashboardRepo repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

func (s *DashboardService) List(ctx context.Context, organizationID uuid.UUID) ([]*domain.Dashboard, error) {
	return s.dashboardRepo.ListByOrganization(ctx, organizationID)
}

func (s *DashboardService) Get(ctx context.Context, organizationID uuid.UUID, slug string) (*domain.Dashboard, error) {
	dashboard, err := s.dashboardRepo.GetBySlug(ctx, organizationID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDashboardNotFound
		}
		return nil, err
	}
	return dashboard, nil
}

func (s *DashboardService) Create(ctx context.Context, organizationID uuid.UUID, slug, name string, widgets datatypes.JSON) (*domain.Dashboard, error) {
	dashboard := &domain.Dashboard{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Slug:           slug,
		Name:           name,
		Widgets:        widgets,
	}
	if err := s.dashboardRepo.Create(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// Upsert replaces the named dashboard's layout, creating it if absent.
func (s *DashboardService) Upsert(ctx context.Context, organizationID uuid.UUID, slug, name string, widgets datatypes.JSON) (*domain.Dashboard, error) {
	dashboard, err := s.dashboardRepo.GetBySlug(ctx, organizationID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.Create(ctx, organizationID, slug, name, widgets)
		}
		return nil, err
	}

	dashboard.Name = name
	dashboard.Widgets = widgets
	if err := s.dashboardRepo.Update(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *DashboardService) Delete(ctx context.Context, organizationID uuid.UUID, slug string) error {
	return s.dashboardRepo.Delete(ctx, organizationID, slug)
}
