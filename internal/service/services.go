package service

import (
	"github.com/mwells/saasdash/internal/config"
	"github.com/mwells/saasdash/internal/repository"
)

// Services aggregates all application services for wiring.
type Services struct {
	Auth         *AuthService
	Session      *SessionService
	Organization *OrganizationService
	Dashboard    *DashboardService
	Audit        *AuditService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	audit := NewAuditService(repos.AuditLog)

	return &Services{
		Auth:         NewAuthService(repos, audit),
		Session:      NewSessionService(repos.Session, cfg),
		Organization: NewOrganizationService(repos, audit),
		Dashboard:    NewDashboardService(repos.Dashboard),
		Audit:        audit,
	}
}
