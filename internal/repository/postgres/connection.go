package postgres

import (
	"context"

	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Organization{},
		&domain.User{},
		&domain.Credential{},
		&domain.Membership{},
		&domain.Session{},
		&domain.Dashboard{},
		&domain.AuditLog{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	repos := &repository.Repositories{
		User:         NewUserRepository(db),
		Credential:   NewCredentialRepository(db),
		Organization: NewOrganizationRepository(db),
		Membership:   NewMembershipRepository(db),
		Session:      NewSessionRepository(db),
		Dashboard:    NewDashboardRepository(db),
		AuditLog:     NewAuditLogRepository(db),
	}

	repos.Transaction = func(ctx context.Context, fn func(repos *repository.Repositories) error) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(NewRepositories(tx))
		})
	}

	return repos
}
