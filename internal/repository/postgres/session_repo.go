package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetActiveByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		First(&session, "token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, time.Now()).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) RevokeByTokenHash(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now()).Error
}

func (r *sessionRepository) RevokeByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now()).Error
}

func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error
}

func (r *sessionRepository) SetActiveOrganization(ctx context.Context, id, organizationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active_organization_id": organizationID,
			"last_seen_at":           time.Now(),
		}).Error
}
