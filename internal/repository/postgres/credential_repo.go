package postgres

import (
	"context"

	"github.com/mwells/saasdash/internal/domain"
	"gorm.io/gorm"
)

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *credentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, credential *domain.Credential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var credential domain.Credential
	err := r.db.WithContext(ctx).
		Joins("User").
		First(&credential, `"User"."email" = ?`, email).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}
