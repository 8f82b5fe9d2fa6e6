package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/repository"
	"gorm.io/datatypes"
)

// AuditService appends security-relevant events to the audit log.
// Recording is best-effort: a failed write is logged and never fails
// the operation that produced the event.
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

func (s *AuditService) Record(ctx context.Context, action string, userID, organizationID *uuid.UUID, metadata map[string]interface{}) {
	entry := &domain.AuditLog{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: organizationID,
		Action:         action,
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("WARN [service.Audit] failed to encode metadata for %s: %v", action, err)
		} else {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("WARN [service.Audit] failed to record %s: %v", action, err)
	}
}

func (s *AuditService) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.auditRepo.ListByOrganization(ctx, organizationID, limit)
}
