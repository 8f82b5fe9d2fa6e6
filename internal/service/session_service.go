package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/config"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/repository"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionTokenBytes = 48

// SessionService issues and validates opaque session tokens. Only the
// HMAC-SHA256 of a token is ever persisted; a stolen database cannot be
// replayed against the API.
type SessionService struct {
	sessionRepo repository.SessionRepository
	cfg         *config.Config
}

func NewSessionService(sessionRepo repository.SessionRepository, cfg *config.Config) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

type CreateSessionInput struct {
	UserID               uuid.UUID
	ActiveOrganizationID *uuid.UUID
	UserAgent            string
	IPAddress            string
	TTLDays              int // 0 = config default
}

// GenerateToken returns a fresh high-entropy session token.
func GenerateToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func (s *SessionService) hashToken(token string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.SessionSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Create persists a new session and returns the raw token alongside the
// stored record. The raw token is returned exactly once and never logged.
func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (string, *domain.Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}

	ttlDays := input.TTLDays
	if ttlDays <= 0 {
		ttlDays = s.cfg.SessionTTLDays
	}

	session := &domain.Session{
		ID:                   uuid.New(),
		UserID:               input.UserID,
		ActiveOrganizationID: input.ActiveOrganizationID,
		TokenHash:            s.hashToken(token),
		ExpiresAt:            time.Now().AddDate(0, 0, ttlDays),
		CreatedAt:            time.Now(),
	}
	if input.UserAgent != "" {
		session.UserAgent = &input.UserAgent
	}
	if input.IPAddress != "" {
		session.IPAddress = &input.IPAddress
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, err
	}

	return token, session, nil
}

// GetByToken resolves a raw token to its active session. Revoked, expired
// and unknown tokens are indistinguishable: all return ErrSessionNotFound.
func (s *SessionService) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.sessionRepo.GetActiveByTokenHash(ctx, s.hashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// RevokeByToken marks the session for token as revoked. Idempotent; a
// missing or already-revoked session is a no-op.
func (s *SessionService) RevokeByToken(ctx context.Context, token string) error {
	return s.sessionRepo.RevokeByTokenHash(ctx, s.hashToken(token))
}

func (s *SessionService) RevokeByID(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.RevokeByID(ctx, sessionID)
}

// Touch updates the session's last-seen timestamp. Advisory telemetry;
// callers should not fail a request on error.
func (s *SessionService) Touch(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.Touch(ctx, sessionID)
}

// SetActiveOrganization repoints the session's organization context.
// Membership of the target organization is the caller's responsibility.
func (s *SessionService) SetActiveOrganization(ctx context.Context, sessionID, organizationID uuid.UUID) error {
	return s.sessionRepo.SetActiveOrganization(ctx, sessionID, organizationID)
}
