package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/api/middleware"
	"github.com/mwells/saasdash/internal/config"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/oauth"
	"github.com/mwells/saasdash/internal/service"
)

type AuthHandler struct {
	auth      *service.AuthService
	sessions  *service.SessionService
	orgs      *service.OrganizationService
	providers oauth.Registry
	cfg       *config.Config
}

func NewAuthHandler(auth *service.AuthService, sessions *service.SessionService, orgs *service.OrganizationService, providers oauth.Registry, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		sessions:  sessions,
		orgs:      orgs,
		providers: providers,
		cfg:       cfg,
	}
}

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	OrganizationName string `json:"organizationName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SwitchRequest struct {
	OrganizationID uuid.UUID `json:"organizationId"`
}

// MembershipView is the wire shape for one membership.
type MembershipView struct {
	OrganizationID   uuid.UUID   `json:"organizationId"`
	OrganizationName string      `json:"organizationName"`
	Role             domain.Role `json:"role"`
}

func membershipViews(memberships []*domain.Membership) []MembershipView {
	views := make([]MembershipView, 0, len(memberships))
	for _, m := range memberships {
		view := MembershipView{
			OrganizationID: m.OrganizationID,
			Role:           m.Role,
		}
		if m.Organization != nil {
			view.OrganizationName = m.Organization.Name
		}
		views = append(views, view)
	}
	return views
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !validEmail(req.Email) || len(req.Password) < 8 || req.Name == "" || req.OrganizationName == "" {
		respondError(w, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			respondError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Printf("ERROR [handlers.Register] %v", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	orgID := result.Membership.OrganizationID
	token, session, err := h.sessions.Create(r.Context(), service.CreateSessionInput{
		UserID:               result.User.ID,
		ActiveOrganizationID: &orgID,
		UserAgent:            r.UserAgent(),
		IPAddress:            middleware.ClientFingerprint(r),
	})
	if err != nil {
		log.Printf("ERROR [handlers.Register] failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	setSessionCookie(w, r, h.cfg, token, session.ExpiresAt)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"user":                 result.User,
		"activeOrganizationId": orgID,
		"memberships":          membershipViews([]*domain.Membership{result.Membership}),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !validEmail(req.Email) || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.auth.Authenticate(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("ERROR [handlers.Login] %v", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if len(result.Memberships) == 0 {
		respondError(w, http.StatusForbidden, "User has no organization memberships")
		return
	}

	activeOrg := service.SelectActiveOrganization(result.User, result.Memberships)

	token, session, err := h.sessions.Create(r.Context(), service.CreateSessionInput{
		UserID:               result.User.ID,
		ActiveOrganizationID: activeOrg,
		UserAgent:            r.UserAgent(),
		IPAddress:            middleware.ClientFingerprint(r),
	})
	if err != nil {
		log.Printf("ERROR [handlers.Login] failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	setSessionCookie(w, r, h.cfg, token, session.ExpiresAt)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"user":                 result.User,
		"activeOrganizationId": activeOrg,
		"memberships":          membershipViews(result.Memberships),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.RevokeByToken(r.Context(), cookie.Value); err != nil {
			log.Printf("ERROR [handlers.Logout] failed to revoke session: %v", err)
		}
	}

	clearSessionCookie(w, r, h.cfg)

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	activeOrg := identity.Session.ActiveOrganizationID
	if activeOrg == nil {
		activeOrg = identity.User.DefaultOrganizationID
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"user":                 identity.User,
		"activeOrganizationId": activeOrg,
		"memberships":          membershipViews(identity.Memberships),
	})
}

func (h *AuthHandler) Switch(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrganizationID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	membership, err := h.orgs.GetMembership(r.Context(), identity.User.ID, req.OrganizationID)
	if err != nil {
		log.Printf("ERROR [handlers.Switch] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to switch organization")
		return
	}
	if membership == nil {
		respondError(w, http.StatusForbidden, "Membership not found")
		return
	}

	if err := h.sessions.SetActiveOrganization(r.Context(), identity.Session.ID, req.OrganizationID); err != nil {
		log.Printf("ERROR [handlers.Switch] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to switch organization")
		return
	}

	memberships, err := h.auth.ListMemberships(r.Context(), identity.User.ID)
	if err != nil {
		log.Printf("ERROR [handlers.Switch] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to switch organization")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"activeOrganizationId": req.OrganizationID,
		"memberships":          membershipViews(memberships),
	})
}

func (h *AuthHandler) ProviderInit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers.Get(name)
	if !ok {
		respondError(w, http.StatusBadRequest, "Provider not supported")
		return
	}

	respondError(w, http.StatusNotImplemented, provider.Name()+" OAuth is not configured yet")
}

func (h *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers.Get(name)
	if !ok {
		respondError(w, http.StatusBadRequest, "Provider not supported")
		return
	}

	respondError(w, http.StatusNotImplemented, provider.Name()+" OAuth callback not implemented")
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
