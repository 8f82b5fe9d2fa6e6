package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/api/middleware"
	"github.com/mwells/saasdash/internal/domain"
	"github.com/mwells/saasdash/internal/service"
)

type OrganizationHandler struct {
	orgs     *service.OrganizationService
	auth     *service.AuthService
	sessions *service.SessionService
}

func NewOrganizationHandler(orgs *service.OrganizationService, auth *service.AuthService, sessions *service.SessionService) *OrganizationHandler {
	return &OrganizationHandler{
		orgs:     orgs,
		auth:     auth,
		sessions: sessions,
	}
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"memberships": membershipViews(identity.Memberships),
	})
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Organization name is required")
		return
	}

	organization, err := h.orgs.CreateForUser(r.Context(), identity.User.ID, req.Name)
	if err != nil {
		log.Printf("ERROR [handlers.CreateOrganization] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	// The new organization becomes the session's working context.
	if err := h.sessions.SetActiveOrganization(r.Context(), identity.Session.ID, organization.ID); err != nil {
		log.Printf("ERROR [handlers.CreateOrganization] failed to switch session: %v", err)
	}

	memberships, err := h.auth.ListMemberships(r.Context(), identity.User.ID)
	if err != nil {
		log.Printf("ERROR [handlers.CreateOrganization] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"organization":         organization,
		"memberships":          membershipViews(memberships),
		"activeOrganizationId": organization.ID,
	})
}

func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	organizationID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	membership, err := h.orgs.GetMembership(r.Context(), identity.User.ID, organizationID)
	if err != nil {
		log.Printf("ERROR [handlers.ListMembers] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list members")
		return
	}
	if membership == nil {
		respondError(w, http.StatusForbidden, "Not a member")
		return
	}

	members, err := h.orgs.ListMembers(r.Context(), organizationID)
	if err != nil {
		log.Printf("ERROR [handlers.ListMembers] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list members")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"members": members,
	})
}

func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	organizationID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleMember
	}

	if _, err := h.orgs.EnsureCanManage(r.Context(), identity.User.ID, organizationID); err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			respondError(w, http.StatusForbidden, "Not authorized to manage organization")
			return
		}
		log.Printf("ERROR [handlers.AddMember] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to add member")
		return
	}

	err := h.orgs.AddMemberByEmail(r.Context(), service.AddMemberInput{
		OrganizationID: organizationID,
		Email:          req.Email,
		Role:           req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, "Invalid role")
		default:
			log.Printf("ERROR [handlers.AddMember] %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to add member")
		}
		return
	}

	h.respondWithMembers(w, r, organizationID)
}

func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	organizationID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if _, err := h.orgs.EnsureCanManage(r.Context(), identity.User.ID, organizationID); err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			respondError(w, http.StatusForbidden, "Not authorized to manage organization")
			return
		}
		log.Printf("ERROR [handlers.RemoveMember] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to remove member")
		return
	}

	if err := h.orgs.RemoveMember(r.Context(), organizationID, memberID); err != nil {
		if errors.Is(err, service.ErrLastOwner) {
			respondError(w, http.StatusBadRequest, "Cannot remove the last owner")
			return
		}
		log.Printf("ERROR [handlers.RemoveMember] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to remove member")
		return
	}

	h.respondWithMembers(w, r, organizationID)
}

func (h *OrganizationHandler) respondWithMembers(w http.ResponseWriter, r *http.Request, organizationID uuid.UUID) {
	members, err := h.orgs.ListMembers(r.Context(), organizationID)
	if err != nil {
		log.Printf("ERROR [handlers.respondWithMembers] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list members")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"members": members,
	})
}

func parseOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	organizationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid organization id")
		return uuid.Nil, false
	}
	return organizationID, true
}
