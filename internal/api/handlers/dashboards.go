package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwells/saasdash/internal/api/middleware"
	"github.com/mwells/saasdash/internal/service"
	"gorm.io/datatypes"
)

// DashboardHandler exposes per-organization dashboard layout CRUD. The
// widget documents are presentational glue stored verbatim; the backend
// only scopes them to an organization the caller belongs to.
type DashboardHandler struct {
	dashboards *service.DashboardService
	orgs       *service.OrganizationService
}

func NewDashboardHandler(dashboards *service.DashboardService, orgs *service.OrganizationService) *DashboardHandler {
	return &DashboardHandler{
		dashboards: dashboards,
		orgs:       orgs,
	}
}

type SaveDashboardRequest struct {
	Name    string          `json:"name"`
	Widgets json.RawMessage `json:"widgets"`
}

func (h *DashboardHandler) List(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	dashboards, err := h.dashboards.List(r.Context(), organizationID)
	if err != nil {
		log.Printf("ERROR [handlers.ListDashboards] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list dashboards")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"dashboards": dashboards,
	})
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboards.Get(r.Context(), organizationID, chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, service.ErrDashboardNotFound) {
			respondError(w, http.StatusNotFound, "Dashboard not found")
			return
		}
		log.Printf("ERROR [handlers.GetDashboard] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"dashboard": dashboard,
	})
}

func (h *DashboardHandler) Save(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")

	var req SaveDashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || len(req.Widgets) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid dashboard payload")
		return
	}

	dashboard, err := h.dashboards.Upsert(r.Context(), organizationID, slug, req.Name, datatypes.JSON(req.Widgets))
	if err != nil {
		log.Printf("ERROR [handlers.SaveDashboard] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save dashboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"dashboard": dashboard,
	})
}

func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	if err := h.dashboards.Delete(r.Context(), organizationID, chi.URLParam(r, "slug")); err != nil {
		log.Printf("ERROR [handlers.DeleteDashboard] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete dashboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// requireMember parses the organization id and checks the caller belongs
// to it.
func (h *DashboardHandler) requireMember(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity, _ := middleware.GetIdentity(r.Context())

	organizationID, ok := parseOrgID(w, r)
	if !ok {
		return uuid.Nil, false
	}

	membership, err := h.orgs.GetMembership(r.Context(), identity.User.ID, organizationID)
	if err != nil {
		log.Printf("ERROR [handlers.Dashboard] %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to check membership")
		return uuid.Nil, false
	}
	if membership == nil {
		respondError(w, http.StatusForbidden, "Not a member")
		return uuid.Nil, false
	}

	return organizationID, true
}
