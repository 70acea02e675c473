package activity

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/transport"
	"github.com/saps-platform/case-management/pkg/logger"
)

type ServiceAPI interface {
	RecentFeed(limit int) ([]*Event, error)
	CaseTrail(caseID int64, limit int) ([]*Event, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// RecentFeed serves the station-wide activity feed polled by the
// notification center.
func (h *Handler) RecentFeed(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("RecentFeed: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	feed, err := h.Service.RecentFeed(limit)
	if err != nil {
		h.Logger.Error("RecentFeed: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"activities": feed,
		"limit":      limit,
	})
}

// CaseTrail serves the activity entries for a single case.
func (h *Handler) CaseTrail(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CaseTrail: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseIDStr := chi.URLParam(r, "id")
	caseID, err := strconv.ParseInt(caseIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("CaseTrail: invalid case ID", "id", caseIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	trail, err := h.Service.CaseTrail(caseID, limit)
	if err != nil {
		h.Logger.Error("CaseTrail: service error", "error", err, "case_id", caseID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"activities": trail,
		"limit":      limit,
	})
}
