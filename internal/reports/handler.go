package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/casefile"
	"github.com/saps-platform/case-management/internal/transport"
	"github.com/saps-platform/case-management/pkg/logger"
)

type ServiceAPI interface {
	Stats(actor casefile.Actor, filter StatsFilter) (*Stats, error)
	GenerateReport(actor casefile.Actor, dto GenerateReportDTO) (*Report, error)
	GetReport(actor casefile.Actor, reportID int64) (*Report, error)
	ListReports(actor casefile.Actor, limit int) ([]*Report, error)
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

func actorFrom(user *auth.User) casefile.Actor {
	return casefile.Actor{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Province: user.Province,
	}
}

// Stats handles GET /reports/stats, the dashboard aggregate.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("Stats: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := StatsFilter{Province: r.URL.Query().Get("province")}
	if startStr := r.URL.Query().Get("period_start"); startStr != "" {
		if start, err := time.Parse(time.RFC3339, startStr); err == nil {
			filter.PeriodStart = start
		}
	}
	if endStr := r.URL.Query().Get("period_end"); endStr != "" {
		if end, err := time.Parse(time.RFC3339, endStr); err == nil {
			filter.PeriodEnd = end
		}
	}

	stats, err := h.Service.Stats(actorFrom(user), filter)
	if err != nil {
		h.Logger.Error("Stats: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// GenerateReport handles POST /reports.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GenerateReport: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto GenerateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("GenerateReport: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Service.GenerateReport(actorFrom(user), dto)
	if err != nil {
		h.Logger.Error("GenerateReport: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("GenerateReport: report queued", "report_id", report.ID, "user_id", user.ID)
	h.WriteJSON(w, http.StatusAccepted, report)
}

// GetReport handles GET /reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetReport: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	reportID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("GetReport: invalid report ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return
	}

	report, err := h.Service.GetReport(actorFrom(user), reportID)
	if err != nil {
		h.Logger.Error("GetReport: service error", "error", err, "report_id", reportID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}

// ListReports handles GET /reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ListReports: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	list, err := h.Service.ListReports(actorFrom(user), limit)
	if err != nil {
		h.Logger.Error("ListReports: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": list,
		"limit":   limit,
	})
}
