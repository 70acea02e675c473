package casefile

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/transport"
	"github.com/saps-platform/case-management/pkg/logger"
)

type ServiceAPI interface {
	CreateCase(actor Actor, dto CreateCaseDTO) (*Case, error)
	GetCase(actor Actor, caseID int64) (*Case, error)
	ListCases(actor Actor, filter ListFilter) ([]*Case, error)
	ChangeStatus(actor Actor, caseID int64, dto ChangeStatusDTO) (*Case, error)
	AddNote(actor Actor, caseID int64, dto AddNoteDTO) (*Case, error)
	AssignOfficer(actor Actor, caseID int64, dto AssignOfficerDTO) (*Case, error)
	AttachEvidence(actor Actor, caseID int64, dto AttachEvidenceDTO) (*Case, error)
	DeleteCase(actor Actor, caseID int64) error
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

func actorFrom(user *auth.User) Actor {
	return Actor{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Province: user.Province,
	}
}

func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateCase: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCaseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateCase: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.CreateCase(actorFrom(user), dto)
	if err != nil {
		h.Logger.Error("CreateCase: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateCase: case created",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"user_id", user.ID)

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetCase: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := h.caseIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	c, err := h.Service.GetCase(actorFrom(user), caseID)
	if err != nil {
		h.Logger.Error("GetCase: service error", "error", err, "case_id", caseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ListCases: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{
		Status:    rbac.Status(r.URL.Query().Get("status")),
		Province:  r.URL.Query().Get("province"),
		Priority:  r.URL.Query().Get("priority"),
		CrimeType: r.URL.Query().Get("crime_type"),
		Search:    r.URL.Query().Get("search"),
		Limit:     50,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			filter.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	cases, err := h.Service.ListCases(actorFrom(user), filter)
	if err != nil {
		h.Logger.Error("ListCases: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cases":  cases,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ChangeStatus: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := h.caseIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	var dto ChangeStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ChangeStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.ChangeStatus(actorFrom(user), caseID, dto)
	if err != nil {
		h.Logger.Error("ChangeStatus: service error", "error", err, "case_id", caseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("AddNote: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := h.caseIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	var dto AddNoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddNote: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.AddNote(actorFrom(user), caseID, dto)
	if err != nil {
		h.Logger.Error("AddNote: service error", "error", err, "case_id", caseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AssignOfficer(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("AssignOfficer: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := h.caseIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	var dto AssignOfficerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AssignOfficer: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.AssignOfficer(actorFrom(user), caseID, dto)
	if err != nil {
		h.Logger.Error("AssignOfficer: service error", "error", err, "case_id", caseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AttachEvidence(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("AttachEvidence: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := h.caseIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	var dto AttachEvidenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AttachEvidence: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.AttachEvidence(actorFrom(user), caseID, dto)
	if err != nil {
		h.Logger.Error("AttachEvidence: service error", "error", err, "case_id", caseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("DeleteCase: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	caseID, err := h.caseIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid case ID")
		return
	}

	if err := h.Service.DeleteCase(actorFrom(user), caseID); err != nil {
		h.Logger.Error("DeleteCase: service error", "error", err, "case_id", caseID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DeleteCase: case deleted", "case_id", caseID, "user_id", user.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Metadata serves the vocabulary the intake and filter forms are built from.
// Registered outside the auth group so login screens can render the enums.
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"crime_types": CrimeTypes(),
		"provinces":   Provinces(),
		"priorities":  Priorities(),
		"statuses":    rbac.StatusOrder(),
	})
}

func (h *Handler) caseIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid case ID", "id", idStr)
		return 0, err
	}
	return id, nil
}
