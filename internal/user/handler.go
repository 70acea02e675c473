package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/transport"
	"github.com/saps-platform/case-management/pkg/logger"
)

type ServiceAPI interface {
	GetByID(userID int64) (*User, error)
	SetupProfile(userID int64, dto ProfileSetupDTO) (*User, error)
	ListAssignableOfficers() ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(user.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service error", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// SetupProfile handles PUT /users/me/profile
func (h *Handler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("SetupProfile: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ProfileSetupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetupProfile: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.SetupProfile(user.ID, dto)
	if err != nil {
		h.Logger.Error("SetupProfile: service error", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SetupProfile: profile saved", "user_id", u.ID, "role", u.SAPSRole)
	h.WriteJSON(w, http.StatusOK, u)
}

// ListOfficers handles GET /users/officers, feeding the assignment picker.
func (h *Handler) ListOfficers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ListOfficers: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	officers, err := h.Service.ListAssignableOfficers()
	if err != nil {
		h.Logger.Error("ListOfficers: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"officers": officers,
	})
}
