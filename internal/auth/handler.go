package auth

import (
	"log/slog"
	"net/http"

	"github.com/atelier-pos/atelier/internal/platform/httpx"
	"github.com/atelier-pos/atelier/internal/shared"
)

// Handler exposes login/logout endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login authenticates credentials and binds the user to the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	sess.SetUser(user.Username)
	sess.Set(sessionRoleKey, user.Role)

	httpx.JSON(w, http.StatusOK, sessionResponse{Username: user.Username, Role: user.Role})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.SetUser("")
		sess.Delete(sessionRoleKey)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me reports the current session identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{Username: sess.User(), Role: sess.Get(sessionRoleKey)})
}
