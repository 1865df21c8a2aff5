package http

import (
	"net/http"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

type PasswordResetHandler struct {
	AccountService *service.AccountService
}

type resetInitRequest struct {
	Email string `json:"email"`
}

type resetFinishRequest struct {
	Key         string `json:"key"`
	NewPassword string `json:"newPassword"`
}

// HandleInit starts the password reset flow for the account holding the given
// email. The response is 200 whether or not the email matched an activated
// account, so the endpoint cannot be used to probe for registered addresses.
func (h *PasswordResetHandler) HandleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetInitRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	account, err := h.AccountService.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		log.Error("failed to request password reset", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to request password reset")
		return
	}
	if account == nil {
		log.Debug("password reset requested for unknown or unactivated email")
	}

	w.WriteHeader(http.StatusOK)
}

// HandleFinish completes the reset flow. Unknown and expired keys yield the
// same 400, indistinguishable to the caller.
func (h *PasswordResetHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetFinishRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Key == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "key is required")
		return
	}
	if !passwordLengthOK(req.NewPassword) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_password", "Password must be between 4 and 100 characters")
		return
	}

	account, err := h.AccountService.CompletePasswordReset(ctx, req.NewPassword, req.Key)
	if err != nil {
		log.Error("failed to complete password reset", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to complete password reset")
		return
	}
	if account == nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_key", "No reset request matches this key")
		return
	}

	w.WriteHeader(http.StatusOK)
}
