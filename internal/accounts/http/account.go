package http

import (
	"net/http"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

// AccountHandler serves the authenticated self-service endpoints. The acting
// login is taken from the verified bearer token, never from the request body.
type AccountHandler struct {
	AccountService *service.AccountService
}

type updateAccountRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	LangKey   string `json:"langKey"`
	ImageURL  string `json:"imageUrl"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleGet returns the authenticated caller's own account.
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	login := httpx.LoginFromContext(ctx)

	account, err := h.AccountService.GetAccountByLogin(ctx, login)
	if err != nil {
		log.Error("failed to load account", "login", login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load account")
		return
	}
	if account == nil {
		// Token outlived the account it was issued for.
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Account no longer exists")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, service.NewAccountView(*account))
}

// HandleUpdate applies profile changes to the authenticated caller's account.
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	login := httpx.LoginFromContext(ctx)

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	err := h.AccountService.UpdateCurrentAccount(ctx, login, service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		LangKey:   req.LangKey,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		log.Error("failed to update account", "login", login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update account")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleChangePassword replaces the authenticated caller's password after
// verifying the current one.
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	login := httpx.LoginFromContext(ctx)

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if !passwordLengthOK(req.NewPassword) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_password", "Password must be between 4 and 100 characters")
		return
	}

	account, err := h.AccountService.Authenticate(ctx, login, req.CurrentPassword)
	if err != nil {
		log.Error("failed to verify current password", "login", login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to change password")
		return
	}
	if account == nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_password", "Current password is incorrect")
		return
	}

	if err := h.AccountService.ChangePassword(ctx, login, req.NewPassword); err != nil {
		log.Error("failed to change password", "login", login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to change password")
		return
	}

	w.WriteHeader(http.StatusOK)
}
