package http

import (
	"errors"
	"net/http"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/internal/accounts/store"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

type RegisterHandler struct {
	AccountService *service.AccountService
}

type registerRequest struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	ImageURL  string `json:"imageUrl"`
	LangKey   string `json:"langKey"`
}

// ServeHTTP handles self-registration. The new account is created deactivated
// and must be claimed via the activation key before it can authenticate.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Login == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "login is required")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}
	if !passwordLengthOK(req.Password) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_password", "Password must be between 4 and 100 characters")
		return
	}

	account, err := h.AccountService.RegisterAccount(ctx, service.RegistrationInput{
		Login:     req.Login,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		ImageURL:  req.ImageURL,
		LangKey:   req.LangKey,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			httpx.WriteError(w, http.StatusBadRequest, "registration_failed", "Login or email is already in use")
			return
		}
		log.Error("failed to register account", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register account")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, service.NewAccountView(account))
}
