package http

import (
	"net/http"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

type AuthenticateHandler struct {
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

type authenticateRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	IDToken string `json:"id_token"`
}

// ServeHTTP exchanges a login/password pair for a signed bearer token. Unknown
// logins, wrong passwords, and unactivated accounts all produce the same 401.
func (h *AuthenticateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authenticateRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Login == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "login and password are required")
		return
	}

	account, err := h.AccountService.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		log.Error("failed to authenticate", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Authentication failed")
		return
	}
	if account == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid login or password")
		return
	}

	token, err := h.TokenService.IssueToken(*account)
	if err != nil {
		log.Error("failed to issue token", "login", account.Login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Authentication failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authenticateResponse{IDToken: token})
}
