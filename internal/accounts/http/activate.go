package http

import (
	"net/http"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

type ActivateHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP activates the pending account identified by the activation key in
// the query string. An unknown key yields 400 without revealing anything about
// which keys exist.
func (h *ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	key := r.URL.Query().Get("key")
	if key == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "key is required")
		return
	}

	account, err := h.AccountService.ActivateRegistration(ctx, key)
	if err != nil {
		log.Error("failed to activate account", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to activate account")
		return
	}
	if account == nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_key", "No pending registration matches this key")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, service.NewAccountView(*account))
}
