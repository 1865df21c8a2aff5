package http

import (
	"net/http"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

type AuthoritiesHandler struct {
	AccountService *service.AccountService
}

type listAuthoritiesResponse struct {
	Authorities []string `json:"authorities"`
}

// ServeHTTP returns the names of all defined authorities.
func (h *AuthoritiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	names, err := h.AccountService.ListAuthorityNames(ctx)
	if err != nil {
		log.Error("failed to list authorities", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list authorities")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listAuthoritiesResponse{Authorities: names})
}
