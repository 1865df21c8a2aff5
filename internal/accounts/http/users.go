package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/internal/accounts/store"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/slogx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UsersHandler serves the administrative user management endpoints.
type UsersHandler struct {
	AccountService *service.AccountService
}

type userRequest struct {
	ID          string   `json:"id"`
	Login       string   `json:"login"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	ImageURL    string   `json:"imageUrl"`
	LangKey     string   `json:"langKey"`
	Activated   bool     `json:"activated"`
	Authorities []string `json:"authorities"`
}

func (req userRequest) toInput() service.AccountInput {
	return service.AccountInput{
		ID:          req.ID,
		Login:       req.Login,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		ImageURL:    req.ImageURL,
		LangKey:     req.LangKey,
		Activated:   req.Activated,
		Authorities: req.Authorities,
	}
}

// HandleCreate provisions an account with a generated temporary password. The
// new holder claims it through the password reset flow.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req userRequest
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

	account, err := h.AccountService.CreateAccount(ctx, req.toInput())
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			httpx.WriteError(w, http.StatusBadRequest, "user_exists", "Login or email is already in use")
			return
		}
		log.Error("failed to create user", "login", req.Login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create user")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, service.NewAccountView(account))
}

// HandleList returns a page of managed accounts, excluding the anonymous
// placeholder account.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	page := pageFromQuery(r)

	views, err := h.AccountService.ListManagedAccounts(ctx, page)
	if err != nil {
		log.Error("failed to list users", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list users")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, views)
}

// HandleUpdate replaces the mutable fields of the account identified by the
// body's id, including its authority set.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.ID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	view, err := h.AccountService.UpdateAccount(ctx, req.toInput())
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			httpx.WriteError(w, http.StatusBadRequest, "user_exists", "Login or email is already in use")
			return
		}
		log.Error("failed to update user", "id", req.ID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update user")
		return
	}
	if view == nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No user with this id")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, *view)
}

// HandleGet returns the account holding the given login.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	login := r.PathValue("login")

	account, err := h.AccountService.GetAccountByLogin(ctx, login)
	if err != nil {
		log.Error("failed to load user", "login", login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load user")
		return
	}
	if account == nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No user with this login")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, service.NewAccountView(*account))
}

// HandleDelete removes the account holding the given login. Deleting an
// unknown login is a no-op and still returns 204.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	login := r.PathValue("login")

	if err := h.AccountService.DeleteAccount(ctx, login); err != nil {
		log.Error("failed to delete user", "login", login, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pageFromQuery(r *http.Request) store.Page {
	page := store.Page{Number: 0, Size: defaultPageSize}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page.Number = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page.Size = min(n, maxPageSize)
		}
	}

	return page
}
