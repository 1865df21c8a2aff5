package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/croftbay/accounts/internal/accounts/domain"
	httpapi "github.com/croftbay/accounts/internal/accounts/http"
	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/internal/accounts/store"
	"github.com/croftbay/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/croftbay/accounts/pkg/cryptox"
	"github.com/croftbay/accounts/pkg/jwtx"
	"github.com/croftbay/accounts/pkg/slogx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "accounts-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var testSigner = jwtx.Signer{
	Secret: []byte("router-test-secret"),
	Issuer: "accounts-test",
	TTL:    time.Hour,
}

func newTestRouter(t *testing.T) (*httpapi.Router, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	logger := slogx.New(slogx.Config{
		Service: "accounts-test",
		Level:   "error",
		Format:  "text",
	})

	verifier := jwtx.Verifier{Secret: testSigner.Secret, Issuer: testSigner.Issuer}

	router := httpapi.NewRouter(verifier, "test", st, logger)
	router.AccountService = &service.AccountService{Store: st}
	router.TokenService = &service.TokenService{Signer: testSigner}
	router.ApplyRoutes()

	return router, st
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := testSigner.Sign("admin", []string{domain.AuthorityAdmin})
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T, login string) string {
	t.Helper()
	token, err := testSigner.Sign(login, []string{domain.AuthorityUser})
	require.NoError(t, err)
	return token
}

func TestRegisterAndActivateFlow(t *testing.T) {
	router, st := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"login":    "Jolene",
		"password": "opensesame",
		"email":    "jolene@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	view := decodeBody[service.AccountView](t, rec)
	require.Equal(t, "jolene", view.Login)
	require.False(t, view.Activated)

	// Duplicate login is rejected
	rec = do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"login":    "jolene",
		"password": "opensesame",
		"email":    "other@example.com",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown activation key
	rec = do(t, router, http.MethodGet, "/v1/activate?key=nosuchkey", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	account, err := st.Accounts().GetByLogin(context.Background(), "jolene")
	require.NoError(t, err)
	require.NotNil(t, account.ActivationKey)

	rec = do(t, router, http.MethodGet, "/v1/activate?key="+*account.ActivationKey, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	activated := decodeBody[service.AccountView](t, rec)
	require.True(t, activated.Activated)

	// Consumed key no longer matches anything
	rec = do(t, router, http.MethodGet, "/v1/activate?key="+*account.ActivationKey, nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"login": "shortpw", "password": "abc", "email": "s@example.com",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"password": "longenough", "email": "s@example.com",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	router, st := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"login":    "dave",
		"password": "hunter22",
		"email":    "dave@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Not activated yet
	rec = do(t, router, http.MethodPost, "/v1/authenticate", map[string]any{
		"login": "dave", "password": "hunter22",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	account, err := st.Accounts().GetByLogin(context.Background(), "dave")
	require.NoError(t, err)
	rec = do(t, router, http.MethodGet, "/v1/activate?key="+*account.ActivationKey, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Wrong password
	rec = do(t, router, http.MethodPost, "/v1/authenticate", map[string]any{
		"login": "dave", "password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/authenticate", map[string]any{
		"login": "dave", "password": "hunter22",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	token := decodeBody[map[string]string](t, rec)["id_token"]
	require.NotEmpty(t, token)

	// Issued token is accepted on the account endpoint
	rec = do(t, router, http.MethodGet, "/v1/account", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dave", decodeBody[service.AccountView](t, rec).Login)
}

func TestPasswordResetEndpoints(t *testing.T) {
	router, st := newTestRouter(t)

	// Unknown email still returns 200
	rec := do(t, router, http.MethodPost, "/v1/account/reset-password/init", map[string]any{
		"email": "nobody@example.com",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"login":    "rhonda",
		"password": "initialpw",
		"email":    "rhonda@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	account, err := st.Accounts().GetByLogin(context.Background(), "rhonda")
	require.NoError(t, err)
	rec = do(t, router, http.MethodGet, "/v1/activate?key="+*account.ActivationKey, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/account/reset-password/init", map[string]any{
		"email": "rhonda@example.com",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	account, err = st.Accounts().GetByLogin(context.Background(), "rhonda")
	require.NoError(t, err)
	require.NotNil(t, account.ResetKey)

	// Bad key
	rec = do(t, router, http.MethodPost, "/v1/account/reset-password/finish", map[string]any{
		"key": "bogus", "newPassword": "rotatedpw",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/account/reset-password/finish", map[string]any{
		"key": *account.ResetKey, "newPassword": "rotatedpw",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// New password works, old one does not
	rec = do(t, router, http.MethodPost, "/v1/authenticate", map[string]any{
		"login": "rhonda", "password": "initialpw",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/authenticate", map[string]any{
		"login": "rhonda", "password": "rotatedpw",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAccountEndpointsRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/v1/account", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/account", map[string]any{"firstName": "X"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token for an account that no longer exists
	rec = do(t, router, http.MethodGet, "/v1/account", nil, userToken(t, "ghost"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAccountAndChangePassword(t *testing.T) {
	router, st := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/register", map[string]any{
		"login":    "mabel",
		"password": "firstpass",
		"email":    "mabel@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	account, err := st.Accounts().GetByLogin(context.Background(), "mabel")
	require.NoError(t, err)
	rec = do(t, router, http.MethodGet, "/v1/activate?key="+*account.ActivationKey, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	token := userToken(t, "mabel")

	rec = do(t, router, http.MethodPost, "/v1/account", map[string]any{
		"firstName": "Mabel",
		"lastName":  "Mora",
		"email":     "mabel@example.com",
		"langKey":   "en",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/account", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[service.AccountView](t, rec)
	require.Equal(t, "Mabel", view.FirstName)
	require.Equal(t, "Mora", view.LastName)

	// Wrong current password
	rec = do(t, router, http.MethodPost, "/v1/account/change-password", map[string]any{
		"currentPassword": "nope", "newPassword": "secondpass",
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/account/change-password", map[string]any{
		"currentPassword": "firstpass", "newPassword": "secondpass",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/authenticate", map[string]any{
		"login": "mabel", "password": "secondpass",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUsersEndpointsRequireAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/v1/users", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/users", nil, userToken(t, "dave"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/authorities", nil, userToken(t, "dave"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserAdminCRUD(t *testing.T) {
	router, _ := newTestRouter(t)
	token := adminToken(t)

	rec := do(t, router, http.MethodPost, "/v1/users", map[string]any{
		"login":       "harold",
		"email":       "harold@example.com",
		"firstName":   "Harold",
		"authorities": []string{domain.AuthorityUser, domain.AuthorityAdmin},
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[service.AccountView](t, rec)
	require.True(t, created.Activated)
	require.ElementsMatch(t, []string{domain.AuthorityUser, domain.AuthorityAdmin}, created.Authorities)

	// Duplicate
	rec = do(t, router, http.MethodPost, "/v1/users", map[string]any{
		"login": "harold", "email": "harold2@example.com",
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/users/harold", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/users", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decodeBody[[]service.AccountView](t, rec)
	require.Len(t, views, 1)

	rec = do(t, router, http.MethodPut, "/v1/users", map[string]any{
		"id":          created.ID,
		"login":       "harold",
		"email":       "harold@example.com",
		"firstName":   "Harry",
		"activated":   true,
		"authorities": []string{domain.AuthorityUser},
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[service.AccountView](t, rec)
	require.Equal(t, "Harry", updated.FirstName)
	require.Equal(t, []string{domain.AuthorityUser}, updated.Authorities)

	// Unknown id
	rec = do(t, router, http.MethodPut, "/v1/users", map[string]any{
		"id": "01ARZ3NDEKTSV4RRFFQ69G5FAV", "login": "harold", "email": "harold@example.com",
	}, token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/v1/users/harold", nil, token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/users/harold", nil, token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again is a silent no-op
	rec = do(t, router, http.MethodDelete, "/v1/users/harold", nil, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListAuthorities(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/v1/authorities", nil, adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[map[string][]string](t, rec)
	require.ElementsMatch(t, []string{domain.AuthorityAdmin, domain.AuthorityUser}, body["authorities"])
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/livez", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/readyz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}
