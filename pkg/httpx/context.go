package httpx

import "context"

type ctxKey string

const (
	CtxKeyLogin       ctxKey = "login"
	CtxKeyAuthorities ctxKey = "authorities"
)

// LoginFromContext returns the authenticated login, or "" when the request is
// unauthenticated. Handlers pass this explicitly into the service layer; the
// service itself never reads ambient principal state.
func LoginFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyLogin).(string); ok {
		return v
	}
	return ""
}

func authoritiesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyAuthorities).([]string); ok {
		return v
	}
	return nil
}
