package httpx

import "net/http"

// RequireAuthority restricts a route to callers holding at least one of the
// named authorities.
func RequireAuthority(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, name := range required {
		want[name] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, name := range authoritiesFromCtx(r.Context()) {
				if _, ok := want[name]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "access_denied", "missing required authority")
		})
	}
}
