package middleware

import (
	"net/http"
	"strings"
)

// GuestTokenHeader carries the opaque guest cart identifier minted by the
// storefront for anonymous shoppers.
const GuestTokenHeader = "X-Guest-Token"

// GuestToken copies the guest cart header into the request context when
// present. It never rejects: resolving whether guest state is acceptable is
// the controller's call.
func GuestToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(GuestTokenHeader))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithGuestToken(r.Context(), token)))
		})
	}
}
