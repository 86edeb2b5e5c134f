// Package middleware holds HTTP middleware for the placement API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campushire/placementd/internal/core"
)

// Header names populated by the identity gateway in front of this
// service. Token verification and session mechanics live there; this
// service only consumes the resulting principal.
const (
	HeaderEmail = "X-Auth-Email"
	HeaderRole  = "X-Auth-Role"
)

type contextKey int

const principalKey contextKey = iota

// Identity extracts the authenticated principal from gateway headers and
// stores it in the request context. Requests without the headers carry
// an empty principal; role checks downstream reject them where needed.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := core.Principal{
			Email: strings.TrimSpace(r.Header.Get(HeaderEmail)),
			Role:  core.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderRole)))),
		}
		ctx := context.WithValue(r.Context(), principalKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the principal stored by Identity, or the
// zero principal when none was set.
func PrincipalFromContext(ctx context.Context) core.Principal {
	p, _ := ctx.Value(principalKey).(core.Principal)
	return p
}
