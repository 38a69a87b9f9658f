package http

import (
	"context"
	"net/http"

	"github.com/routefleet/routerman/internal/api/authn"
	"github.com/routefleet/routerman/internal/api/domain"
	"github.com/routefleet/routerman/pkg/httpx"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// IdentityFrom returns the authenticated identity for the request, or nil.
func IdentityFrom(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*domain.Identity)
	return id
}

// Authenticate resolves the Authorization header once per request and stores
// the resulting identity (possibly nil) in the context. It never rejects:
// policy checks decide, this only establishes who is asking.
func Authenticate(resolver *authn.Resolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolver.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if identity != nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxKeyIdentity, identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePolicy gates a route on a named policy. Missing identity maps to
// 401 with a WWW-Authenticate challenge; an identity the policy rejects maps
// to 403. Bodies stay generic, claims never leak.
func RequirePolicy(policy string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFrom(r.Context())
			if identity == nil {
				httpx.Unauthorized(w, "authentication required")
				return
			}
			if !authn.Evaluate(policy, identity) {
				httpx.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
