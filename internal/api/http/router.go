// Package http wires the fleet API's HTTP surface: one handler type per
// endpoint group, a ServeMux with method patterns, and the global middleware
// chain (request logging, authentication).
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/routefleet/routerman/internal/api/authn"
	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/pkg/httpx"
	"github.com/routefleet/routerman/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	resolver     *authn.Resolver
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService       *service.AuthService
	TokenAdminService *service.TokenAdminService
	CredentialService *service.CredentialService
	TelemetryService  *service.TelemetryService
	UpdateService     *service.UpdateService
	ProviderService   *service.ProviderService
	ProfileService    *service.RouterProfileService
}

func NewRouter(
	resolver *authn.Resolver,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		resolver:     resolver,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		Authenticate(r.resolver),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdminTokens()
	r.registerPublic()
	r.registerCredentials()
	r.registerTelemetry()
	r.registerUpdates()
	r.registerProviders()
	r.registerProfiles()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}
	r.Mux.HandleFunc("POST /api/v1/auth/register", h.HandleRegister)
	r.Mux.HandleFunc("POST /api/v1/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /api/v1/devices/register", h.HandleRegisterDevice)
}

func (r *Router) registerAdminTokens() {
	h := &AdminTokenHandler{TokenAdminService: r.TokenAdminService}
	r.Mux.Handle("POST /api/v1/admin/auth/provider-token",
		httpx.Chain(http.HandlerFunc(h.HandleProviderToken),
			RequirePolicy(authn.PolicyAdminOnly)))
	r.Mux.Handle("POST /api/v1/admin/auth/device-token",
		httpx.Chain(http.HandlerFunc(h.HandleDeviceToken),
			RequirePolicy(authn.PolicyAdminOnly)))
}

func (r *Router) registerPublic() {
	h := &PublicHandler{Tokens: r.store.Tokens()}
	r.Mux.HandleFunc("GET /api/v1/public/generic-token", h.HandleGenericToken)
}

func (r *Router) registerCredentials() {
	h := &CredentialHandler{CredentialService: r.CredentialService}
	r.Mux.Handle("GET /api/v1/credentials",
		httpx.Chain(http.HandlerFunc(h.HandleLookup),
			RequirePolicy(authn.PolicyPublicProviders)))
	r.Mux.Handle("GET /api/v1/admin/credentials",
		httpx.Chain(http.HandlerFunc(h.HandleAdminList),
			RequirePolicy(authn.PolicyAdminOnly)))
	r.Mux.Handle("POST /api/v1/admin/credentials",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			RequirePolicy(authn.PolicyAdminOnly)))
	r.Mux.Handle("DELETE /api/v1/admin/credentials/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			RequirePolicy(authn.PolicyAdminOnly)))
}

func (r *Router) registerTelemetry() {
	h := &TelemetryHandler{TelemetryService: r.TelemetryService}
	r.Mux.Handle("POST /api/v1/telemetry/report",
		httpx.Chain(http.HandlerFunc(h.HandleReport),
			RequirePolicy(authn.PolicyPublicProvisioning)))
}

func (r *Router) registerUpdates() {
	h := &UpdateHandler{UpdateService: r.UpdateService}
	r.Mux.Handle("POST /api/v1/updates/check",
		httpx.Chain(http.HandlerFunc(h.HandleCheck),
			RequirePolicy(authn.PolicyPublicProvisioning)))
	r.Mux.Handle("POST /api/v1/admin/updates",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			RequirePolicy(authn.PolicyAdminOnly)))
}

func (r *Router) registerProviders() {
	h := &ProviderHandler{ProviderService: r.ProviderService}
	r.Mux.Handle("GET /api/v1/providers",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			RequirePolicy(authn.PolicyPublicProviders)))
	r.Mux.Handle("GET /api/v1/providers/{id}/models",
		httpx.Chain(http.HandlerFunc(h.HandleListModels),
			RequirePolicy(authn.PolicyPublicProviders)))
	r.Mux.Handle("POST /api/v1/providers",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			RequirePolicy(authn.PolicyAdminOnly)))
	r.Mux.Handle("POST /api/v1/providers/{id}/models",
		httpx.Chain(http.HandlerFunc(h.HandleCreateModel),
			RequirePolicy(authn.PolicyAdminOnly)))
}

func (r *Router) registerProfiles() {
	h := &RouterProfileHandler{ProfileService: r.ProfileService}
	// Ownership is enforced inside the handlers: any authenticated user
	// token qualifies, and each query is scoped to that user's id.
	r.Mux.HandleFunc("GET /api/v1/routerprofiles", h.HandleList)
	r.Mux.HandleFunc("POST /api/v1/routerprofiles", h.HandleCreate)
	r.Mux.HandleFunc("GET /api/v1/routerprofiles/{id}", h.HandleGet)
	r.Mux.HandleFunc("PUT /api/v1/routerprofiles/{id}", h.HandleUpdate)
	r.Mux.HandleFunc("DELETE /api/v1/routerprofiles/{id}", h.HandleDelete)
	r.Mux.Handle("GET /api/v1/admin/routerprofiles",
		httpx.Chain(http.HandlerFunc(h.HandleAdminList),
			RequirePolicy(authn.PolicyAdminOnly)))
	r.Mux.Handle("DELETE /api/v1/admin/routerprofiles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleAdminDelete),
			RequirePolicy(authn.PolicyAdminOnly)))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
