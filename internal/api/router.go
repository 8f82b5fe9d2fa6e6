package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mwells/saasdash/internal/api/handlers"
	"github.com/mwells/saasdash/internal/api/middleware"
	"github.com/mwells/saasdash/internal/config"
	"github.com/mwells/saasdash/internal/oauth"
	"github.com/mwells/saasdash/internal/service"
	"github.com/mwells/saasdash/internal/stream"
	"github.com/redis/go-redis/v9"
)

// RouterOptions carries the process-scoped collaborators the router wires
// into middleware and handlers. Redis may be nil (rate limiting then runs
// purely in-process) and Sink may be nil (webhooks are discarded).
type RouterOptions struct {
	Redis redis.UniversalClient
	Sink  stream.EventSink
}

func NewRouter(services *service.Services, cfg *config.Config, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	sink := opts.Sink
	if sink == nil {
		sink = stream.NopSink{}
	}

	authHandler := handlers.NewAuthHandler(services.Auth, services.Session, services.Organization, oauth.NewRegistry(), cfg)
	orgHandler := handlers.NewOrganizationHandler(services.Organization, services.Auth, services.Session)
	dashboardHandler := handlers.NewDashboardHandler(services.Dashboard, services.Organization)
	webhookHandler := handlers.NewWebhookHandler(sink, cfg.StripeWebhookSecret)

	registerLimiter := middleware.NewRateLimiter(middleware.RateLimitOptions{
		Window: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitMaxRegister,
		Prefix: "register",
	}, opts.Redis)
	loginLimiter := middleware.NewRateLimiter(middleware.RateLimitOptions{
		Window: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitMaxLogin,
		Prefix: "login",
	}, opts.Redis)

	sessionMiddleware := middleware.Session(services.Session, services.Auth, cfg.SessionCookieName)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(sessionMiddleware)

		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimiter.Handler).Post("/register", authHandler.Register)
			r.With(loginLimiter.Handler).Post("/login", authHandler.Login)

			r.Get("/{provider}/init", authHandler.ProviderInit)
			r.Get("/{provider}/callback", authHandler.ProviderCallback)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Post("/switch", authHandler.Switch)
			})
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", orgHandler.List)
			r.Post("/", orgHandler.Create)
			r.Get("/{id}/members", orgHandler.ListMembers)
			r.Post("/{id}/members", orgHandler.AddMember)
			r.Delete("/{id}/members/{userId}", orgHandler.RemoveMember)

			r.Route("/{id}/dashboards", func(r chi.Router) {
				r.Get("/", dashboardHandler.List)
				r.Get("/{slug}", dashboardHandler.Get)
				r.Put("/{slug}", dashboardHandler.Save)
				r.Delete("/{slug}", dashboardHandler.Delete)
			})
		})
	})

	// Webhooks are authenticated by signature, not session.
	r.Post("/webhooks/stripe", webhookHandler.HandleStripe)

	return r
}
