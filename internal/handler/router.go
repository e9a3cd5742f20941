package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nabil/meshbari/internal/gate"
	"github.com/nabil/meshbari/internal/metrics"
	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/model"
)

// RouterDeps bundles everything NewRouter needs.
type RouterDeps struct {
	// middleware dependencies
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// services
	SearchPageSize int
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig
	ListingService ListingServiceInterface
	Searcher       SearcherInterface
	BookingService BookingServiceInterface
	ReviewService  ReviewServiceInterface
	AdminService   AdminServiceInterface

	// observability
	Collector      metrics.MetricsCollector
	MetricsHandler http.Handler
}

// legacyRedirects maps retired page paths to the current ones. Old
// bookmarks and shared links get a permanent redirect.
var legacyRedirects = map[string]string{
	"/student/dashboard":    gate.StudentDashboardPath,
	"/owner/dashboard":      gate.OwnerDashboardPath,
	"/owner/create-listing": gate.OwnerDashboardPath + "/create-listing",
	"/admin/dashboard":      gate.AdminDashboardPath,
}

// NewRouter wires every route and the middleware chain.
//
// Middleware order:
//
//	CORS, SecurityHeaders, Logging, StatusMetrics, Recovery, SessionLoader, CSRF
//
// The session loader runs for every route so public pages can render
// user-specific chrome; the role gates sit on the protected groups only.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Collector != nil {
		r.Use(middleware.NewStatusMetricsMiddleware(deps.Collector.RecordHTTPStatus))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSessionLoaderMiddleware(deps.SessionFinder, deps.UserFinder))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	listingHandler := NewListingHandler(deps.ListingService, deps.Searcher, deps.Collector, deps.SearchPageSize)
	bookingHandler := NewBookingHandler(deps.BookingService, deps.Collector)
	reviewHandler := NewReviewHandler(deps.ReviewService)
	adminHandler := NewAdminHandler(deps.AdminService)
	dashboardHandler := NewDashboardHandler(deps.ListingService, deps.BookingService, deps.AdminService)

	// --- public routes ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Route("/api/listings", func(r chi.Router) {
		r.Get("/", listingHandler.Search)
		r.Get("/featured", listingHandler.Featured)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", listingHandler.Get)
			r.Get("/reviews", reviewHandler.List)

			// submissions need a session
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleStudent))
				r.Post("/reviews", reviewHandler.Create)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole())
				r.Post("/flags", adminHandler.FlagListing)
			})
		})
	})

	r.Get("/api/compare", listingHandler.Compare)
	r.Get("/api/testimonials", adminHandler.ListApprovedTestimonials)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole())
		r.Post("/api/testimonials", adminHandler.SubmitTestimonial)
	})

	// --- student routes ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleStudent))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/bookings", bookingHandler.ListMine)
		r.With(deps.RateLimiter.BookingMiddleware()).Post("/api/bookings", bookingHandler.Create)
		r.Post("/api/bookings/{id}/cancel", bookingHandler.Cancel)
	})

	// --- owner routes ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleOwner))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/owner/listings", func(r chi.Router) {
			r.Get("/", listingHandler.ListMine)
			r.Post("/", listingHandler.Create)
			r.Put("/{id}", listingHandler.Update)
		})

		r.Get("/api/owner/bookings", bookingHandler.ListReceived)
		r.Post("/api/bookings/{id}/approve", bookingHandler.Approve)
		r.Post("/api/bookings/{id}/reject", bookingHandler.Reject)
	})

	// listing deletion is shared between the owner and admins
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleOwner, model.RoleAdmin))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Delete("/api/owner/listings/{id}", listingHandler.Delete)
	})

	// --- admin routes ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(model.RoleAdmin))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/banned", adminHandler.SetUserBanned)
			r.Put("/listings/{id}/verified", adminHandler.SetListingVerified)
			r.Put("/listings/{id}/featured", adminHandler.SetListingFeatured)
			r.Get("/testimonials", adminHandler.ListTestimonials)
			r.Put("/testimonials/{id}/approved", adminHandler.SetTestimonialApproved)
			r.Delete("/testimonials/{id}", adminHandler.DeleteTestimonial)
			r.Get("/flags", adminHandler.ListOpenFlags)
			r.Post("/flags/{id}/resolve", adminHandler.ResolveFlag)
			r.Get("/logs", adminHandler.RecentLogs)
		})
	})

	// --- dashboard pages ---

	r.With(middleware.RequireRole(model.RoleStudent)).Get(gate.StudentDashboardPath, dashboardHandler.Student)
	r.With(middleware.RequireRole(model.RoleStudent)).Get(gate.StudentDashboardPath+"/{tab}", dashboardHandler.Student)
	r.With(middleware.RequireRole(model.RoleOwner)).Get(gate.OwnerDashboardPath, dashboardHandler.Owner)
	r.With(middleware.RequireRole(model.RoleOwner)).Get(gate.OwnerDashboardPath+"/create-listing", dashboardHandler.OwnerCreateListing)
	r.With(middleware.RequireRole(model.RoleOwner)).Get(gate.OwnerDashboardPath+"/edit-listing/{id}", dashboardHandler.OwnerEditListing)
	r.With(middleware.RequireRole(model.RoleOwner)).Get(gate.OwnerDashboardPath+"/{tab}", dashboardHandler.Owner)
	r.With(middleware.RequireRole(model.RoleAdmin)).Get(gate.AdminDashboardPath, dashboardHandler.Admin)
	r.With(middleware.RequireRole(model.RoleAdmin)).Get(gate.AdminDashboardPath+"/{tab}", dashboardHandler.Admin)
	r.With(middleware.RequireRole()).Get("/profile", dashboardHandler.Profile)
	r.With(middleware.RequireRole()).Get("/profile/modern", dashboardHandler.Profile)

	// legacy paths redirect permanently
	for from, to := range legacyRedirects {
		target := to
		r.Get(from, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})
	}

	// unknown routes answer JSON, not the chi default
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "NOT_FOUND",
			Message:  "The requested path does not exist.",
			Category: "system",
			Action:   "Check the URL.",
		})
	})

	return r
}
