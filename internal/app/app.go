package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/nabil/meshbari/internal/admin"
	"github.com/nabil/meshbari/internal/auth"
	"github.com/nabil/meshbari/internal/booking"
	"github.com/nabil/meshbari/internal/config"
	"github.com/nabil/meshbari/internal/database"
	"github.com/nabil/meshbari/internal/handler"
	"github.com/nabil/meshbari/internal/listing"
	"github.com/nabil/meshbari/internal/logger"
	"github.com/nabil/meshbari/internal/metrics"
	"github.com/nabil/meshbari/internal/middleware"
	"github.com/nabil/meshbari/internal/repository"
	"github.com/nabil/meshbari/internal/review"
	"github.com/nabil/meshbari/internal/security"
	"github.com/nabil/meshbari/internal/worker/cleanup"
)

// Init loads the Config from the environment and sets up JSON structured
// logging. Log output goes to w.
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run is the application entry point. It parses the subcommand from args
// (pass os.Args[1:]) and starts the corresponding mode.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck stays lightweight and skips full initialization
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe starts the API server. It opens the database, wires every
// dependency, and serves HTTP until SIGINT or SIGTERM, then shuts down
// gracefully.
func runServe(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	listingRepo := repository.NewPostgresListingRepo(db)
	bookingRepo := repository.NewPostgresBookingRepo(db)
	reviewRepo := repository.NewPostgresReviewRepo(db)
	testimonialRepo := repository.NewPostgresTestimonialRepo(db)
	flagRepo := repository.NewPostgresFlagRepo(db)
	adminLogRepo := repository.NewPostgresAdminLogRepo(db)

	sanitizer := security.NewContentSanitizer()
	urlGuard := security.NewURLGuard()

	authService := auth.NewService(userRepo, sessionRepo, auth.ServiceConfig{
		SessionTTL: time.Duration(cfg.SessionMaxAge) * time.Second,
	})
	listingService := listing.NewService(listingRepo, sanitizer, urlGuard)
	searcher := listing.NewSearcher(listingService)
	bookingService := booking.NewService(bookingRepo, listingRepo, sanitizer)
	reviewService := review.NewService(reviewRepo, listingRepo, sanitizer)
	adminService := admin.NewService(
		userRepo, sessionRepo, listingRepo,
		testimonialRepo, flagRepo, adminLogRepo, sanitizer,
	)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// config limits are req/min per user; the limiter wants req/sec
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.BookingRate = rate.Limit(float64(cfg.RateLimitBooking) / 60.0)
	rateLimiterCfg.BookingBurst = cfg.RateLimitBooking

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		UserFinder:        userRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:    rateLimiter,
		Logger:         slog.Default(),
		SearchPageSize: cfg.DefaultPageSize,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		ListingService: listingService,
		Searcher:       searcher,
		BookingService: bookingService,
		ReviewService:  reviewService,
		AdminService:   adminService,

		Collector:      collector,
		MetricsHandler: metrics.SetupMetricsRoute(registry),
	}

	router := handler.NewRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker starts the maintenance worker: a daily cleanup pass purging
// expired sessions and pruning closed listing flags. It runs once at
// startup and then on a 24h ticker until SIGINT or SIGTERM.
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	sessionRepo := repository.NewPostgresSessionRepo(db)
	flagRepo := repository.NewPostgresFlagRepo(db)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, flagRepo, collector, slog.Default())
	cleanupJob.FlagRetentionDays = cfg.FlagRetentionDays

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Int("flag_retention_days", cfg.FlagRetentionDays),
	)

	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate applies all pending database migrations in order.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck sends a request to the local /health endpoint and
// reports the result. Docker healthcheck subcommand for distroless images.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL hides credentials in the database URL for log output.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
