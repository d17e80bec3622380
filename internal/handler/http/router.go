package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/ReviewModerationGo/internal/service"
	"github.com/utafrali/ReviewModerationGo/pkg/health"
	"github.com/utafrali/ReviewModerationGo/pkg/middleware"
)

// NewRouter creates a chi router with all moderation service routes registered.
func NewRouter(
	preprocessService *service.PreprocessService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("moderation"))
	r.Use(middleware.Tracing("moderation"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Moderation API endpoints
	reviewHandler := NewReviewHandler(preprocessService, logger)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/ingest", reviewHandler.IngestReview)
		r.Get("/", reviewHandler.ListReviews)
		r.Get("/{id}", reviewHandler.GetReview)
	})

	// Raw object upload feeding the pipeline. Bodies are arbitrary blobs, so
	// the JSON content-type guard is not mounted here.
	r.Put("/api/v1/objects/{bucket}/*", reviewHandler.UploadObject)

	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/{id}", reviewHandler.GetCustomer)
	})

	return r
}
