package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarchuk/artvault-backend/api/controllers"
	"github.com/dmarchuk/artvault-backend/api/middleware"
	"github.com/dmarchuk/artvault-backend/internal/artworks"
	"github.com/dmarchuk/artvault-backend/internal/imports"
	"github.com/dmarchuk/artvault-backend/pkg/config"
	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	"github.com/dmarchuk/artvault-backend/pkg/logger"

	"github.com/google/uuid"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type batchStore interface {
	Create(ctx context.Context, batch *models.ImportBatch) (*models.ImportBatch, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.ImportBatch, error)
}

type importRequester interface {
	PublishImportRequest(ctx context.Context, batchID string) error
}

type progressReader interface {
	Progress(ctx context.Context, batchID uuid.UUID) (*imports.Progress, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisP pinger,
	gcsP pinger,
	pubsubP pinger,
	batches batchStore,
	progress progressReader,
	events importRequester,
	artworkService artworks.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, gcsP, pubsubP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))

		r.Route("/imports", func(r chi.Router) {
			r.Post("/", controllers.ImportCreate(batches, logg))
			r.Get("/", controllers.ImportList(batches, logg))
			r.Route("/{batchId}", func(r chi.Router) {
				r.Get("/", controllers.ImportDetail(batches, logg))
				r.Post("/start", controllers.ImportStart(batches, events, logg))
				r.Get("/progress", controllers.ImportProgress(progress, logg))
			})
		})

		r.Route("/artworks", func(r chi.Router) {
			r.Post("/", controllers.ArtworkCreate(artworkService, logg))
			r.Get("/{artworkId}", controllers.ArtworkDetail(artworkService, logg))
		})
	})

	return r
}
