package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/internal/imports"
	"github.com/dmarchuk/artvault-backend/pkg/config"
	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
	"github.com/dmarchuk/artvault-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubBatchStore struct{}

func (stubBatchStore) Create(_ context.Context, batch *models.ImportBatch) (*models.ImportBatch, error) {
	return batch, nil
}

func (stubBatchStore) FindByID(context.Context, uuid.UUID) (*models.ImportBatch, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubBatchStore) ListByCreator(context.Context, uuid.UUID, int) ([]models.ImportBatch, error) {
	return nil, nil
}

type stubProgressReader struct{}

func (stubProgressReader) Progress(context.Context, uuid.UUID) (*imports.Progress, error) {
	return &imports.Progress{}, nil
}

type stubRequester struct{}

func (stubRequester) PublishImportRequest(context.Context, string) error {
	return nil
}

type stubArtworkService struct{}

func (stubArtworkService) CreateArtwork(_ context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	artwork.ID = uuid.New()
	return artwork, nil
}

func (stubArtworkService) GetArtwork(context.Context, uuid.UUID) (*models.Artwork, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artwork not found")
}

func (stubArtworkService) FindByFingerprint(context.Context, string) (*models.Artwork, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	registry := prometheus.NewRegistry()
	metrics.NewImportMetrics(registry)

	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubPinger{},
		stubPinger{},
		stubBatchStore{},
		stubProgressReader{},
		stubRequester{},
		stubArtworkService{},
		registry,
	)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.Code)
		}
		if got := resp.Header().Get("X-ArtVault-Env"); got != "test" {
			t.Fatalf("%s missing env header, got %q", path, got)
		}
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", resp.Code)
	}
}

func TestRouterImportRoutesAreWired(t *testing.T) {
	router := newTestRouter(t)

	// Create rejects anonymous callers.
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(`{"archive_key":"a.zip"}`))
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	// Actor header flows through to the controller.
	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(`{"archive_key":"a.zip"}`))
	req.Header.Set("X-Actor-Id", uuid.NewString())
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	// Unknown batches map to 404.
	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+uuid.NewString(), nil)
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
