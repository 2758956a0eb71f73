package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmarchuk/artvault-backend/internal/artworks"
	"github.com/dmarchuk/artvault-backend/internal/imports"
	"github.com/dmarchuk/artvault-backend/internal/refdata"
	"github.com/dmarchuk/artvault-backend/pkg/config"
	"github.com/dmarchuk/artvault-backend/pkg/db"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
	"github.com/dmarchuk/artvault-backend/pkg/metrics"
	"github.com/dmarchuk/artvault-backend/pkg/redis"
	"github.com/dmarchuk/artvault-backend/pkg/storage/gcs"
)

// buildImportService assembles the bulk-import pipeline from its stages.
func buildImportService(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	gcsClient *gcs.Client,
	registry prometheus.Registerer,
) (imports.Service, error) {
	artworkRepo := artworks.NewRepository(dbClient.DB())

	artworkService, err := artworks.NewService(artworkRepo)
	if err != nil {
		return nil, fmt.Errorf("artwork service: %w", err)
	}

	checker, err := imports.NewDuplicateChecker(artworkRepo)
	if err != nil {
		return nil, fmt.Errorf("duplicate checker: %w", err)
	}

	importer, err := imports.NewImporter(
		refdata.NewRepository(dbClient.DB()),
		artworkService,
		checker,
		logg,
	)
	if err != nil {
		return nil, fmt.Errorf("file importer: %w", err)
	}

	extractor := imports.NewExtractor(
		imports.WithMaxTotalBytes(cfg.Import.MaxArchiveBytes),
		imports.WithMaxCompressionRatio(cfg.Import.MaxCompressionRatio),
	)

	return imports.NewService(
		imports.NewRepository(dbClient.DB()),
		gcsClient,
		extractor,
		importer,
		logg,
		imports.WithProgressCache(redisClient, cfg.Import.ProgressCacheTTL),
		imports.WithMetrics(metrics.NewImportMetrics(registry)),
	)
}
