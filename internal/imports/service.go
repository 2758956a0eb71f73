package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	"github.com/dmarchuk/artvault-backend/pkg/enums"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
	"github.com/dmarchuk/artvault-backend/pkg/metrics"
)

const defaultProgressTTL = 10 * time.Minute

type batchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
	Save(ctx context.Context, batch *models.ImportBatch) error
}

// BlobStore downloads the staged archive by its object key.
type BlobStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

type archiveExtractor interface {
	Extract(archivePath, destDir string) (*ExtractResult, error)
}

type fileImporter interface {
	ImportFile(ctx context.Context, input ImportInput) ImportOutcome
}

// progressCache is the slice of the redis client the orchestrator needs for
// the polled progress projection. A nil cache disables caching.
type progressCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	ProgressKey(batchID string) string
}

// Progress is the read-only projection pollers consume.
type Progress struct {
	Status            enums.ImportBatchStatus `json:"status"`
	TotalFiles        int                     `json:"total_files"`
	ProcessedFiles    int                     `json:"processed_files"`
	SuccessfulImports int                     `json:"successful_imports"`
	FailedImports     int                     `json:"failed_imports"`
	Percentage        int                     `json:"percentage"`
	Completed         bool                    `json:"completed"`
}

// Service drives one batch end to end and answers progress polls.
type Service interface {
	Start(ctx context.Context, batchID uuid.UUID) (*models.ImportBatch, error)
	Progress(ctx context.Context, batchID uuid.UUID) (*Progress, error)
}

type service struct {
	repo      batchRepository
	blobs     BlobStore
	extractor archiveExtractor
	importer  fileImporter
	cache     progressCache
	metrics   *metrics.ImportMetrics
	logg      *logger.Logger
	ttl       time.Duration
	now       func() time.Time
}

// ServiceOption tunes optional orchestrator collaborators.
type ServiceOption func(*service)

// WithProgressCache enables the redis-backed progress projection.
func WithProgressCache(cache progressCache, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.ImportMetrics) ServiceOption {
	return func(s *service) {
		s.metrics = m
	}
}

// WithClock substitutes the time source; used by tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the orchestrator.
func NewService(repo batchRepository, blobs BlobStore, extractor archiveExtractor, importer fileImporter, logg *logger.Logger, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("batch repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("archive extractor required")
	}
	if importer == nil {
		return nil, fmt.Errorf("file importer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{
		repo:      repo,
		blobs:     blobs,
		extractor: extractor,
		importer:  importer,
		logg:      logg,
		ttl:       defaultProgressTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start runs the batch to a terminal state. Repeat invocations against a
// batch already processing or completed are no-ops; any failure, including a
// panic in a pipeline stage, lands the batch in failed with the message
// recorded and all temporary resources removed.
func (s *service) Start(ctx context.Context, batchID uuid.UUID) (*models.ImportBatch, error) {
	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "import batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading import batch")
	}

	ctx = s.logg.WithBatchID(ctx, batchID.String())

	switch batch.Status {
	case enums.ImportBatchStatusProcessing, enums.ImportBatchStatusCompleted:
		s.logg.Warn(ctx, "batch already started, ignoring repeat invocation")
		return batch, nil
	case enums.ImportBatchStatusFailed:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "failed batch cannot be restarted")
	}

	startedAt := s.now()
	batch.Status = enums.ImportBatchStatusProcessing
	batch.StartedAt = &startedAt
	if err := s.repo.Save(ctx, batch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking batch processing")
	}
	s.writeProgress(ctx, batch)
	s.logg.Info(ctx, "import batch started")

	if runErr := s.processBatch(ctx, batch); runErr != nil {
		s.failBatch(ctx, batch, runErr.Error())
		s.metrics.ObserveBatch("failed", s.now().Sub(startedAt))
		return batch, pkgerrors.Wrap(pkgerrors.CodeUnsafeInput, runErr, "import batch failed")
	}

	completedAt := s.now()
	batch.Status = enums.ImportBatchStatusCompleted
	batch.CompletedAt = &completedAt
	if err := s.repo.Save(ctx, batch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking batch completed")
	}
	s.writeProgress(ctx, batch)
	s.metrics.ObserveBatch("completed", s.now().Sub(startedAt))
	s.logg.Info(ctx, "import batch completed")
	return batch, nil
}

// processBatch performs stages 1-6 of the pipeline. It converts panics into
// errors so the caller can mark the batch failed, and removes the staged
// archive and sandbox directory on every exit path.
func (s *service) processBatch(ctx context.Context, batch *models.ImportBatch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logg.Error(ctx, "import pipeline panicked", fmt.Errorf("%v", r))
			err = fmt.Errorf("unexpected import failure: %v", r)
		}
	}()

	staged, err := s.stageArchive(ctx, batch.ArchiveKey)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(staged) }()

	sandbox, err := os.MkdirTemp("", "artvault-import-*")
	if err != nil {
		return fmt.Errorf("creating sandbox directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(sandbox) }()

	result, err := s.extractor.Extract(staged, sandbox)
	if err != nil {
		return err
	}

	sidecar := SidecarTable{}
	if result.SidecarPath != "" {
		parsed, parseErr := ParseSidecar(result.SidecarPath)
		if parseErr != nil {
			// Degraded but continuable: the batch proceeds without overrides.
			s.logg.Warn(ctx, "sidecar table unreadable, continuing without metadata")
		} else {
			sidecar = parsed
		}
	}

	batch.TotalFiles = len(result.Files)
	if err := s.repo.Save(ctx, batch); err != nil {
		return fmt.Errorf("recording file count: %w", err)
	}
	s.writeProgress(ctx, batch)

	batchSeen := map[string]BatchFingerprint{}
	for _, file := range result.Files {
		outcome := s.importer.ImportFile(ctx, ImportInput{
			File:      file,
			Row:       sidecarRowFor(sidecar, file.Filename),
			Batch:     batch,
			ActorID:   batch.CreatedByID,
			BatchSeen: batchSeen,
		})

		entry := models.ImportLogEntry{
			Filename:          file.Filename,
			AttributeSources:  outcome.Sources,
			Errors:            outcome.Errors,
			Duplicate:         outcome.Duplicate,
			ExistingArtworkID: outcome.ExistingArtworkID,
			ProcessedAt:       s.now(),
		}

		if outcome.Artwork != nil {
			artworkID := outcome.Artwork.ID
			entry.Success = true
			entry.ArtworkID = &artworkID
			batch.SuccessfulImports++
			s.metrics.IncFile("success")
			if outcome.Fingerprint != "" {
				if _, seen := batchSeen[outcome.Fingerprint]; !seen {
					batchSeen[outcome.Fingerprint] = BatchFingerprint{
						ArtworkID: artworkID,
						Title:     outcome.Artwork.Title,
					}
				}
			}
		} else {
			batch.FailedImports++
			s.metrics.IncFile("failure")
		}

		batch.ProcessedFiles++
		batch.Log = append(batch.Log, entry)
		if err := s.repo.Save(ctx, batch); err != nil {
			return fmt.Errorf("recording progress for %s: %w", file.Filename, err)
		}
		s.writeProgress(ctx, batch)
	}

	return nil
}

// stageArchive copies the archive blob to a private temp file and returns its
// path. The caller owns removal.
func (s *service) stageArchive(ctx context.Context, key string) (string, error) {
	body, err := s.blobs.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("downloading archive %s: %w", key, err)
	}
	defer func() { _ = body.Close() }()

	staged, err := os.CreateTemp("", "artvault-archive-*.zip")
	if err != nil {
		return "", fmt.Errorf("staging archive: %w", err)
	}
	if _, err := io.Copy(staged, body); err != nil {
		_ = staged.Close()
		_ = os.Remove(staged.Name())
		return "", fmt.Errorf("staging archive %s: %w", key, err)
	}
	if err := staged.Close(); err != nil {
		_ = os.Remove(staged.Name())
		return "", fmt.Errorf("staging archive %s: %w", key, err)
	}
	return staged.Name(), nil
}

func (s *service) failBatch(ctx context.Context, batch *models.ImportBatch, message string) {
	completedAt := s.now()
	batch.Status = enums.ImportBatchStatusFailed
	batch.ErrorMessages = append(batch.ErrorMessages, message)
	batch.CompletedAt = &completedAt
	if err := s.repo.Save(ctx, batch); err != nil {
		s.logg.Error(ctx, "persisting failed batch state", err)
	}
	s.writeProgress(ctx, batch)
	s.logg.Warn(ctx, "import batch failed")
}

// Progress returns the polled projection, preferring the cache over the
// batch row.
func (s *service) Progress(ctx context.Context, batchID uuid.UUID) (*Progress, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, s.cache.ProgressKey(batchID.String()))
		if err != nil {
			s.logg.Warn(s.logg.WithBatchID(ctx, batchID.String()), "progress cache read failed")
		} else if found {
			var progress Progress
			if jsonErr := json.Unmarshal([]byte(cached), &progress); jsonErr == nil {
				return &progress, nil
			}
		}
	}

	batch, err := s.repo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "import batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading import batch")
	}
	progress := ProgressFromBatch(batch)
	return &progress, nil
}

// ProgressFromBatch projects the polled view from a batch row.
func ProgressFromBatch(batch *models.ImportBatch) Progress {
	progress := Progress{
		Status:            batch.Status,
		TotalFiles:        batch.TotalFiles,
		ProcessedFiles:    batch.ProcessedFiles,
		SuccessfulImports: batch.SuccessfulImports,
		FailedImports:     batch.FailedImports,
		Completed:         batch.Status.IsTerminal(),
	}
	switch {
	case batch.TotalFiles > 0:
		progress.Percentage = batch.ProcessedFiles * 100 / batch.TotalFiles
	case progress.Completed:
		progress.Percentage = 100
	}
	return progress
}

func (s *service) writeProgress(ctx context.Context, batch *models.ImportBatch) {
	if s.cache == nil {
		return
	}
	progress := ProgressFromBatch(batch)
	payload, err := json.Marshal(progress)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.ProgressKey(batch.ID.String()), payload, s.ttl); err != nil {
		s.logg.Warn(ctx, "progress cache write failed")
	}
}

// sidecarRowFor matches a file to its sidecar row by lowercased filename.
func sidecarRowFor(table SidecarTable, filename string) *SidecarRow {
	if len(table) == 0 {
		return nil
	}
	row, ok := table[strings.ToLower(strings.TrimSpace(filename))]
	if !ok {
		return nil
	}
	return &row
}
