package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/api/middleware"
	"github.com/dmarchuk/artvault-backend/api/responses"
	"github.com/dmarchuk/artvault-backend/api/validators"
	"github.com/dmarchuk/artvault-backend/internal/imports"
	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	"github.com/dmarchuk/artvault-backend/pkg/enums"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

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

type importCreateRequest struct {
	ArchiveKey string `json:"archive_key" validate:"required,max=1024"`
}

// ImportCreate registers a pending batch for an archive already staged in
// object storage.
func ImportCreate(batches batchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload importCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch := &models.ImportBatch{
			ID:          uuid.New(),
			Status:      enums.ImportBatchStatusPending,
			ArchiveKey:  strings.TrimSpace(payload.ArchiveKey),
			CreatedByID: actorID,
		}
		created, err := batches.Create(r.Context(), batch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist import batch"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ImportStart hands a pending batch to the worker via the import topic. A
// batch that is already processing or completed is returned unchanged; a
// failed batch cannot be restarted.
func ImportStart(batches batchStore, events importRequester, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := batchIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := findBatch(r.Context(), batches, batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch batch.Status {
		case enums.ImportBatchStatusProcessing, enums.ImportBatchStatusCompleted:
			responses.WriteSuccess(w, batch)
			return
		case enums.ImportBatchStatusFailed:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeStateConflict, "failed batch cannot be restarted"))
			return
		}

		if err := events.PublishImportRequest(r.Context(), batchID.String()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue import request"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, batch)
	}
}

// ImportProgress serves the polled progress projection.
func ImportProgress(svc progressReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := batchIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		progress, err := svc.Progress(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, progress)
	}
}

// ImportDetail returns the batch row including its per-file log.
func ImportDetail(batches batchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := batchIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := findBatch(r.Context(), batches, batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// ImportList returns the caller's recent batches, newest first.
func ImportList(batches batchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 200 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "limit must be an integer between 1 and 200"))
				return
			}
			limit = parsed
		}

		rows, err := batches.ListByCreator(r.Context(), actorID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list import batches"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func actorFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id")
	}
	return actorID, nil
}

func batchIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "batchId")
	batchID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch id")
	}
	return batchID, nil
}

func findBatch(ctx context.Context, batches batchStore, batchID uuid.UUID) (*models.ImportBatch, error) {
	batch, err := batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "import batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading import batch")
	}
	return batch, nil
}
