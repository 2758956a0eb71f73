package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/api/responses"
	"github.com/dmarchuk/artvault-backend/api/validators"
	"github.com/dmarchuk/artvault-backend/internal/artworks"
	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

type artworkCreateRequest struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Year        int      `json:"year" validate:"omitempty,gt=0"`
	Tags        []string `json:"tags" validate:"omitempty,max=50,dive,required"`
}

// ArtworkCreate registers a single catalog record outside the bulk pipeline.
func ArtworkCreate(svc artworks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload artworkCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateArtwork(r.Context(), &models.Artwork{
			Title:       payload.Title,
			Description: payload.Description,
			Year:        payload.Year,
			Tags:        payload.Tags,
			CreatedByID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ArtworkDetail returns a single record including its import provenance.
func ArtworkDetail(svc artworks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artworkID, err := uuid.Parse(chi.URLParam(r, "artworkId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid artwork id"))
			return
		}

		artwork, err := svc.GetArtwork(r.Context(), artworkID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, artwork)
	}
}
