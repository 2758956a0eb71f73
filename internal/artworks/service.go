package artworks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.Artwork, error)
}

// Service is the record-creation surface the import pipeline and the API
// depend on. Validation failures carry per-field messages in the error
// details.
type Service interface {
	CreateArtwork(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error)
	GetArtwork(ctx context.Context, id uuid.UUID) (*models.Artwork, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.Artwork, error)
}

type service struct {
	repo     repository
	validate *validator.Validate
}

// NewService constructs the artwork service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("artwork repository required")
	}
	return &service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// artworkDraft carries the validated slice of an artwork. The tags mirror
// the catalog's field rules so failures come back per field.
type artworkDraft struct {
	Title       string   `validate:"required,max=500"`
	Description string   `validate:"omitempty,max=5000"`
	Year        int      `validate:"omitempty,gt=0"`
	Tags        []string `validate:"omitempty,max=50,dive,required"`
	CreatedByID string   `validate:"required,uuid"`
}

func (s *service) CreateArtwork(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	if artwork == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artwork is required")
	}

	artwork.Title = strings.TrimSpace(artwork.Title)
	if messages := s.validateDraft(artwork); len(messages) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artwork validation failed").
			WithDetails(messages)
	}

	created, err := s.repo.Create(ctx, artwork)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist artwork")
	}
	return created, nil
}

func (s *service) GetArtwork(ctx context.Context, id uuid.UUID) (*models.Artwork, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artwork id is required")
	}
	artwork, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "artwork not found")
	}
	return artwork, nil
}

func (s *service) FindByFingerprint(ctx context.Context, fingerprint string) (*models.Artwork, error) {
	return s.repo.FindByFingerprint(ctx, fingerprint)
}

// validateDraft returns one human-readable message per failing field.
func (s *service) validateDraft(artwork *models.Artwork) []string {
	createdBy := ""
	if artwork.CreatedByID != uuid.Nil {
		createdBy = artwork.CreatedByID.String()
	}
	draft := artworkDraft{
		Title:       artwork.Title,
		Description: artwork.Description,
		Year:        artwork.Year,
		Tags:        artwork.Tags,
		CreatedByID: createdBy,
	}

	err := s.validate.Struct(draft)
	if err == nil {
		if artwork.Year > time.Now().Year() {
			return []string{"year: must not be in the future"}
		}
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, formatFieldError(fieldErr))
	}
	if artwork.Year > time.Now().Year() {
		messages = append(messages, "year: must not be in the future")
	}
	return messages
}

func formatFieldError(fieldErr validator.FieldError) string {
	field := strings.ToLower(fieldErr.Field())
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", field)
	case "max":
		return fmt.Sprintf("%s: must be at most %s", field, fieldErr.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s: invalid value", field)
	}
}
