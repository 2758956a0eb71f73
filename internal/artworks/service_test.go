package artworks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
)

type stubRepo struct {
	created   []*models.Artwork
	byID      map[uuid.UUID]*models.Artwork
	byPrint   map[string]*models.Artwork
	createErr error
}

func (s *stubRepo) Create(_ context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	clone := *artwork
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.created = append(s.created, &clone)
	return &clone, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Artwork, error) {
	if artwork, ok := s.byID[id]; ok {
		return artwork, nil
	}
	return nil, context.DeadlineExceeded
}

func (s *stubRepo) FindByFingerprint(_ context.Context, fingerprint string) (*models.Artwork, error) {
	return s.byPrint[fingerprint], nil
}

func validArtwork() *models.Artwork {
	return &models.Artwork{
		Title:       "Summer Festival",
		Year:        2020,
		Tags:        []string{"festival"},
		CreatedByID: uuid.New(),
	}
}

func validationDetails(t *testing.T, err error) []string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().([]string)
	if !ok {
		t.Fatalf("expected []string details, got %T", typed.Details())
	}
	return details
}

func TestCreateArtworkPersistsValidDraft(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	created, err := svc.CreateArtwork(context.Background(), validArtwork())
	if err != nil {
		t.Fatalf("CreateArtwork returned error: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(repo.created))
	}
}

func TestCreateArtworkRequiresTitle(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{})
	artwork := validArtwork()
	artwork.Title = "   "

	_, err := svc.CreateArtwork(context.Background(), artwork)
	details := validationDetails(t, err)
	if len(details) != 1 || details[0] != "title: required" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestCreateArtworkRejectsOverlongTitle(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{})
	artwork := validArtwork()
	artwork.Title = strings.Repeat("x", 501)

	_, err := svc.CreateArtwork(context.Background(), artwork)
	details := validationDetails(t, err)
	if len(details) != 1 || details[0] != "title: must be at most 500" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestCreateArtworkRejectsFutureYear(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{})
	artwork := validArtwork()
	artwork.Year = time.Now().Year() + 1

	_, err := svc.CreateArtwork(context.Background(), artwork)
	details := validationDetails(t, err)
	if len(details) != 1 || details[0] != "year: must not be in the future" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestCreateArtworkRequiresActor(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{})
	artwork := validArtwork()
	artwork.CreatedByID = uuid.Nil

	_, err := svc.CreateArtwork(context.Background(), artwork)
	details := validationDetails(t, err)
	if len(details) != 1 || details[0] != "createdbyid: required" {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestCreateArtworkWrapsRepositoryFailure(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{createErr: context.DeadlineExceeded})
	_, err := svc.CreateArtwork(context.Background(), validArtwork())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestFindByFingerprintPassesThrough(t *testing.T) {
	t.Parallel()

	existing := &models.Artwork{ID: uuid.New(), Title: "Existing"}
	svc, _ := NewService(&stubRepo{byPrint: map[string]*models.Artwork{"abc": existing}})

	found, err := svc.FindByFingerprint(context.Background(), "abc")
	if err != nil || found == nil || found.ID != existing.ID {
		t.Fatalf("unexpected result: %v / %v", found, err)
	}

	missing, err := svc.FindByFingerprint(context.Background(), "nope")
	if err != nil || missing != nil {
		t.Fatalf("miss must be (nil, nil), got %v / %v", missing, err)
	}
}
