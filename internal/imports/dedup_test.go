package imports

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	"github.com/dmarchuk/artvault-backend/pkg/enums"
)

type stubFingerprintIndex struct {
	artworks map[string]*models.Artwork
	err      error
	calls    int
}

func (s *stubFingerprintIndex) FindByFingerprint(_ context.Context, fingerprint string) (*models.Artwork, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.artworks[fingerprint], nil
}

func TestCheckBlankFingerprintIsNeverDuplicate(t *testing.T) {
	t.Parallel()

	index := &stubFingerprintIndex{}
	checker, err := NewDuplicateChecker(index)
	if err != nil {
		t.Fatalf("NewDuplicateChecker: %v", err)
	}

	check, err := checker.Check(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if check.Duplicate {
		t.Fatal("blank fingerprint classified as duplicate")
	}
	if index.calls != 0 {
		t.Fatal("blank fingerprint should not reach the persisted index")
	}
}

func TestCheckBatchMapWinsOverPersistedIndex(t *testing.T) {
	t.Parallel()

	batchID := uuid.New()
	persistedID := uuid.New()
	index := &stubFingerprintIndex{artworks: map[string]*models.Artwork{
		"abcdef0123456789": {ID: persistedID, Title: "Persisted"},
	}}
	checker, _ := NewDuplicateChecker(index)

	batchSeen := map[string]BatchFingerprint{
		"abcdef0123456789": {ArtworkID: batchID, Title: "In Batch"},
	}
	check, err := checker.Check(context.Background(), "abcdef0123456789", batchSeen)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !check.Duplicate || check.Match != enums.DuplicateMatchBatch {
		t.Fatalf("expected batch match, got %+v", check)
	}
	if check.ArtworkID != batchID || check.Title != "In Batch" {
		t.Fatalf("batch candidate not surfaced: %+v", check)
	}
	if check.Similarity != 100 {
		t.Fatalf("exact match must report similarity 100, got %d", check.Similarity)
	}
	if index.calls != 0 {
		t.Fatal("batch hit should short-circuit the persisted index")
	}
}

func TestCheckFallsBackToPersistedIndex(t *testing.T) {
	t.Parallel()

	persistedID := uuid.New()
	index := &stubFingerprintIndex{artworks: map[string]*models.Artwork{
		"abcdef0123456789": {ID: persistedID, Title: "Persisted"},
	}}
	checker, _ := NewDuplicateChecker(index)

	check, err := checker.Check(context.Background(), "abcdef0123456789", map[string]BatchFingerprint{})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !check.Duplicate || check.Match != enums.DuplicateMatchPersisted {
		t.Fatalf("expected persisted match, got %+v", check)
	}
	if check.ArtworkID != persistedID || check.Similarity != 100 {
		t.Fatalf("persisted candidate not surfaced: %+v", check)
	}
}

func TestCheckUnknownFingerprintIsNotDuplicate(t *testing.T) {
	t.Parallel()

	checker, _ := NewDuplicateChecker(&stubFingerprintIndex{})
	check, err := checker.Check(context.Background(), "ffffffffffffffff", nil)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if check.Duplicate {
		t.Fatalf("unknown fingerprint classified as duplicate: %+v", check)
	}
}

func TestCheckPropagatesIndexErrors(t *testing.T) {
	t.Parallel()

	checker, _ := NewDuplicateChecker(&stubFingerprintIndex{err: errors.New("db down")})
	if _, err := checker.Check(context.Background(), "ffffffffffffffff", nil); err == nil {
		t.Fatal("expected index error to propagate")
	}
}

func TestNewDuplicateCheckerRequiresIndex(t *testing.T) {
	t.Parallel()

	if _, err := NewDuplicateChecker(nil); err == nil {
		t.Fatal("expected error for nil index")
	}
}
