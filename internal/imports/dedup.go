package imports

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	"github.com/dmarchuk/artvault-backend/pkg/enums"
)

// exactMatchSimilarity is the similarity reported for fingerprint equality;
// no fuzzy or Hamming-distance matching is performed.
const exactMatchSimilarity = 100

// FingerprintIndex is the persisted lookup consulted after the in-batch map.
// Implementations return (nil, nil) when no record carries the fingerprint.
type FingerprintIndex interface {
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.Artwork, error)
}

// BatchFingerprint identifies a record created earlier in the same batch.
type BatchFingerprint struct {
	ArtworkID uuid.UUID
	Title     string
}

// DuplicateCheck classifies one fingerprint.
type DuplicateCheck struct {
	Duplicate  bool
	Match      enums.DuplicateMatch
	ArtworkID  uuid.UUID
	Title      string
	Similarity int
}

// DuplicateChecker classifies fingerprints against the current batch and the
// persisted catalog. It holds no state across calls.
type DuplicateChecker struct {
	index FingerprintIndex
}

// NewDuplicateChecker wires the checker to its persisted index.
func NewDuplicateChecker(index FingerprintIndex) (*DuplicateChecker, error) {
	if index == nil {
		return nil, fmt.Errorf("fingerprint index required")
	}
	return &DuplicateChecker{index: index}, nil
}

// Check classifies fingerprint. The in-batch map is consulted before the
// persisted index; the first match wins. A blank fingerprint is never a
// duplicate.
func (c *DuplicateChecker) Check(ctx context.Context, fingerprint string, batchSeen map[string]BatchFingerprint) (DuplicateCheck, error) {
	if strings.TrimSpace(fingerprint) == "" {
		return DuplicateCheck{}, nil
	}

	if entry, ok := batchSeen[fingerprint]; ok {
		return DuplicateCheck{
			Duplicate:  true,
			Match:      enums.DuplicateMatchBatch,
			ArtworkID:  entry.ArtworkID,
			Title:      entry.Title,
			Similarity: exactMatchSimilarity,
		}, nil
	}

	existing, err := c.index.FindByFingerprint(ctx, fingerprint)
	if err != nil {
		return DuplicateCheck{}, fmt.Errorf("querying fingerprint index: %w", err)
	}
	if existing == nil {
		return DuplicateCheck{}, nil
	}

	return DuplicateCheck{
		Duplicate:  true,
		Match:      enums.DuplicateMatchPersisted,
		ArtworkID:  existing.ID,
		Title:      existing.Title,
		Similarity: exactMatchSimilarity,
	}, nil
}
