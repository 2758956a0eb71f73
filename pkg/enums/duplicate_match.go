package enums

import "fmt"

// DuplicateMatch identifies where a duplicate fingerprint was found: earlier
// in the same batch, or in the persisted catalog.
type DuplicateMatch string

const (
	DuplicateMatchBatch     DuplicateMatch = "batch"
	DuplicateMatchPersisted DuplicateMatch = "persisted"
)

var validDuplicateMatches = []DuplicateMatch{
	DuplicateMatchBatch,
	DuplicateMatchPersisted,
}

// String returns the literal string for the match kind.
func (d DuplicateMatch) String() string {
	return string(d)
}

// IsValid reports whether the match kind is known.
func (d DuplicateMatch) IsValid() bool {
	for _, candidate := range validDuplicateMatches {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDuplicateMatch converts raw input into a DuplicateMatch.
func ParseDuplicateMatch(value string) (DuplicateMatch, error) {
	for _, candidate := range validDuplicateMatches {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid duplicate match %q", value)
}
