package imports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
	"github.com/dmarchuk/artvault-backend/pkg/enums"
	pkgerrors "github.com/dmarchuk/artvault-backend/pkg/errors"
	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

// ReferenceLookup resolves artist and technique names case-insensitively.
// Implementations return (nil, nil) when no entity matches.
type ReferenceLookup interface {
	ArtistByName(ctx context.Context, name string) (*models.Artist, error)
	TechniqueByName(ctx context.Context, name string) (*models.Technique, error)
}

// RecordRepository persists catalog-record drafts. Validation failures come
// back as a typed error carrying per-field messages.
type RecordRepository interface {
	CreateArtwork(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error)
}

// Importer turns one extracted file plus its optional sidecar row into a
// catalog record, tracking which tier supplied each attribute.
type Importer struct {
	refs    ReferenceLookup
	records RecordRepository
	checker *DuplicateChecker
	logg    *logger.Logger
}

// NewImporter wires the importer to its collaborators.
func NewImporter(refs ReferenceLookup, records RecordRepository, checker *DuplicateChecker, logg *logger.Logger) (*Importer, error) {
	if refs == nil {
		return nil, fmt.Errorf("reference lookup required")
	}
	if records == nil {
		return nil, fmt.Errorf("record repository required")
	}
	if checker == nil {
		return nil, fmt.Errorf("duplicate checker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Importer{refs: refs, records: records, checker: checker, logg: logg}, nil
}

// ImportInput is the per-file unit of work handed to ImportFile.
type ImportInput struct {
	File      ExtractedFile
	Row       *SidecarRow
	Batch     *models.ImportBatch
	ActorID   uuid.UUID
	BatchSeen map[string]BatchFingerprint
}

// ImportOutcome reports one file's import. Success means Artwork is set and
// Errors is empty; Duplicate is advisory and does not block creation.
type ImportOutcome struct {
	Artwork           *models.Artwork
	Sources           models.AttributeSources
	Errors            []string
	Duplicate         bool
	ExistingArtworkID *uuid.UUID
	Fingerprint       string
}

// ImportFile assembles and persists one catalog record.
func (imp *Importer) ImportFile(ctx context.Context, input ImportInput) ImportOutcome {
	outcome := ImportOutcome{}

	if _, err := os.Stat(input.File.Path); err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("file %s does not exist", input.File.Filename))
		return outcome
	}

	detected, err := mimetype.DetectFile(input.File.Path)
	if err != nil || !strings.HasPrefix(detected.String(), "image/") {
		kind := "unknown"
		if err == nil {
			kind = detected.String()
		}
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("file %s is not an image (detected %s)", input.File.Filename, kind))
		return outcome
	}

	meta := ReadImageMetadata(input.File.Path)

	// Dedup is advisory: a duplicate flags the log entry but the record is
	// still created. Index failures degrade to not-duplicate.
	fingerprint, _ := Fingerprint(input.File.Path)
	outcome.Fingerprint = fingerprint
	if check, checkErr := imp.checker.Check(ctx, fingerprint, input.BatchSeen); checkErr != nil {
		imp.logg.Warn(imp.logg.WithField(ctx, "filename", input.File.Filename), "fingerprint index unavailable, skipping dedup")
	} else if check.Duplicate {
		existingID := check.ArtworkID
		outcome.Duplicate = true
		outcome.ExistingArtworkID = &existingID
	}

	row := input.Row
	if row == nil {
		row = &SidecarRow{}
	}

	artwork := &models.Artwork{
		ExifData:    meta.AllTags,
		Fingerprint: fingerprint,
		ImageKey:    fmt.Sprintf("artworks/%s/%s", input.Batch.ID, input.File.Filename),
		CreatedByID: input.ActorID,
	}
	batchID := input.Batch.ID
	artwork.ImportBatchID = &batchID

	sources := models.AttributeSources{}

	artwork.Title, sources.Title = resolveText(row.Title, meta.Suggested.Title, deriveTitle(input.File.Filename))
	artwork.Description, sources.Description = resolveText(row.Description, meta.Suggested.Description, "")
	artwork.Source, sources.Source = resolveText(row.Source, meta.Suggested.Source, "")
	artwork.Copyright, sources.Copyright = resolveText(row.Copyright, meta.Suggested.Copyright, "")
	artwork.Year, sources.Year = resolveYear(row.Year, meta.Suggested.Year)

	if len(row.Tags) > 0 {
		artwork.Tags = row.Tags
		sources.Tags = enums.AttributeSourceSidecar
	} else if embedded := SplitTags(meta.Suggested.Keywords); len(embedded) > 0 {
		artwork.Tags = embedded
		sources.Tags = enums.AttributeSourceEmbedded
	}

	imp.resolveArtist(ctx, artwork, &sources, row.ArtistName, meta.Suggested.Artist)
	imp.resolveTechnique(ctx, artwork, &sources, row.TechniqueName)

	created, err := imp.records.CreateArtwork(ctx, artwork)
	if err != nil {
		outcome.Errors = creationErrorMessages(err)
		return outcome
	}

	outcome.Artwork = created
	outcome.Sources = sources
	return outcome
}

// resolveText applies the sidecar -> embedded -> derived precedence for one
// text field and reports the tier that supplied it.
func resolveText(sidecar, embedded, derived string) (string, enums.AttributeSource) {
	if value := strings.TrimSpace(sidecar); value != "" {
		return value, enums.AttributeSourceSidecar
	}
	if value := strings.TrimSpace(embedded); value != "" {
		return value, enums.AttributeSourceEmbedded
	}
	if derived != "" {
		return derived, enums.AttributeSourceDerived
	}
	return "", ""
}

func resolveYear(sidecar int, embedded string) (int, enums.AttributeSource) {
	if sidecar > 0 {
		return sidecar, enums.AttributeSourceSidecar
	}
	if year, err := strconv.Atoi(embedded); err == nil && year > 0 {
		return year, enums.AttributeSourceEmbedded
	}
	return 0, ""
}

// resolveArtist looks up the artist by name; a miss silently leaves the
// reference unset rather than failing validation.
func (imp *Importer) resolveArtist(ctx context.Context, artwork *models.Artwork, sources *models.AttributeSources, sidecarName, embeddedName string) {
	name, tier := resolveText(sidecarName, embeddedName, "")
	if name == "" {
		return
	}
	artist, err := imp.refs.ArtistByName(ctx, name)
	if err != nil {
		imp.logg.Warn(imp.logg.WithField(ctx, "artist_name", name), "artist lookup failed")
		return
	}
	if artist == nil {
		return
	}
	id := artist.ID
	artwork.ArtistID = &id
	sources.Artist = tier
}

func (imp *Importer) resolveTechnique(ctx context.Context, artwork *models.Artwork, sources *models.AttributeSources, sidecarName string) {
	name := strings.TrimSpace(sidecarName)
	if name == "" {
		return
	}
	technique, err := imp.refs.TechniqueByName(ctx, name)
	if err != nil {
		imp.logg.Warn(imp.logg.WithField(ctx, "technique_name", name), "technique lookup failed")
		return
	}
	if technique == nil {
		return
	}
	id := technique.ID
	artwork.TechniqueID = &id
	sources.Technique = enums.AttributeSourceSidecar
}

var titleSeparators = regexp.MustCompile(`[-_\s]+`)

// deriveTitle builds the fallback title from a filename: extension dropped,
// separator runs collapsed to spaces, title-cased.
func deriveTitle(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	cleaned := strings.TrimSpace(titleSeparators.ReplaceAllString(stem, " "))
	if cleaned == "" {
		return filename
	}
	return cases.Title(language.Und).String(cleaned)
}

// creationErrorMessages flattens a persistence failure into the per-file
// error list, surfacing field-level validation details when present.
func creationErrorMessages(err error) []string {
	if typed := pkgerrors.As(err); typed != nil {
		if details, ok := typed.Details().([]string); ok && len(details) > 0 {
			return details
		}
		return []string{typed.Message()}
	}
	return []string{err.Error()}
}
