package imports

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxArchiveBytes caps the cumulative uncompressed size of one
	// archive at 2 GiB.
	DefaultMaxArchiveBytes int64 = 2 << 30

	// DefaultMaxCompressionRatio is the per-entry uncompressed/compressed
	// ceiling above which an entry is treated as a zip bomb.
	DefaultMaxCompressionRatio float64 = 100
)

// ExtractFailureKind classifies why an extraction was aborted.
type ExtractFailureKind string

const (
	ExtractFailureInvalidArchive ExtractFailureKind = "invalid_archive"
	ExtractFailureZipBomb        ExtractFailureKind = "zip_bomb"
	ExtractFailurePathTraversal  ExtractFailureKind = "path_traversal"
	ExtractFailureSizeExceeded   ExtractFailureKind = "size_exceeded"
)

// ExtractError is the typed failure the extractor returns for adversarial or
// malformed archives. It is always batch-fatal and never retried.
type ExtractError struct {
	Kind    ExtractFailureKind
	Message string
}

func (e *ExtractError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ExtractedFile describes one image written into the sandbox. The Filename is
// the entry's basename only; archive directory structure is never reproduced.
type ExtractedFile struct {
	Path      string
	Filename  string
	SizeBytes int64
}

// ExtractResult is the outcome of a successful extraction.
type ExtractResult struct {
	Files       []ExtractedFile
	SidecarPath string
	TotalBytes  int64
	FileCount   int
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
}

var ignoredBasenames = map[string]bool{
	".ds_store":   true,
	"thumbs.db":   true,
	"desktop.ini": true,
	".gitkeep":    true,
}

// Extractor unpacks untrusted ZIP archives into a sandbox directory while
// enforcing the size and compression ceilings.
type Extractor struct {
	maxTotalBytes int64
	maxRatio      float64
}

// ExtractorOption overrides one of the extraction ceilings.
type ExtractorOption func(*Extractor)

// WithMaxTotalBytes overrides the cumulative uncompressed-size ceiling.
func WithMaxTotalBytes(limit int64) ExtractorOption {
	return func(e *Extractor) {
		if limit > 0 {
			e.maxTotalBytes = limit
		}
	}
}

// WithMaxCompressionRatio overrides the per-entry compression-ratio ceiling.
func WithMaxCompressionRatio(ratio float64) ExtractorOption {
	return func(e *Extractor) {
		if ratio > 0 {
			e.maxRatio = ratio
		}
	}
}

// NewExtractor builds an extractor with the default ceilings unless options
// override them.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		maxTotalBytes: DefaultMaxArchiveBytes,
		maxRatio:      DefaultMaxCompressionRatio,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract unpacks the archive at archivePath into destDir, creating destDir if
// absent. Adversarial input is reported as an *ExtractError, never a panic.
func (e *Extractor) Extract(archivePath, destDir string) (*ExtractResult, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sandbox directory: %w", err)
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrInsecurePath) {
			return nil, &ExtractError{
				Kind:    ExtractFailurePathTraversal,
				Message: fmt.Sprintf("archive contains unsafe entry paths: %v", err),
			}
		}
		return nil, &ExtractError{
			Kind:    ExtractFailureInvalidArchive,
			Message: fmt.Sprintf("archive is not a valid zip file: %v", err),
		}
	}
	defer func() { _ = reader.Close() }()

	result := &ExtractResult{}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		normalized := strings.ReplaceAll(entry.Name, "\\", "/")

		// Fast-fail on explicit traversal before reducing to a basename.
		if err := checkTraversal(normalized); err != nil {
			return nil, err
		}

		if shouldIgnoreEntry(normalized) {
			continue
		}

		base := path.Base(normalized)
		if base == "" || base == "." || base == "/" {
			continue
		}

		if entry.CompressedSize64 > 0 {
			ratio := float64(entry.UncompressedSize64) / float64(entry.CompressedSize64)
			if ratio > e.maxRatio {
				return nil, &ExtractError{
					Kind: ExtractFailureZipBomb,
					Message: fmt.Sprintf(
						"entry %q expands %.0fx, above the %.0fx ceiling",
						entry.Name, ratio, e.maxRatio,
					),
				}
			}
		}

		declared := int64(entry.UncompressedSize64)
		if result.TotalBytes+declared > e.maxTotalBytes {
			return nil, &ExtractError{
				Kind: ExtractFailureSizeExceeded,
				Message: fmt.Sprintf(
					"archive exceeds the %d byte uncompressed ceiling at entry %q",
					e.maxTotalBytes, entry.Name,
				),
			}
		}

		destPath := filepath.Join(destDir, base)
		written, err := writeEntry(entry, destPath, e.maxTotalBytes-result.TotalBytes)
		if err != nil {
			return nil, err
		}
		result.TotalBytes += written
		result.FileCount++

		switch ext := strings.ToLower(filepath.Ext(base)); {
		case ext == ".csv":
			// Multiple sidecar tables are implementation-defined: last wins.
			result.SidecarPath = destPath
		case imageExtensions[ext]:
			result.Files = append(result.Files, ExtractedFile{
				Path:      destPath,
				Filename:  base,
				SizeBytes: written,
			})
		}
	}

	return result, nil
}

// checkTraversal rejects entry names carrying parent-directory segments or an
// absolute root, before the basename reduction neutralizes them anyway.
func checkTraversal(name string) *ExtractError {
	if strings.HasPrefix(name, "/") {
		return &ExtractError{
			Kind:    ExtractFailurePathTraversal,
			Message: fmt.Sprintf("entry %q uses an absolute path", name),
		}
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return &ExtractError{
				Kind:    ExtractFailurePathTraversal,
				Message: fmt.Sprintf("entry %q contains a parent-directory segment", name),
			}
		}
	}
	return nil
}

func shouldIgnoreEntry(name string) bool {
	for _, segment := range strings.Split(name, "/") {
		if strings.EqualFold(segment, "__MACOSX") {
			return true
		}
	}
	base := strings.ToLower(path.Base(name))
	if ignoredBasenames[base] {
		return true
	}
	return strings.HasPrefix(base, ".")
}

// writeEntry copies one entry to disk, bounded by the remaining byte budget in
// case the declared uncompressed size lies.
func writeEntry(entry *zip.File, destPath string, remaining int64) (int64, error) {
	src, err := entry.Open()
	if err != nil {
		return 0, &ExtractError{
			Kind:    ExtractFailureInvalidArchive,
			Message: fmt.Sprintf("entry %q cannot be opened: %v", entry.Name, err),
		}
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer func() { _ = dst.Close() }()

	written, err := io.Copy(dst, io.LimitReader(src, remaining+1))
	if err != nil {
		return written, &ExtractError{
			Kind:    ExtractFailureInvalidArchive,
			Message: fmt.Sprintf("entry %q is corrupt: %v", entry.Name, err),
		}
	}
	if written > remaining {
		_ = os.Remove(destPath)
		return written, &ExtractError{
			Kind:    ExtractFailureSizeExceeded,
			Message: fmt.Sprintf("entry %q expanded past the uncompressed ceiling", entry.Name),
		}
	}
	return written, nil
}
