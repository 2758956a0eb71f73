package imports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// SidecarRow holds the per-file overrides supplied by the batch's CSV table.
// Zero values mean "not provided".
type SidecarRow struct {
	Title         string
	Description   string
	Year          int
	Source        string
	Copyright     string
	Tags          []string
	ArtistName    string
	TechniqueName string
}

// SidecarTable maps a lowercased, trimmed filename to its row.
type SidecarTable map[string]SidecarRow

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Legacy exports produced by desktop cataloguing tools commonly arrive in one
// of these single-byte encodings; they are tried in order after UTF-8.
var fallbackEncodings = []encoding.Encoding{
	charmap.Windows1251,
	charmap.ISO8859_1,
}

// ParseSidecar reads the metadata table at path. A missing or empty table is
// not an error and yields an empty map; malformed CSV content is.
func ParseSidecar(path string) (SidecarTable, error) {
	table := SidecarTable{}
	if strings.TrimSpace(path) == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("reading sidecar table: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return table, nil
	}

	reader := csv.NewReader(strings.NewReader(decodeTableBytes(raw)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing sidecar table: %w", err)
	}
	if len(records) == 0 {
		return table, nil
	}

	columns := map[string]int{}
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["filename"]; !ok {
		return nil, fmt.Errorf("sidecar table has no filename column")
	}

	for _, record := range records[1:] {
		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		filename := strings.ToLower(field("filename"))
		if filename == "" {
			continue
		}

		table[filename] = SidecarRow{
			Title:         field("title"),
			Description:   field("description"),
			Year:          parseYear(field("year")),
			Source:        field("source"),
			Copyright:     field("copyright"),
			Tags:          SplitTags(field("tags")),
			ArtistName:    field("artist"),
			TechniqueName: field("technique"),
		}
	}

	return table, nil
}

// decodeTableBytes normalizes the raw table to UTF-8, trying each known
// encoding in order and substituting unrepresentable bytes rather than
// failing.
func decodeTableBytes(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}
	for _, enc := range fallbackEncodings {
		if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
			return string(decoded)
		}
	}
	return string(bytes.ToValidUTF8(raw, []byte("�")))
}

// parseYear accepts only a positive integer no later than the current year.
func parseYear(value string) int {
	if value == "" {
		return 0
	}
	year, err := strconv.Atoi(value)
	if err != nil || year <= 0 || year > time.Now().Year() {
		return 0
	}
	return year
}

// SplitTags breaks a tag list on commas and semicolons, trimming each piece,
// dropping blanks, and deduplicating case-insensitively while preserving
// first-occurrence order.
func SplitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	pieces := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	seen := map[string]bool{}
	tags := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		tag := strings.TrimSpace(piece)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
