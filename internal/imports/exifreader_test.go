package imports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadImageMetadataDecodeFailureIsEmptyResult(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	if err := os.WriteFile(path, []byte("plain text, no pixels"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	result := ReadImageMetadata(path)
	if len(result.AllTags) != 0 || len(result.GroupedTags) != 0 || result.RawTagCount != 0 {
		t.Fatalf("expected empty result for undecodable file, got %+v", result)
	}
	if result.Suggested != (SuggestedValues{}) {
		t.Fatalf("expected zero suggestions, got %+v", result.Suggested)
	}
}

func TestReadImageMetadataMissingFileIsEmptyResult(t *testing.T) {
	t.Parallel()

	result := ReadImageMetadata(filepath.Join(t.TempDir(), "absent.jpg"))
	if len(result.AllTags) != 0 || result.RawTagCount != 0 {
		t.Fatalf("expected empty result for missing file, got %+v", result)
	}
}

func TestSuggestValuesRespectsPriorityOrder(t *testing.T) {
	t.Parallel()

	tags := map[string]string{
		"XPTitle":          "Window Title",
		"ImageDescription": "A riverside scene",
		"DateTime":         "2019:05:01 10:00:00",
		"DateTimeOriginal": "2017:08:15 14:30:00",
		"Software":         "DarkroomPro 2.1",
		"Copyright":        "© Jane Doe",
		"XPKeywords":       "river; summer",
		"Artist":           "Jane Doe",
	}

	suggested := suggestValues(tags)
	if suggested.Title != "Window Title" {
		t.Fatalf("XPTitle should outrank ImageDescription, got %q", suggested.Title)
	}
	if suggested.Description != "A riverside scene" {
		t.Fatalf("unexpected description %q", suggested.Description)
	}
	if suggested.Year != "2017" {
		t.Fatalf("DateTimeOriginal should win and reduce to its year, got %q", suggested.Year)
	}
	if suggested.Source != "DarkroomPro 2.1" || suggested.Copyright != "© Jane Doe" {
		t.Fatalf("unexpected source/copyright: %+v", suggested)
	}
	if suggested.Keywords != "river; summer" || suggested.Artist != "Jane Doe" {
		t.Fatalf("unexpected keywords/artist: %+v", suggested)
	}
}

func TestSuggestValuesFallsThroughBlankCandidates(t *testing.T) {
	t.Parallel()

	suggested := suggestValues(map[string]string{
		"XPTitle":          "   ",
		"ImageDescription": "Fallback Title",
	})
	if suggested.Title != "Fallback Title" {
		t.Fatalf("blank candidate should be skipped, got %q", suggested.Title)
	}
}

func TestYearFromDateTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"2017:08:15 14:30:00", "2017"},
		{"1999", "1999"},
		{"abcd:01:01", ""},
		{"20", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := yearFromDateTime(tc.in); got != tc.want {
			t.Fatalf("yearFromDateTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatFloatRoundsToFourPlaces(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{1.23456789, "1.2346"},
		{2.5, "2.5"},
		{100, "100"},
	}
	for _, tc := range cases {
		if got := formatFloat(tc.in); got != tc.want {
			t.Fatalf("formatFloat(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	t.Parallel()

	// "Art" in UTF-16LE with a trailing NUL, as XP* tags store it.
	raw := []byte{'A', 0, 'r', 0, 't', 0, 0, 0}
	if got := decodeUTF16LE(raw); got != "Art" {
		t.Fatalf("expected %q, got %q", "Art", got)
	}
}
