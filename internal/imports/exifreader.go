package imports

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cozy/goexif2/exif"
	"github.com/cozy/goexif2/mknote"
	"github.com/cozy/goexif2/tiff"
	"golang.org/x/text/encoding/unicode"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// MetadataResult aggregates everything read from an image's embedded tags.
// The zero value means "no metadata"; extraction is best-effort and never
// fails an import.
type MetadataResult struct {
	AllTags     map[string]string
	GroupedTags map[string]map[string]string
	Suggested   SuggestedValues
	RawTagCount int
}

// SuggestedValues carries the best-available embedded value per catalog
// field. The field set is fixed; blanks mean no candidate tag was present.
type SuggestedValues struct {
	Title       string
	Description string
	Year        string
	Source      string
	Copyright   string
	Keywords    string
	Artist      string
}

// tagGroups drives GroupedTags. A category appears only when at least one of
// its tags carries a non-blank value.
var tagGroups = []struct {
	name string
	tags []string
}{
	{"camera", []string{"Make", "Model", "Software", "LensModel"}},
	{"capture", []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime", "ExposureTime", "FNumber", "ISOSpeedRatings", "FocalLength", "Flash"}},
	{"image", []string{"PixelXDimension", "PixelYDimension", "Orientation", "XResolution", "YResolution", "ColorSpace"}},
	{"description", []string{"ImageDescription", "XPTitle", "XPComment", "XPSubject", "XPKeywords", "Artist", "Copyright", "UserComment"}},
	{"location", []string{"GPSLatitude", "GPSLongitude", "GPSAltitude", "GPSDateStamp"}},
}

// suggestionCandidates drives Suggested: the first present, non-blank tag in
// each list wins.
var suggestionCandidates = []struct {
	field string
	tags  []string
}{
	{"title", []string{"XPTitle", "ImageDescription", "DocumentName"}},
	{"description", []string{"ImageDescription", "XPComment", "UserComment", "XPSubject"}},
	{"year", []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}},
	{"source", []string{"Software", "Make", "Model"}},
	{"copyright", []string{"Copyright"}},
	{"keywords", []string{"XPKeywords", "XPSubject"}},
	{"artist", []string{"Artist", "XPAuthor"}},
}

type exifWalkerFunc func(exif.FieldName, *tiff.Tag) error

func (w exifWalkerFunc) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return w(name, tag)
}

// ReadImageMetadata decodes the embedded tags of the image at path. Any
// decode failure yields the empty result; callers never see an error.
func ReadImageMetadata(path string) MetadataResult {
	result := MetadataResult{
		AllTags:     map[string]string{},
		GroupedTags: map[string]map[string]string{},
	}

	file, err := os.Open(path)
	if err != nil {
		return result
	}
	defer func() { _ = file.Close() }()

	ex, err := exif.Decode(file)
	if err != nil && exif.IsCriticalError(err) {
		return result
	}
	if ex == nil {
		return result
	}

	_ = ex.Walk(exifWalkerFunc(func(name exif.FieldName, tag *tiff.Tag) error {
		if value := formatTagValue(string(name), tag); value != "" {
			result.AllTags[string(name)] = value
		}
		result.RawTagCount++
		return nil
	}))

	for _, group := range tagGroups {
		for _, tagName := range group.tags {
			value := result.AllTags[tagName]
			if strings.TrimSpace(value) == "" {
				continue
			}
			if result.GroupedTags[group.name] == nil {
				result.GroupedTags[group.name] = map[string]string{}
			}
			result.GroupedTags[group.name][tagName] = value
		}
	}

	result.Suggested = suggestValues(result.AllTags)
	return result
}

func suggestValues(tags map[string]string) SuggestedValues {
	pick := func(candidates []string) string {
		for _, name := range candidates {
			if value := strings.TrimSpace(tags[name]); value != "" {
				return value
			}
		}
		return ""
	}

	var suggested SuggestedValues
	for _, candidate := range suggestionCandidates {
		value := pick(candidate.tags)
		switch candidate.field {
		case "title":
			suggested.Title = value
		case "description":
			suggested.Description = value
		case "year":
			suggested.Year = yearFromDateTime(value)
		case "source":
			suggested.Source = value
		case "copyright":
			suggested.Copyright = value
		case "keywords":
			suggested.Keywords = value
		case "artist":
			suggested.Artist = value
		}
	}
	return suggested
}

// yearFromDateTime reduces an EXIF datetime ("2006:01:02 15:04:05") to its
// year component.
func yearFromDateTime(value string) string {
	if len(value) < 4 {
		return ""
	}
	year := value[:4]
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	return year
}

func formatTagValue(name string, tag *tiff.Tag) string {
	if tag == nil {
		return ""
	}

	// Windows XP* tags store UTF-16LE text in a byte array.
	if strings.HasPrefix(name, "XP") && len(tag.Val) > 0 {
		if decoded := decodeUTF16LE(tag.Val); decoded != "" {
			return decoded
		}
	}

	count := int(tag.Count)
	switch tag.Format() {
	case tiff.StringVal:
		value, err := tag.StringVal()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(strings.Trim(value, "\x00"))

	case tiff.IntVal:
		values := make([]string, 0, count)
		for i := 0; i < count; i++ {
			v, err := tag.Int(i)
			if err != nil {
				continue
			}
			values = append(values, strconv.Itoa(v))
		}
		return strings.Join(values, ", ")

	case tiff.FloatVal:
		values := make([]string, 0, count)
		for i := 0; i < count; i++ {
			v, err := tag.Float(i)
			if err != nil {
				continue
			}
			values = append(values, formatFloat(v))
		}
		return strings.Join(values, ", ")

	case tiff.RatVal:
		values := make([]string, 0, count)
		for i := 0; i < count; i++ {
			rat, err := tag.Rat(i)
			if err != nil || rat == nil {
				continue
			}
			f, _ := rat.Float64()
			if math.IsInf(f, 0) || math.IsNaN(f) {
				continue
			}
			values = append(values, formatFloat(f))
		}
		return strings.Join(values, ", ")

	default:
		return ""
	}
}

// formatFloat rounds to 4 decimal places and drops trailing zeros.
func formatFloat(v float64) string {
	rounded := math.Round(v*10000) / 10000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func decodeUTF16LE(raw []byte) string {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(string(decoded), "\x00"))
}
