package enums

import "fmt"

// AttributeSource records which upstream tier supplied a catalog field during
// bulk import: the sidecar CSV, metadata embedded in the image, or a value
// derived from the file itself.
type AttributeSource string

const (
	AttributeSourceSidecar  AttributeSource = "sidecar"
	AttributeSourceEmbedded AttributeSource = "embedded"
	AttributeSourceDerived  AttributeSource = "derived"
)

var validAttributeSources = []AttributeSource{
	AttributeSourceSidecar,
	AttributeSourceEmbedded,
	AttributeSourceDerived,
}

// String returns the literal string for the source.
func (a AttributeSource) String() string {
	return string(a)
}

// IsValid reports whether the source is known.
func (a AttributeSource) IsValid() bool {
	for _, candidate := range validAttributeSources {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttributeSource converts raw input into an AttributeSource.
func ParseAttributeSource(value string) (AttributeSource, error) {
	for _, candidate := range validAttributeSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attribute source %q", value)
}
