package imports

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func pngFixtureBytes(t *testing.T, paint func(x, y int) color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, paint(x, y))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func writePNGFixture(t *testing.T, name string, paint func(x, y int) color.Color) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, pngFixtureBytes(t, paint), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func horizontalGradient(x, _ int) color.Color {
	return color.Gray{Y: uint8(x * 4)}
}

func verticalStripes(x, _ int) color.Color {
	if (x/8)%2 == 0 {
		return color.Gray{Y: 20}
	}
	return color.Gray{Y: 235}
}

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestFingerprintFormat(t *testing.T) {
	t.Parallel()

	fp, ok := Fingerprint(writePNGFixture(t, "gradient.png", horizontalGradient))
	if !ok {
		t.Fatal("expected fingerprint for decodable image")
	}
	if !fingerprintPattern.MatchString(fp) {
		t.Fatalf("fingerprint %q is not 16 lowercase hex characters", fp)
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	t.Parallel()

	first := writePNGFixture(t, "one.png", horizontalGradient)
	second := writePNGFixture(t, "two.png", horizontalGradient)

	fpA, okA := Fingerprint(first)
	fpB, okB := Fingerprint(second)
	if !okA || !okB {
		t.Fatal("expected fingerprints for both images")
	}
	if fpA != fpB {
		t.Fatalf("byte-identical images hashed differently: %q vs %q", fpA, fpB)
	}
}

func TestFingerprintSeparatesDistinctContent(t *testing.T) {
	t.Parallel()

	fpA, _ := Fingerprint(writePNGFixture(t, "gradient.png", horizontalGradient))
	fpB, _ := Fingerprint(writePNGFixture(t, "stripes.png", verticalStripes))
	if fpA == fpB {
		t.Fatalf("structurally different images collided on %q", fpA)
	}
}

func TestFingerprintDecodeFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if fp, ok := Fingerprint(path); ok || fp != "" {
		t.Fatalf("expected no fingerprint for undecodable file, got %q", fp)
	}
	if fp, ok := Fingerprint(filepath.Join(t.TempDir(), "missing.png")); ok || fp != "" {
		t.Fatalf("expected no fingerprint for missing file, got %q", fp)
	}
}

func TestPackBitsHex(t *testing.T) {
	t.Parallel()

	allOnes := make([]byte, 63)
	for i := range allOnes {
		allOnes[i] = 1
	}
	if got := packBitsHex(allOnes); got != "fffffffffffffffe" {
		t.Fatalf("63 set bits should pack to fffffffffffffffe, got %q", got)
	}

	if got := packBitsHex(make([]byte, 63)); got != "0000000000000000" {
		t.Fatalf("63 clear bits should pack to all zeros, got %q", got)
	}
}

func TestMedianOf(t *testing.T) {
	t.Parallel()

	if got := medianOf([]float64{5, 1, 9, 3, 7}); got != 5 {
		t.Fatalf("expected median 5, got %v", got)
	}
}
