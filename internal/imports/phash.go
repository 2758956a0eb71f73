package imports

import (
	"image"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nfnt/resize"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	phashGrid  = 32
	phashBlock = 8
)

// Fingerprint computes a 64-bit perceptual hash of the image at path,
// rendered as 16 lowercase hex characters. The second return is false when
// the image cannot be decoded; hashing is best-effort like metadata reading.
//
// The hash keeps only the lowest spatial frequencies of a 32x32 downsample,
// so identical bytes always produce identical fingerprints and lossless
// re-encodings land close.
func Fingerprint(path string) (string, bool) {
	file, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", false
	}

	grid := grayscaleGrid(resize.Resize(phashGrid, phashGrid, img, resize.Bilinear))
	coeffs := dct2D(grid)

	// Top-left 8x8 block minus the DC coefficient: 63 low-frequency values.
	values := make([]float64, 0, phashBlock*phashBlock-1)
	for y := 0; y < phashBlock; y++ {
		for x := 0; x < phashBlock; x++ {
			if x == 0 && y == 0 {
				continue
			}
			values = append(values, coeffs[y][x])
		}
	}

	median := medianOf(values)
	bits := make([]byte, len(values))
	for i, v := range values {
		if v > median {
			bits[i] = 1
		}
	}

	return packBitsHex(bits), true
}

// grayscaleGrid flattens the (forced, aspect-ignoring) NxN image into
// luminance intensities.
func grayscaleGrid(img image.Image) [][]float64 {
	bounds := img.Bounds()
	grid := make([][]float64, phashGrid)
	for y := 0; y < phashGrid; y++ {
		grid[y] = make([]float64, phashGrid)
		for x := 0; x < phashGrid; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			grid[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return grid
}

// dct2D applies the orthonormal two-dimensional DCT-II to an NxN grid.
func dct2D(grid [][]float64) [][]float64 {
	n := len(grid)
	cosines := make([][]float64, n)
	for k := range cosines {
		cosines[k] = make([]float64, n)
		for i := 0; i < n; i++ {
			cosines[k][i] = math.Cos(float64(2*i+1) * float64(k) * math.Pi / float64(2*n))
		}
	}

	alpha := func(k int) float64 {
		if k == 0 {
			return math.Sqrt(1 / float64(n))
		}
		return math.Sqrt(2 / float64(n))
	}

	out := make([][]float64, n)
	for u := 0; u < n; u++ {
		out[u] = make([]float64, n)
		for v := 0; v < n; v++ {
			var sum float64
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					sum += grid[y][x] * cosines[u][y] * cosines[v][x]
				}
			}
			out[u][v] = alpha(u) * alpha(v) * sum
		}
	}
	return out
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// packBitsHex packs bits into nibbles (final nibble zero-padded) and
// right-pads the hex string to 16 characters.
func packBitsHex(bits []byte) string {
	var b strings.Builder
	for i := 0; i < len(bits); i += 4 {
		var nibble byte
		for j := 0; j < 4; j++ {
			nibble <<= 1
			if i+j < len(bits) {
				nibble |= bits[i+j]
			}
		}
		b.WriteString(strconv.FormatUint(uint64(nibble), 16))
	}
	hash := b.String()
	if len(hash) < 16 {
		hash += strings.Repeat("0", 16-len(hash))
	}
	return hash
}
