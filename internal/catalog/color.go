package catalog

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackwell-systems/rewind/internal/timeline"
)

const defaultColorCacheSize = 256

// alphaThreshold skips mostly transparent pixels (16-bit alpha scale).
const alphaThreshold = 0x8000

type colorKey struct {
	path    string
	modTime time.Time
	size    int64
}

// ColorExtractor derives an app's background color from its icon.
// Results are cached by icon path and modification time.
type ColorExtractor struct {
	cache *lru.Cache[colorKey, string]
}

// NewColorExtractor returns an extractor holding up to size cached colors.
func NewColorExtractor(size int) (*ColorExtractor, error) {
	if size <= 0 {
		size = defaultColorCacheSize
	}
	cache, err := lru.New[colorKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create color cache: %w", err)
	}
	return &ColorExtractor{cache: cache}, nil
}

// Color returns the dominant color of the icon at path as "#rrggbb", or
// timeline.DefaultColor if the icon is missing, unreadable, or fully
// transparent.
func (c *ColorExtractor) Color(path string) string {
	if path == "" {
		return timeline.DefaultColor
	}
	info, err := os.Stat(path)
	if err != nil {
		return timeline.DefaultColor
	}

	key := colorKey{path: path, modTime: info.ModTime(), size: info.Size()}
	if color, ok := c.cache.Get(key); ok {
		return color
	}

	color := timeline.DefaultColor
	if img, err := decodeImage(path); err == nil {
		if dominant, ok := DominantColor(img); ok {
			color = dominant
		}
	}
	c.cache.Add(key, color)
	return color
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

type bucket struct {
	r, g, b uint64
	n       uint64
}

// DominantColor quantizes opaque pixels to 4 bits per channel and returns
// the average color of the most populated bucket. Ties go to the bucket
// seen first in scan order. ok is false when no pixel is opaque enough.
func DominantColor(img image.Image) (string, bool) {
	buckets := make(map[uint16]*bucket)
	var order []uint16

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a < alphaThreshold {
				continue
			}
			// Un-premultiply, then reduce to 8 bits.
			r8 := uint64(r * 0xffff / a >> 8)
			g8 := uint64(g * 0xffff / a >> 8)
			b8 := uint64(b * 0xffff / a >> 8)

			key := uint16(r8>>4)<<8 | uint16(g8>>4)<<4 | uint16(b8>>4)
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{}
				buckets[key] = bk
				order = append(order, key)
			}
			bk.r += r8
			bk.g += g8
			bk.b += b8
			bk.n++
		}
	}

	var best *bucket
	for _, key := range order {
		if bk := buckets[key]; best == nil || bk.n > best.n {
			best = bk
		}
	}
	if best == nil {
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", best.r/best.n, best.g/best.n, best.b/best.n), true
}
