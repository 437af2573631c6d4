package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

const (
	fetchTimeout  = 5 * time.Second
	maxImageBytes = 8 << 20
	sampleSize    = 160
)

// Palette holds the colors the terminal view uses for one song.
type Palette struct {
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Dim       lipgloss.Color
}

func DefaultPalette() Palette {
	return Palette{
		Highlight: lipgloss.Color("#8BA4E8"),
		Text:      lipgloss.Color("#E8E8F0"),
		Accent:    lipgloss.Color("#E8A4C8"),
		Dim:       lipgloss.Color("#6272A4"),
	}
}

// Fetch loads cover art from an http(s) or file:// url.
func Fetch(ctx context.Context, client *http.Client, artworkURL string) (image.Image, error) {
	switch {
	case artworkURL == "":
		return nil, errors.New("empty artwork url")
	case strings.HasPrefix(artworkURL, "file://"):
		return decodeFile(strings.TrimPrefix(artworkURL, "file://"))
	case strings.HasPrefix(artworkURL, "http://"), strings.HasPrefix(artworkURL, "https://"):
	default:
		return nil, fmt.Errorf("unsupported artwork url %q", artworkURL)
	}

	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}
	return img, nil
}

type swatch struct {
	r, g, b    uint32
	saturation float64
	brightness float64
}

func (s swatch) score() float64 {
	return s.saturation * (1.0 - math.Abs(s.brightness-0.6))
}

// ExtractPalette picks readable colors out of the cover. It falls back to
// the default palette when the image has too little color to work with.
func ExtractPalette(img image.Image) Palette {
	if img == nil {
		return DefaultPalette()
	}

	small := resize.Thumbnail(sampleSize, sampleSize, img, resize.Bilinear)
	items, err := prominentcolor.KmeansWithAll(5, small, prominentcolor.ArgumentNoCropping, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) < 3 {
		return DefaultPalette()
	}

	swatches := make([]swatch, 0, len(items))
	for _, item := range items {
		swatches = append(swatches, newSwatch(item.Color.R, item.Color.G, item.Color.B))
	}

	vivid := swatches[:0:0]
	for _, s := range swatches {
		if s.brightness > 0.3 && s.saturation > 0.15 {
			vivid = append(vivid, s)
		}
	}
	if len(vivid) < 2 {
		return DefaultPalette()
	}
	sort.SliceStable(vivid, func(i, j int) bool {
		return vivid[i].score() > vivid[j].score()
	})

	p := DefaultPalette()
	p.Highlight = lipgloss.Color(vivid[0].hex())
	p.Accent = lipgloss.Color(vivid[1].hex())
	return p
}

func newSwatch(r, g, b uint32) swatch {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	hi := math.Max(math.Max(rf, gf), bf)
	lo := math.Min(math.Min(rf, gf), bf)

	s := swatch{r: r, g: g, b: b, brightness: hi}
	if hi > 0 {
		s.saturation = (hi - lo) / hi
	}
	return s
}

// hex renders the swatch, lifting dark colors and muting glaring ones so
// they stay readable on a dark terminal.
func (s swatch) hex() string {
	r, g, b := float64(s.r), float64(s.g), float64(s.b)

	if s.brightness > 0 && s.brightness < 0.4 {
		factor := math.Min(0.4/s.brightness, 2.5)
		r, g, b = math.Min(255, r*factor), math.Min(255, g*factor), math.Min(255, b*factor)
	}
	if s.brightness > 0.85 {
		avg := (r + g + b) / 3
		r, g, b = avg+(r-avg)*0.7, avg+(g-avg)*0.7, avg+(b-avg)*0.7
	}

	return fmt.Sprintf("#%02X%02X%02X", uint8(r), uint8(g), uint8(b))
}

// HalfBlocks draws the image with "▀" cells, two pixels per cell.
func HalfBlocks(img image.Image, width, height int) []string {
	if img == nil || width < 4 || height < 2 {
		return nil
	}

	scaled := resize.Resize(uint(width), uint(height*2), img, resize.Lanczos3)
	bounds := scaled.Bounds()
	rows := make([]string, height)

	for y := 0; y < height; y++ {
		var row strings.Builder
		for x := 0; x < bounds.Dx(); x++ {
			top := pixelHex(scaled, bounds.Min.X+x, bounds.Min.Y+2*y)
			bottom := top
			if 2*y+1 < bounds.Dy() {
				bottom = pixelHex(scaled, bounds.Min.X+x, bounds.Min.Y+2*y+1)
			}
			row.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		rows[y] = row.String()
	}
	return rows
}

func pixelHex(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
