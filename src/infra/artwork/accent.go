package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math"
	"os"

	"github.com/nfnt/resize"
	"github.com/zqily/FNote-v2/src/catalog"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Service derives UI accent colors from cover art and normalizes covers for
// embedding.
type Service struct{}

// NewService creates a new artwork service.
func NewService() *Service {
	return &Service{}
}

const (
	hueBins        = 36
	analysisSize   = 64
	minSaturation  = 0.20
	fallbackNeutre = 150
)

// DominantColor derives an accent color from the cover image at path. The
// image is downscaled to 64x64 and binned by hue; pixel weight favors
// saturated midtones. Near-grayscale covers fall back to a neutral gray
// picked against the cover's mean luminance.
func (s *Service) DominantColor(path string) (catalog.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return fallbackColor(), fmt.Errorf("failed to open cover %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fallbackColor(), fmt.Errorf("failed to decode cover %s: %w", path, err)
	}
	return dominantColor(img), nil
}

func dominantColor(img image.Image) catalog.Color {
	small := resize.Resize(analysisSize, analysisSize, img, resize.Lanczos3)
	bounds := small.Bounds()

	var binWeight, binS, binV [hueBins]float64
	var totalWeight, luminanceSum float64
	var pixels float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := small.At(x, y).RGBA()
			r := float64(cr) / 65535.0
			g := float64(cg) / 65535.0
			b := float64(cb) / 65535.0

			luminanceSum += 0.2126*r + 0.7152*g + 0.0722*b
			pixels++

			h, sat, v := rgbToHSV(r, g, b)
			if sat <= minSaturation {
				continue
			}
			weight := sat * math.Max(0, 1-math.Abs(v-0.75)*2)
			if weight == 0 {
				continue
			}
			bin := int(h*hueBins) % hueBins
			binWeight[bin] += weight
			binS[bin] += sat * weight
			binV[bin] += v * weight
			totalWeight += weight
		}
	}

	if totalWeight < 1e-9 {
		c := 80
		if pixels > 0 && luminanceSum/pixels*255 < 100 {
			c = 200
		}
		return catalog.Color{R: c, G: c, B: c}
	}

	dominant := 0
	for i := 1; i < hueBins; i++ {
		if binWeight[i] > binWeight[dominant] {
			dominant = i
		}
	}
	avgS := binS[dominant] / binWeight[dominant]
	avgV := binV[dominant] / binWeight[dominant]
	finalS := math.Min(1.0, avgS*1.2)
	finalV := math.Min(1.0, math.Max(0.6, avgV))
	hue := float64(dominant) / hueBins

	r, g, b := hsvToRGB(hue, finalS, finalV)
	return catalog.Color{R: int(r * 255), G: int(g * 255), B: int(b * 255)}
}

func fallbackColor() catalog.Color {
	return catalog.Color{R: fallbackNeutre, G: fallbackNeutre, B: fallbackNeutre}
}

// NormalizeCover re-encodes cover bytes as JPEG, downscaling to maxSize when
// larger. Used before embedding covers into audio files.
func (s *Service) NormalizeCover(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}
	if maxSize > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
			img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode cover: %w", err)
	}
	slog.Debug("Cover normalized", "bytes", buf.Len())
	return buf.Bytes(), nil
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
