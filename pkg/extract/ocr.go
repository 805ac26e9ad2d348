package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// maxOCRDimension bounds the longer image edge before OCR. Larger scans
// are downscaled to keep Tesseract memory use predictable.
const maxOCRDimension = 2048

// OCRBackend extracts text from images via Tesseract.
type OCRBackend struct {
	languages []string
}

// NewOCRBackend creates an OCR backend for the given Tesseract languages.
// With no languages it defaults to Japanese plus English, matching the
// documents this service reviews.
func NewOCRBackend(languages ...string) *OCRBackend {
	if len(languages) == 0 {
		languages = []string{"jpn", "eng"}
	}
	return &OCRBackend{languages: languages}
}

// Extract runs OCR over the image bytes and returns the recognized text.
func (b *OCRBackend) Extract(data []byte, name string) (string, error) {
	prepared, err := prepareImage(data, name)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(b.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// prepareImage decodes the payload, downscales it if needed and
// re-encodes it as PNG for Tesseract.
func prepareImage(data []byte, name string) ([]byte, error) {
	img, err := decodeImage(data, name)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := fitDimensions(width, height, maxOCRDimension)

	if newWidth != width || newHeight != height {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte, name string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".gif":
		return gif.Decode(bytes.NewReader(data))
	case ".webp":
		return webp.Decode(bytes.NewReader(data))
	case ".tiff", ".tif":
		return tiff.Decode(bytes.NewReader(data))
	default:
		// The declared mime may be image/* with an unhelpful filename;
		// fall back to content sniffing.
		img, _, err := image.Decode(bytes.NewReader(data))
		return img, err
	}
}

// fitDimensions scales (width, height) to fit within maxSize while
// preserving aspect ratio.
func fitDimensions(width, height, maxSize int) (int, int) {
	if width <= maxSize && height <= maxSize {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if width > height {
		return maxSize, int(float64(maxSize) / ratio)
	}
	return int(float64(maxSize) * ratio), maxSize
}
