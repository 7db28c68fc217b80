package capture

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"

	"github.com/ZacxDev/tweet-reel/internal/config"
)

// ResolveTheme returns the override when it is explicit, otherwise
// classifies the screenshot background.
func ResolveTheme(override, screenshotPath string) (string, error) {
	if override == "light" || override == "dark" {
		return override, nil
	}
	return DetectTheme(screenshotPath)
}

// DetectTheme classifies a screenshot as "light" or "dark" by sampling
// its border pixels. Classification is deterministic for a fixed image.
func DetectTheme(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open screenshot")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode screenshot")
	}

	if borderLuminance(img) < config.DarkLuminanceThreshold {
		return "dark", nil
	}
	return "light", nil
}

// borderLuminance averages BT.601 luma over sample points along the image
// border, where the background is visible regardless of post content.
func borderLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 255
	}

	// A few pixels in from the edge avoids border antialiasing
	inset := 2
	if w <= inset*2 || h <= inset*2 {
		inset = 0
	}
	left := bounds.Min.X + inset
	right := bounds.Max.X - 1 - inset
	top := bounds.Min.Y + inset
	bottom := bounds.Max.Y - 1 - inset
	midX := bounds.Min.X + w/2
	midY := bounds.Min.Y + h/2

	points := []image.Point{
		{left, top}, {right, top}, {left, bottom}, {right, bottom},
		{midX, top}, {midX, bottom}, {left, midY}, {right, midY},
	}

	var total float64
	for _, p := range points {
		r, g, b, _ := img.At(p.X, p.Y).RGBA()
		total += luma601(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
	return total / float64(len(points))
}

func luma601(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
