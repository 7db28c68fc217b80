// Package canvas computes the 1080x1920 reel layout and renders the static
// background frame: a solid theme-colored canvas with the post screenshot
// placed on it. The video is overlaid into the remaining media region by
// the ffmpeg package.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	"github.com/ZacxDev/tweet-reel/internal/config"
)

// ErrMissingInput is returned when a required input file does not exist.
var ErrMissingInput = errors.New("missing input file")

// Plan is the computed placement of the screenshot and the media region
// on the fixed canvas.
type Plan struct {
	Theme      string
	Background config.ThemeColor
	Screenshot image.Rectangle
	VideoArea  image.Rectangle
}

// Layout places a screenshot of the given dimensions on the canvas.
// Theme must already be resolved to "light" or "dark".
func Layout(shotWidth, shotHeight int, theme, position string, padding int) (*Plan, error) {
	if shotWidth <= 0 || shotHeight <= 0 {
		return nil, fmt.Errorf("invalid screenshot dimensions %dx%d", shotWidth, shotHeight)
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must be >= 0, got %d", padding)
	}
	if theme != "light" && theme != "dark" {
		return nil, fmt.Errorf("theme must be resolved to light or dark, got %q", theme)
	}
	switch position {
	case "top", "center", "bottom":
	default:
		return nil, fmt.Errorf("unsupported position %q (supported: top, center, bottom)", position)
	}

	maxShotWidth := config.ReelWidth - 2*padding
	if maxShotWidth < 2 {
		return nil, fmt.Errorf("padding %d leaves no horizontal room on a %d wide canvas",
			padding, config.ReelWidth)
	}

	w, h := shotWidth, shotHeight

	// Scale down to fit the horizontal band between the side paddings
	if w > maxShotWidth {
		h = h * maxShotWidth / w
		w = maxShotWidth
	}

	// Leave vertical room for the media region. A centered screenshot
	// splits the free space across both sides, so it must reserve the
	// region height on each.
	maxShotHeight := config.ReelHeight - 2*padding - config.ScreenshotVideoGap - config.MinVideoAreaHeight
	if position == "center" {
		maxShotHeight = config.ReelHeight - 2*(padding+config.ScreenshotVideoGap+config.MinVideoAreaHeight)
	}
	if maxShotHeight > 0 && h > maxShotHeight {
		w = w * maxShotHeight / h
		h = maxShotHeight
	}
	if h < 1 {
		h = 1
	}
	if w < 1 {
		w = 1
	}

	x := (config.ReelWidth - w) / 2
	var y int
	switch position {
	case "top":
		y = padding
	case "bottom":
		y = config.ReelHeight - h - padding
	case "center":
		y = (config.ReelHeight - h) / 2
	}

	shot := image.Rect(x, y, x+w, y+h)

	return &Plan{
		Theme:      theme,
		Background: config.BackgroundFor(theme),
		Screenshot: shot,
		VideoArea:  videoArea(shot, padding),
	}, nil
}

// videoArea picks the larger free vertical band adjacent to the screenshot.
// The region sits below the screenshot whenever it fits there; a bottom
// anchored screenshot pushes it above instead.
func videoArea(shot image.Rectangle, padding int) image.Rectangle {
	gap := config.ScreenshotVideoGap

	belowTop := shot.Max.Y + gap
	belowHeight := config.ReelHeight - belowTop - padding

	aboveTop := padding
	aboveHeight := shot.Min.Y - gap - padding

	x0 := padding
	x1 := config.ReelWidth - padding

	if belowHeight >= aboveHeight {
		return image.Rect(x0, belowTop, x1, belowTop+max(belowHeight, 0))
	}
	return image.Rect(x0, aboveTop, x1, aboveTop+max(aboveHeight, 0))
}

// Render draws the solid background and the scaled screenshot, writing the
// canvas as a PNG.
func Render(screenshotPath string, plan *Plan, outputPath string) error {
	f, err := os.Open(screenshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrMissingInput, "screenshot not found: %s", screenshotPath)
		}
		return errors.Wrap(err, "failed to open screenshot")
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return errors.Wrap(err, "failed to decode screenshot")
	}

	dst := image.NewRGBA(image.Rect(0, 0, config.ReelWidth, config.ReelHeight))
	bg := image.NewUniform(color.RGBA{plan.Background.R, plan.Background.G, plan.Background.B, 255})
	draw.Draw(dst, dst.Bounds(), bg, image.Point{}, draw.Src)

	xdraw.CatmullRom.Scale(dst, plan.Screenshot, src, src.Bounds(), xdraw.Over, nil)

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "failed to create canvas output directory")
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "failed to create canvas file")
	}
	defer out.Close()

	if err := png.Encode(out, dst); err != nil {
		return errors.Wrap(err, "failed to encode canvas")
	}
	return nil
}
