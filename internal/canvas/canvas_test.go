package canvas

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZacxDev/tweet-reel/internal/config"
)

func TestLayoutPositions(t *testing.T) {
	const padding = 40

	tests := []struct {
		position string
		wantY    int
	}{
		{"top", padding},
		{"bottom", config.ReelHeight - 400 - padding},
		{"center", (config.ReelHeight - 400) / 2},
	}
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			plan, err := Layout(550, 400, "light", tt.position, padding)
			require.NoError(t, err)

			assert.Equal(t, tt.wantY, plan.Screenshot.Min.Y)
			assert.Equal(t, 550, plan.Screenshot.Dx())
			assert.Equal(t, 400, plan.Screenshot.Dy())
			// Horizontally centered
			assert.Equal(t, (config.ReelWidth-550)/2, plan.Screenshot.Min.X)
		})
	}
}

func TestLayoutScalesWideScreenshot(t *testing.T) {
	const padding = 40
	plan, err := Layout(2000, 1000, "light", "top", padding)
	require.NoError(t, err)

	maxWidth := config.ReelWidth - 2*padding
	assert.Equal(t, maxWidth, plan.Screenshot.Dx())
	// Aspect ratio preserved: 1000 * 1000/2000 = 500
	assert.Equal(t, 500, plan.Screenshot.Dy())
}

func TestLayoutCapsTallScreenshot(t *testing.T) {
	const padding = 40
	plan, err := Layout(550, 5000, "dark", "top", padding)
	require.NoError(t, err)

	maxHeight := config.ReelHeight - 2*padding - config.ScreenshotVideoGap - config.MinVideoAreaHeight
	assert.Equal(t, maxHeight, plan.Screenshot.Dy())
	assert.LessOrEqual(t, plan.Screenshot.Dx(), config.ReelWidth-2*padding)
	assert.GreaterOrEqual(t, plan.VideoArea.Dy(), config.MinVideoAreaHeight)
}

func TestLayoutReservesVideoAreaAtEveryPosition(t *testing.T) {
	// A tall screenshot must never squeeze the media region below its
	// minimum height, including when centered, where the free space is
	// split across both sides of the screenshot.
	for _, position := range []string{"top", "center", "bottom"} {
		for _, padding := range []int{0, 40, 100} {
			plan, err := Layout(550, 5000, "light", position, padding)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, plan.VideoArea.Dy(), config.MinVideoAreaHeight,
				"media region too small at position=%s padding=%d", position, padding)
		}
	}
}

func TestLayoutVideoArea(t *testing.T) {
	const padding = 40

	// Top-anchored screenshot leaves the region below it
	plan, err := Layout(550, 400, "light", "top", padding)
	require.NoError(t, err)

	area := plan.VideoArea
	assert.Equal(t, config.ReelWidth-2*padding, area.Dx())
	assert.Equal(t, plan.Screenshot.Max.Y+config.ScreenshotVideoGap, area.Min.Y)
	assert.Equal(t, config.ReelHeight-padding, area.Max.Y)

	// Bottom-anchored screenshot pushes the region above it
	plan, err = Layout(550, 400, "light", "bottom", padding)
	require.NoError(t, err)

	area = plan.VideoArea
	assert.Equal(t, padding, area.Min.Y)
	assert.Equal(t, plan.Screenshot.Min.Y-config.ScreenshotVideoGap, area.Max.Y)
}

func TestLayoutAreaWithinCanvas(t *testing.T) {
	canvasBounds := image.Rect(0, 0, config.ReelWidth, config.ReelHeight)
	for _, position := range []string{"top", "center", "bottom"} {
		for _, padding := range []int{0, 20, 40, 100} {
			plan, err := Layout(550, 800, "light", position, padding)
			require.NoError(t, err)

			assert.True(t, plan.Screenshot.In(canvasBounds),
				"screenshot %v escapes canvas at position=%s padding=%d", plan.Screenshot, position, padding)
			assert.True(t, plan.VideoArea.In(canvasBounds),
				"media region %v escapes canvas at position=%s padding=%d", plan.VideoArea, position, padding)
			assert.False(t, plan.Screenshot.Overlaps(plan.VideoArea),
				"screenshot and media region overlap at position=%s padding=%d", position, padding)
		}
	}
}

func TestLayoutTheme(t *testing.T) {
	plan, err := Layout(550, 400, "light", "top", 40)
	require.NoError(t, err)
	assert.Equal(t, config.LightBackground, plan.Background)

	plan, err = Layout(550, 400, "dark", "top", 40)
	require.NoError(t, err)
	assert.Equal(t, config.DarkBackground, plan.Background)
}

func TestLayoutInvalidInput(t *testing.T) {
	_, err := Layout(0, 400, "light", "top", 40)
	assert.Error(t, err)

	_, err = Layout(550, 400, "auto", "top", 40)
	assert.Error(t, err, "theme must be resolved before layout")

	_, err = Layout(550, 400, "light", "left", 40)
	assert.Error(t, err)

	_, err = Layout(550, 400, "light", "top", -1)
	assert.Error(t, err)

	_, err = Layout(550, 400, "light", "top", config.ReelWidth/2)
	assert.Error(t, err)
}

func writeScreenshot(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestRender(t *testing.T) {
	shot := writeScreenshot(t, 550, 400, color.RGBA{200, 30, 30, 255})
	plan, err := Layout(550, 400, "dark", "top", 40)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "canvas.png")
	require.NoError(t, Render(shot, plan, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, config.ReelWidth, img.Bounds().Dx())
	assert.Equal(t, config.ReelHeight, img.Bounds().Dy())

	// Corner is background, screenshot center carries the source color
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0), b>>8)

	center := plan.Screenshot.Min.Add(image.Pt(plan.Screenshot.Dx()/2, plan.Screenshot.Dy()/2))
	r, _, _, _ = img.At(center.X, center.Y).RGBA()
	assert.Greater(t, r>>8, uint32(150), "screenshot pixels drawn onto canvas")
}

func TestRenderMissingScreenshot(t *testing.T) {
	plan, err := Layout(550, 400, "light", "top", 40)
	require.NoError(t, err)

	err = Render(filepath.Join(t.TempDir(), "nope.png"), plan, filepath.Join(t.TempDir(), "out.png"))
	assert.ErrorIs(t, err, ErrMissingInput)
}
