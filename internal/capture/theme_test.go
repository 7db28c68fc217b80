package capture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestDetectThemeLight(t *testing.T) {
	path := writeTestImage(t, color.RGBA{255, 255, 255, 255})
	theme, err := DetectTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)
}

func TestDetectThemeDark(t *testing.T) {
	path := writeTestImage(t, color.RGBA{0, 0, 0, 255})
	theme, err := DetectTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}

func TestDetectThemeDarkGray(t *testing.T) {
	// X's "dim" background is a dark blue-gray
	path := writeTestImage(t, color.RGBA{21, 32, 43, 255})
	theme, err := DetectTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}

func TestDetectThemeDeterministic(t *testing.T) {
	path := writeTestImage(t, color.RGBA{240, 240, 240, 255})
	first, err := DetectTheme(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		theme, err := DetectTheme(path)
		require.NoError(t, err)
		assert.Equal(t, first, theme)
	}
}

func TestDetectThemeIgnoresCenterContent(t *testing.T) {
	// White background with a dark block in the middle, like a media
	// placeholder: border sampling must still classify light
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for y := 60; y < 140; y++ {
		for x := 60; x < 140; x++ {
			img.Set(x, y, color.RGBA{10, 10, 10, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "mixed.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	theme, err := DetectTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)
}

func TestDetectThemeMissingFile(t *testing.T) {
	_, err := DetectTheme(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestResolveTheme(t *testing.T) {
	dark := writeTestImage(t, color.RGBA{0, 0, 0, 255})

	theme, err := ResolveTheme("light", dark)
	require.NoError(t, err)
	assert.Equal(t, "light", theme, "explicit override wins over pixels")

	theme, err = ResolveTheme("", dark)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	theme, err = ResolveTheme("auto", dark)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}
