package ffmpeg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZacxDev/tweet-reel/internal/canvas"
)

const probeWithAudio = `{
	"streams": [
		{
			"codec_type": "video",
			"codec_name": "h264",
			"width": 1280,
			"height": 720,
			"duration": "14.500000"
		},
		{
			"codec_type": "audio",
			"codec_name": "aac"
		}
	],
	"format": {
		"duration": "14.523000"
	}
}`

const probeNoAudio = `{
	"streams": [
		{
			"codec_type": "video",
			"codec_name": "vp9",
			"width": 640,
			"height": 360
		}
	],
	"format": {
		"duration": "7.250000"
	}
}`

const probeAudioOnly = `{
	"streams": [
		{
			"codec_type": "audio",
			"codec_name": "mp3"
		}
	],
	"format": {
		"duration": "30.0"
	}
}`

func TestParseProbe(t *testing.T) {
	meta, err := parseProbe(probeWithAudio)
	require.NoError(t, err)

	assert.Equal(t, 14.5, meta.Duration)
	assert.Equal(t, 1280, meta.Width)
	assert.Equal(t, 720, meta.Height)
	assert.Equal(t, "h264", meta.Codec)
	assert.True(t, meta.HasAudio)
}

func TestParseProbeFormatDurationFallback(t *testing.T) {
	// webm streams often omit per-stream duration
	meta, err := parseProbe(probeNoAudio)
	require.NoError(t, err)

	assert.Equal(t, 7.25, meta.Duration)
	assert.Equal(t, "vp9", meta.Codec)
	assert.False(t, meta.HasAudio)
}

func TestParseProbeNoVideoStream(t *testing.T) {
	_, err := parseProbe(probeAudioOnly)
	assert.ErrorIs(t, err, ErrUnsupportedVideoFormat)
}

func TestParseProbeNoStreams(t *testing.T) {
	_, err := parseProbe(`{"streams": [], "format": {}}`)
	assert.ErrorIs(t, err, ErrUnsupportedVideoFormat)
}

func TestParseProbeNoDuration(t *testing.T) {
	_, err := parseProbe(`{"streams": [{"codec_type": "video", "codec_name": "h264", "width": 100, "height": 100}], "format": {}}`)
	assert.ErrorIs(t, err, ErrUnsupportedVideoFormat)
}

func TestParseProbeInvalidJSON(t *testing.T) {
	_, err := parseProbe("not json")
	assert.Error(t, err)
}

func TestGetVideoMetadataMissingFile(t *testing.T) {
	_, err := GetVideoMetadata(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(t, err, canvas.ErrMissingInput)
}

func TestParseFloatField(t *testing.T) {
	m := map[string]interface{}{
		"duration": "12.5",
		"empty":    "",
		"garbage":  "N/A",
		"number":   3.0,
	}
	assert.Equal(t, 12.5, parseFloatField(m, "duration"))
	assert.Equal(t, 0.0, parseFloatField(m, "empty"))
	assert.Equal(t, 0.0, parseFloatField(m, "garbage"))
	assert.Equal(t, 0.0, parseFloatField(m, "number"))
	assert.Equal(t, 0.0, parseFloatField(m, "absent"))
}

func TestOptimalThreadCount(t *testing.T) {
	assert.GreaterOrEqual(t, optimalThreadCount(), 1)
}
