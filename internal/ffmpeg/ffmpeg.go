// Package ffmpeg wraps ffprobe metadata extraction and the final reel
// encode on top of ffmpeg-go.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ZacxDev/tweet-reel/internal/canvas"
	"github.com/ZacxDev/tweet-reel/internal/config"
	"github.com/ZacxDev/tweet-reel/pkg/logger"
)

var (
	// ErrUnsupportedVideoFormat is returned when the input cannot be
	// probed or has no video stream.
	ErrUnsupportedVideoFormat = errors.New("unsupported video format")

	// ErrEncodeFailed is returned when the ffmpeg invocation fails.
	ErrEncodeFailed = errors.New("video encoding failed")
)

// VideoMetadata contains probed metadata about a video file
type VideoMetadata struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
	HasAudio bool
}

// GetVideoMetadata probes a video file with ffprobe.
func GetVideoMetadata(inputPath string) (*VideoMetadata, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(canvas.ErrMissingInput, "video not found: %s", inputPath)
	}

	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedVideoFormat, "ffprobe failed: %v", err)
	}
	return parseProbe(probe)
}

func parseProbe(probe string) (*VideoMetadata, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, errors.Wrap(ErrUnsupportedVideoFormat, "no streams found")
	}

	var videoStream map[string]interface{}
	hasAudio := false
	for _, raw := range streams {
		s, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch s["codec_type"] {
		case "video":
			if videoStream == nil {
				videoStream = s
			}
		case "audio":
			hasAudio = true
		}
	}
	if videoStream == nil {
		return nil, errors.Wrap(ErrUnsupportedVideoFormat, "no video stream found")
	}

	duration := streamDuration(videoStream)
	if duration == 0 {
		if format, ok := data["format"].(map[string]interface{}); ok {
			duration = parseFloatField(format, "duration")
		}
	}
	if duration == 0 {
		return nil, errors.Wrap(ErrUnsupportedVideoFormat, "could not determine video duration")
	}

	width, _ := videoStream["width"].(float64)
	height, _ := videoStream["height"].(float64)
	codec, _ := videoStream["codec_name"].(string)

	return &VideoMetadata{
		Duration: duration,
		Width:    int(width),
		Height:   int(height),
		Codec:    codec,
		HasAudio: hasAudio,
	}, nil
}

// Compose overlays the source video onto the rendered canvas inside the
// plan's media region and muxes the source audio, producing the final
// 1080x1920 H.264/AAC reel.
func Compose(ctx context.Context, canvasPath, videoPath, outputPath string, plan *canvas.Plan, maxDuration float64) error {
	if _, err := os.Stat(canvasPath); os.IsNotExist(err) {
		return errors.Wrapf(canvas.ErrMissingInput, "canvas not found: %s", canvasPath)
	}

	metadata, err := GetVideoMetadata(videoPath)
	if err != nil {
		return err
	}

	duration := metadata.Duration
	if maxDuration > 0 && maxDuration < duration {
		duration = maxDuration
	}

	area := plan.VideoArea
	// Even dimensions are required by libx264
	areaW := area.Dx() - area.Dx()%2
	areaH := area.Dy() - area.Dy()%2
	if areaW < 2 || areaH < 2 {
		return errors.Errorf("media region %dx%d is too small to encode", area.Dx(), area.Dy())
	}

	log := logger.G(ctx)
	log.WithFields(map[string]interface{}{
		"video":    videoPath,
		"area":     fmt.Sprintf("%dx%d+%d+%d", areaW, areaH, area.Min.X, area.Min.Y),
		"duration": duration,
	}).Debug("composing reel")

	bgHex := fmt.Sprintf("0x%02x%02x%02x", plan.Background.R, plan.Background.G, plan.Background.B)

	canvasIn := ffmpeg.Input(canvasPath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": config.OutputFPS,
	})
	videoIn := ffmpeg.Input(videoPath)

	// Letterbox the video into the media region: scale down preserving
	// aspect ratio, then pad with the background color.
	fitted := videoIn.Video().
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", areaW, areaH)},
			ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
		Filter("pad", ffmpeg.Args{
			fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s", areaW, areaH, bgHex),
		})

	composed := ffmpeg.Filter([]*ffmpeg.Stream{canvasIn, fitted}, "overlay", ffmpeg.Args{
		fmt.Sprintf("x=%d", area.Min.X),
		fmt.Sprintf("y=%d", area.Min.Y),
	})

	outputKwargs := ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"pix_fmt":  "yuv420p",
		"crf":      config.OutputCRF,
		"preset":   "medium",
		"r":        config.OutputFPS,
		"t":        duration,
		"movflags": "+faststart",
		"threads":  optimalThreadCount(),
	}

	var out *ffmpeg.Stream
	if metadata.HasAudio {
		outputKwargs["c:a"] = config.AudioCodec
		outputKwargs["b:a"] = config.AudioBitrate
		out = ffmpeg.Output([]*ffmpeg.Stream{composed, videoIn.Audio()}, outputPath, outputKwargs)
	} else {
		out = composed.Output(outputPath, outputKwargs)
	}

	err = out.OverWriteOutput().ErrorToStdOut().Run()
	if err != nil {
		return errors.Wrapf(ErrEncodeFailed, "%v", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return errors.Wrap(ErrEncodeFailed, "output file was not written")
	}
	if info.Size() == 0 {
		return errors.Wrapf(ErrEncodeFailed, "output file is empty: %s", outputPath)
	}

	log.WithField("size_mb", float64(info.Size())/1024/1024).Debug("encode complete")
	return nil
}

func optimalThreadCount() int {
	return int(math.Max(1, float64(runtime.NumCPU())*0.75))
}

func streamDuration(stream map[string]interface{}) float64 {
	return parseFloatField(stream, "duration")
}

func parseFloatField(m map[string]interface{}, key string) float64 {
	s, ok := m[key].(string)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
