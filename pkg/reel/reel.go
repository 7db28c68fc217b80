// Package reel is the public entry point for converting Twitter/X posts
// into 1080x1920 vertical reels.
package reel

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ZacxDev/tweet-reel/internal/canvas"
	"github.com/ZacxDev/tweet-reel/internal/capture"
	"github.com/ZacxDev/tweet-reel/internal/config"
	"github.com/ZacxDev/tweet-reel/internal/downloader"
	"github.com/ZacxDev/tweet-reel/internal/ffmpeg"
	"github.com/ZacxDev/tweet-reel/internal/pipeline"
)

// CreateOptions configures the full tweet-to-reel pipeline
type CreateOptions = config.ReelOptions

// DownloadOptions configures media acquisition
type DownloadOptions = config.DownloadOptions

// CaptureOptions configures a standalone screenshot
type CaptureOptions = config.CaptureOptions

// DownloadResult is the structured acquisition outcome
type DownloadResult = downloader.Result

// CaptureResult is the structured screenshot outcome
type CaptureResult = capture.Result

// ComposeOptions configures a standalone composition from an existing
// screenshot and video file
type ComposeOptions struct {
	ScreenshotPath string
	VideoPath      string
	OutputPath     string
	Theme          string // "light", "dark", or "auto"
	Position       string
	Padding        int
	MaxDuration    float64
}

// Create runs the full pipeline: acquire (if needed), capture, compose.
func Create(ctx context.Context, opts *CreateOptions) (string, error) {
	return pipeline.Run(ctx, opts)
}

// Download acquires media files from a post reference.
func Download(ctx context.Context, opts *DownloadOptions) (*DownloadResult, error) {
	return downloader.New(opts).Download(ctx)
}

// Screenshot captures a post screenshot without composing a reel.
func Screenshot(ctx context.Context, opts *CaptureOptions) (*CaptureResult, error) {
	return capture.Capture(ctx, opts)
}

// Compose builds a reel from an existing screenshot and video file.
func Compose(ctx context.Context, opts *ComposeOptions) (string, error) {
	theme, err := capture.ResolveTheme(opts.Theme, opts.ScreenshotPath)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return "", errors.Wrapf(canvas.ErrMissingInput, "screenshot not found: %s", opts.ScreenshotPath)
		}
		return "", err
	}

	width, height, err := imageDimensions(opts.ScreenshotPath)
	if err != nil {
		return "", err
	}

	plan, err := canvas.Layout(width, height, theme, opts.Position, opts.Padding)
	if err != nil {
		return "", err
	}

	tempDir, err := os.MkdirTemp("", config.TempDirPrefix)
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	canvasPath := filepath.Join(tempDir, "canvas.png")
	if err := canvas.Render(opts.ScreenshotPath, plan, canvasPath); err != nil {
		return "", err
	}

	if err := ffmpeg.Compose(ctx, canvasPath, opts.VideoPath, opts.OutputPath, plan, opts.MaxDuration); err != nil {
		return "", err
	}
	return opts.OutputPath, nil
}

func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to open screenshot")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to decode screenshot")
	}
	return cfg.Width, cfg.Height, nil
}
