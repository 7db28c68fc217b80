// Package pipeline sequences media acquisition, capture, and composition
// into the full tweet-to-reel run.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/ZacxDev/tweet-reel/internal/canvas"
	"github.com/ZacxDev/tweet-reel/internal/capture"
	"github.com/ZacxDev/tweet-reel/internal/config"
	"github.com/ZacxDev/tweet-reel/internal/downloader"
	"github.com/ZacxDev/tweet-reel/internal/ffmpeg"
	"github.com/ZacxDev/tweet-reel/internal/presenter"
	"github.com/ZacxDev/tweet-reel/internal/tweet"
	"github.com/ZacxDev/tweet-reel/pkg/logger"
)

// ErrConfiguration is returned for option combinations that can never
// succeed. It is raised before any network or browser work starts.
var ErrConfiguration = errors.New("invalid configuration")

// VideoSource identifies how the pipeline obtains its video input
type VideoSource int

const (
	// SourceAutoDownload acquires the video from the post itself
	SourceAutoDownload VideoSource = iota
	// SourceExplicit uses a caller-supplied video path or glob
	SourceExplicit
)

// ResolveVideoSource decides the video input strategy once, up front.
func ResolveVideoSource(opts *config.ReelOptions) (VideoSource, error) {
	if opts.VideoPath != "" {
		return SourceExplicit, nil
	}
	if opts.NoAutoDownload {
		return 0, errors.Wrap(ErrConfiguration, "auto-download is disabled and no video path was supplied")
	}

	ref, err := tweet.Parse(opts.URL)
	if err != nil {
		return 0, err
	}
	if !ref.IsPost() {
		return 0, errors.Wrapf(ErrConfiguration,
			"auto-download requires a single post URL, got a %s reference; supply an explicit video path", ref.Kind)
	}
	return SourceAutoDownload, nil
}

// stages groups the pipeline's external collaborators. Injectable for
// tests, like downloader.CommandRunner.
type stages struct {
	capture  func(context.Context, *config.CaptureOptions) (*capture.Result, error)
	compose  func(ctx context.Context, canvasPath, videoPath, outputPath string, plan *canvas.Plan, maxDuration float64) error
	download func(context.Context, *config.DownloadOptions) (*downloader.Result, error)
}

func defaultStages() stages {
	return stages{
		capture: capture.Capture,
		compose: ffmpeg.Compose,
		download: func(ctx context.Context, opts *config.DownloadOptions) (*downloader.Result, error) {
			return downloader.New(opts).Download(ctx)
		},
	}
}

// Run executes the full pipeline and returns the output video path.
// Intermediate files are removed on every exit path unless NoCleanup is set.
func Run(ctx context.Context, opts *config.ReelOptions) (string, error) {
	return run(ctx, opts, defaultStages())
}

func run(ctx context.Context, opts *config.ReelOptions, st stages) (string, error) {
	if err := validate(opts); err != nil {
		return "", err
	}

	source, err := ResolveVideoSource(opts)
	if err != nil {
		return "", err
	}

	ref, err := tweet.Parse(opts.URL)
	if err != nil {
		return "", err
	}

	log := logger.G(ctx)

	tempDir, err := os.MkdirTemp("", config.TempDirPrefix)
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}
	defer func() {
		if opts.NoCleanup {
			log.WithField("dir", tempDir).Debug("keeping intermediate files")
			return
		}
		os.RemoveAll(tempDir)
	}()

	// Stage: acquire
	var videoFile string
	switch source {
	case SourceExplicit:
		videoFile, err = FindVideoFile(opts.VideoPath)
		if err != nil {
			return "", err
		}
		presenter.Info("Using video: %s", videoFile)
	case SourceAutoDownload:
		presenter.Step(0, 3, "Downloading video from post...")
		videoFile, err = downloadVideo(ctx, st, opts, ref, filepath.Join(tempDir, "download"))
		if err != nil {
			return "", err
		}
		presenter.Info("      Downloaded: %s", videoFile)
	}

	// Stage: capture
	presenter.Step(1, 3, "Capturing post screenshot...")
	captureTheme := opts.Theme
	if captureTheme == "auto" {
		captureTheme = ""
	}
	shot, err := st.capture(ctx, &config.CaptureOptions{
		URL:         ref.URL,
		OutputPath:  filepath.Join(tempDir, "tweet_"+ref.PostID+".png"),
		Theme:       captureTheme,
		Width:       opts.ScreenshotWidth,
		CookiesPath: opts.CookiesPath,
	})
	if err != nil {
		return "", err
	}
	log.WithFields(map[string]interface{}{
		"size":  shot.Width,
		"theme": shot.Theme,
	}).Debug("screenshot captured")
	presenter.Info("      Theme detected: %s", shot.Theme)

	// Stage: compose
	presenter.Step(2, 3, "Creating 1080x1920 canvas...")
	plan, err := canvas.Layout(shot.Width, shot.Height, shot.Theme, opts.Position, opts.Padding)
	if err != nil {
		return "", err
	}
	canvasPath := filepath.Join(tempDir, "canvas.png")
	if err := canvas.Render(shot.Path, plan, canvasPath); err != nil {
		return "", err
	}

	presenter.Step(3, 3, "Composing final video...")
	if err := st.compose(ctx, canvasPath, videoFile, opts.OutputPath, plan, opts.MaxDuration); err != nil {
		return "", err
	}

	return opts.OutputPath, nil
}

// downloadVideo acquires the post's video into dir and returns the first
// video file found. A post without video is a configuration problem for
// this pipeline, not a download failure.
func downloadVideo(ctx context.Context, st stages, opts *config.ReelOptions, ref tweet.Reference, dir string) (string, error) {
	result, err := st.download(ctx, &config.DownloadOptions{
		URL:         ref.URL,
		OutputDir:   dir,
		CookiesPath: opts.CookiesPath,
		Browser:     opts.Browser,
		VideosOnly:  true,
	})
	if err != nil {
		return "", err
	}
	if !result.Success {
		detail := "unknown error"
		if result.Error != nil {
			detail = *result.Error
		}
		return "", errors.Errorf("video download failed: %s", detail)
	}
	if len(result.Files) == 0 {
		return "", errors.Wrap(ErrConfiguration,
			"no video found in post; it may contain only images. Supply an explicit video path")
	}
	return result.Files[0], nil
}

// FindVideoFile resolves a direct path or glob pattern to a single video
// file. The lexicographically first match wins.
func FindVideoFile(pattern string) (string, error) {
	if info, err := os.Stat(pattern); err == nil && !info.IsDir() {
		return pattern, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", errors.Wrapf(ErrConfiguration, "invalid video pattern %q", pattern)
	}

	videos := downloader.FilterByType(matches, true, false)
	if len(videos) == 0 {
		return "", errors.Wrapf(canvas.ErrMissingInput, "no video files found matching %q", pattern)
	}
	sort.Strings(videos)
	if len(videos) > 1 {
		presenter.Info("Multiple videos found, using first: %s", videos[0])
	}
	return videos[0], nil
}

func validate(opts *config.ReelOptions) error {
	switch opts.Theme {
	case "light", "dark", "auto":
	default:
		return errors.Wrapf(ErrConfiguration, "unsupported theme %q", opts.Theme)
	}
	switch opts.Position {
	case "top", "center", "bottom":
	default:
		return errors.Wrapf(ErrConfiguration, "unsupported position %q", opts.Position)
	}
	if opts.Padding < 0 {
		return errors.Wrapf(ErrConfiguration, "padding must be >= 0, got %d", opts.Padding)
	}
	if opts.OutputPath == "" {
		return errors.Wrap(ErrConfiguration, "output path is required")
	}
	return nil
}
