// Package downloader acquires media files from Twitter/X posts by driving
// the external gallery-dl tool.
package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ZacxDev/tweet-reel/internal/config"
	"github.com/ZacxDev/tweet-reel/internal/tweet"
	"github.com/ZacxDev/tweet-reel/pkg/logger"
)

// VideoExtensions lists file extensions treated as video media.
var VideoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true, ".m4v": true, ".avi": true, ".mkv": true,
}

// ImageExtensions lists file extensions treated as image media.
var ImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Result is the outcome of a download run. It is emitted verbatim in
// --json mode.
type Result struct {
	Files     []string `json:"files"`
	PostID    string   `json:"post_id"`
	OutputDir string   `json:"output_dir"`
	Reference string   `json:"reference"`
	Success   bool     `json:"success"`
	Error     *string  `json:"error"`
}

// CommandRunner executes an external command and returns stdout and stderr.
// Injectable for tests.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Downloader wraps gallery-dl invocations for a single set of options
type Downloader struct {
	opts *config.DownloadOptions
	run  CommandRunner
}

// New creates a Downloader that shells out to gallery-dl.
func New(opts *config.DownloadOptions) *Downloader {
	return &Downloader{opts: opts, run: execRunner}
}

// NewWithRunner creates a Downloader with a custom command runner.
func NewWithRunner(opts *config.DownloadOptions, run CommandRunner) *Downloader {
	return &Downloader{opts: opts, run: run}
}

// Download resolves the reference, runs gallery-dl, and scans the output
// directory for the files it produced. Tool and network failures are
// reported through Result, not the error return; only an unsupported
// reference is an error.
func (d *Downloader) Download(ctx context.Context) (*Result, error) {
	ref, err := tweet.Parse(d.opts.URL)
	if err != nil {
		return nil, err
	}

	outputDir, err := filepath.Abs(d.opts.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve output directory")
	}

	result := &Result{
		Files:     []string{},
		PostID:    ref.PostID,
		OutputDir: outputDir,
		Reference: ref.URL,
	}

	if _, _, err := d.run(ctx, "gallery-dl", "--version"); err != nil {
		return fail(result, "gallery-dl is not installed"), nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fail(result, fmt.Sprintf("failed to create output directory: %v", err)), nil
	}

	configPath, cleanup, err := d.writeConfigFile()
	if err != nil {
		return fail(result, fmt.Sprintf("failed to write gallery-dl config: %v", err)), nil
	}
	defer cleanup()

	args := d.buildArgs(ref, outputDir, configPath)
	logger.G(ctx).WithField("args", strings.Join(args, " ")).Debug("invoking gallery-dl")

	_, stderr, runErr := d.run(ctx, "gallery-dl", args...)

	// The tool may have written files even on failure; scan regardless.
	files, scanErr := ScanMediaDir(outputDir, d.opts.VideosOnly, d.opts.ImagesOnly)
	if scanErr != nil {
		logger.G(ctx).WithError(scanErr).Debug("output directory scan failed")
	}
	result.Files = files

	if runErr != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = runErr.Error()
		}
		return fail(result, detail), nil
	}

	result.Success = true
	return result, nil
}

// buildArgs assembles the gallery-dl command line
func (d *Downloader) buildArgs(ref tweet.Reference, outputDir, configPath string) []string {
	args := []string{"-d", outputDir}

	if configPath != "" {
		args = append(args, "-c", configPath)
	}

	if d.opts.CookiesPath != "" {
		args = append(args, "--cookies", d.opts.CookiesPath)
	} else if d.opts.Browser != "" {
		args = append(args, "--cookies-from-browser", d.opts.Browser)
	}

	if d.opts.Limit > 0 {
		args = append(args, "--range", fmt.Sprintf("1-%d", d.opts.Limit))
	}

	args = append(args, "-f", tweet.MediaFilenameTemplate)

	args = append(args, ref.URL)
	return args
}

// writeConfigFile emits a temporary gallery-dl JSON config carrying the
// extractor options that have no command-line equivalent.
func (d *Downloader) writeConfigFile() (string, func(), error) {
	extractor := map[string]interface{}{
		"twitter": map[string]interface{}{
			"retweets":    d.opts.Retweets,
			"replies":     d.opts.Replies,
			"text-tweets": false,
			"quoted":      true,
			"videos":      !d.opts.ImagesOnly,
			"cards":       true,
		},
	}
	if d.opts.Sleep > 0 {
		extractor["sleep"] = d.opts.Sleep
		extractor["sleep-request"] = d.opts.Sleep
	}

	cfg := map[string]interface{}{
		"extractor": extractor,
	}
	if d.opts.RateLimit != "" {
		cfg["downloader"] = map[string]interface{}{
			"rate": d.opts.RateLimit,
		}
	}

	f, err := os.CreateTemp("", "gallery_dl_*.json")
	if err != nil {
		return "", func() {}, errors.WithStack(err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	enc := json.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, errors.WithStack(err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, errors.WithStack(err)
	}
	return f.Name(), cleanup, nil
}

// ScanMediaDir walks a directory and returns media files matching the
// type filter, sorted by path so sequence numbering is preserved.
func ScanMediaDir(dir string, videosOnly, imagesOnly bool) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if matchesFilter(path, videosOnly, imagesOnly) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "failed to scan output directory")
	}
	sort.Strings(files)
	return files, nil
}

// FilterByType narrows a file list to videos or images.
func FilterByType(files []string, videosOnly, imagesOnly bool) []string {
	if !videosOnly && !imagesOnly {
		return files
	}
	filtered := []string{}
	for _, f := range files {
		if matchesFilter(f, videosOnly, imagesOnly) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// IsVideoFile reports whether a path has a video extension.
func IsVideoFile(path string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(path))]
}

func matchesFilter(path string, videosOnly, imagesOnly bool) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videosOnly:
		return VideoExtensions[ext]
	case imagesOnly:
		return ImageExtensions[ext]
	default:
		return VideoExtensions[ext] || ImageExtensions[ext]
	}
}

func fail(r *Result, detail string) *Result {
	r.Success = false
	r.Error = &detail
	return r
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
