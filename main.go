package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZacxDev/tweet-reel/internal/presenter"
	"github.com/ZacxDev/tweet-reel/pkg/logger"
	"github.com/ZacxDev/tweet-reel/pkg/reel"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tweet-reel",
		Short: "Convert Twitter/X posts into vertical reel videos",
		Long: `tweet-reel screenshots a Twitter/X post, downloads its video, and
composes both onto a 1080x1920 canvas suitable for Reels/Shorts/TikTok.

Examples:
  # Auto-download the post's video and build a reel
  tweet-reel create "https://x.com/NASA/status/123" -o nasa_reel.mp4

  # Use an explicit video file, dark theme, bottom placement
  tweet-reel create "https://x.com/user/status/123" video.mp4 --theme dark --position bottom

  # Just download media from a post or timeline
  tweet-reel download "https://x.com/NASA" --videos-only --limit 10

  # Just screenshot a post
  tweet-reel screenshot "https://x.com/user/status/123" -o tweet.png`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				return logger.SetLogLevel("debug")
			}
			return nil
		},
	}

	createCmd = &cobra.Command{
		Use:   "create URL [VIDEO]",
		Short: "Build a reel from a post, auto-downloading its video if needed",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &reel.CreateOptions{URL: args[0]}
			if len(args) == 2 {
				opts.VideoPath = args[1]
			}

			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.Theme, _ = cmd.Flags().GetString("theme")
			opts.Position, _ = cmd.Flags().GetString("position")
			opts.Padding, _ = cmd.Flags().GetInt("padding")
			opts.MaxDuration, _ = cmd.Flags().GetFloat64("duration")
			opts.ScreenshotWidth, _ = cmd.Flags().GetInt("screenshot-width")
			opts.CookiesPath, _ = cmd.Flags().GetString("cookies")
			opts.Browser, _ = cmd.Flags().GetString("browser")
			opts.NoCleanup, _ = cmd.Flags().GetBool("no-cleanup")
			opts.NoAutoDownload, _ = cmd.Flags().GetBool("no-auto-download")

			output, err := reel.Create(cmd.Context(), opts)
			if err != nil {
				return err
			}
			presenter.Success("Reel created: %s", output)
			return nil
		},
	}

	downloadCmd = &cobra.Command{
		Use:   "download URL",
		Short: "Download images and videos from a post, timeline, likes, bookmarks, or list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &reel.DownloadOptions{URL: args[0]}

			opts.OutputDir, _ = cmd.Flags().GetString("output")
			opts.CookiesPath, _ = cmd.Flags().GetString("cookies")
			opts.Browser, _ = cmd.Flags().GetString("browser")
			opts.VideosOnly, _ = cmd.Flags().GetBool("videos-only")
			opts.ImagesOnly, _ = cmd.Flags().GetBool("images-only")
			opts.Limit, _ = cmd.Flags().GetInt("limit")
			opts.Retweets, _ = cmd.Flags().GetBool("retweets")
			opts.Replies, _ = cmd.Flags().GetBool("replies")
			opts.RateLimit, _ = cmd.Flags().GetString("rate-limit")
			opts.Sleep, _ = cmd.Flags().GetFloat64("sleep")
			jsonMode, _ := cmd.Flags().GetBool("json")

			if opts.VideosOnly && opts.ImagesOnly {
				return fmt.Errorf("--videos-only and --images-only are mutually exclusive")
			}

			result, err := reel.Download(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if jsonMode {
				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(encoded))
			} else {
				for _, f := range result.Files {
					presenter.Info("%s", f)
				}
			}

			if !result.Success {
				detail := "unknown error"
				if result.Error != nil {
					detail = *result.Error
				}
				return fmt.Errorf("download failed: %s", detail)
			}
			if !jsonMode {
				presenter.Success("Downloaded %d file(s) to %s", len(result.Files), result.OutputDir)
			}
			return nil
		},
	}

	screenshotCmd = &cobra.Command{
		Use:   "screenshot URL",
		Short: "Capture a cropped screenshot of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &reel.CaptureOptions{URL: args[0]}

			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.Theme, _ = cmd.Flags().GetString("theme")
			opts.Width, _ = cmd.Flags().GetInt("width")
			opts.FullPage, _ = cmd.Flags().GetBool("full")
			opts.CookiesPath, _ = cmd.Flags().GetString("cookies")
			opts.TimeoutMS, _ = cmd.Flags().GetInt("timeout")
			jsonMode, _ := cmd.Flags().GetBool("json")

			result, err := reel.Screenshot(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if jsonMode {
				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(encoded))
				return nil
			}

			presenter.Info("Theme detected: %s", result.Theme)
			presenter.Info("Dimensions: %dx%d", result.Width, result.Height)
			presenter.Success("Screenshot saved: %s", result.Path)
			return nil
		},
	}

	composeCmd = &cobra.Command{
		Use:   "compose SCREENSHOT VIDEO",
		Short: "Compose a reel from an existing screenshot and video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &reel.ComposeOptions{
				ScreenshotPath: args[0],
				VideoPath:      args[1],
			}

			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.Theme, _ = cmd.Flags().GetString("theme")
			opts.Position, _ = cmd.Flags().GetString("position")
			opts.Padding, _ = cmd.Flags().GetInt("padding")
			opts.MaxDuration, _ = cmd.Flags().GetFloat64("duration")

			output, err := reel.Compose(cmd.Context(), opts)
			if err != nil {
				return err
			}
			presenter.Success("Reel created: %s", output)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose debug logging")

	createCmd.Flags().StringP("output", "o", "reel_output.mp4", "Output file path")
	createCmd.Flags().String("theme", "auto", "Background theme (light, dark, auto)")
	createCmd.Flags().String("position", "top", "Post position on canvas (top, center, bottom)")
	createCmd.Flags().Int("padding", 40, "Padding around elements in pixels")
	createCmd.Flags().Float64("duration", 0, "Maximum output duration in seconds")
	createCmd.Flags().Int("screenshot-width", 550, "Post screenshot width")
	createCmd.Flags().String("cookies", "", "Path to cookies.txt file for protected posts")
	createCmd.Flags().String("browser", "", "Browser to extract cookies from")
	createCmd.Flags().Bool("no-cleanup", false, "Keep intermediate files")
	createCmd.Flags().Bool("no-auto-download", false, "Disable automatic video download")

	downloadCmd.Flags().StringP("output", "o", "./downloads", "Output directory")
	downloadCmd.Flags().String("cookies", "", "Path to cookies.txt file for authentication")
	downloadCmd.Flags().String("browser", "", "Browser to extract cookies from")
	downloadCmd.Flags().Bool("videos-only", false, "Download only videos")
	downloadCmd.Flags().Bool("images-only", false, "Download only images")
	downloadCmd.Flags().Int("limit", 0, "Limit number of items to download")
	downloadCmd.Flags().Bool("retweets", false, "Include retweets from user timelines")
	downloadCmd.Flags().Bool("replies", false, "Include replies from user timelines")
	downloadCmd.Flags().String("rate-limit", "", "Maximum download rate, e.g. 1M")
	downloadCmd.Flags().Float64("sleep", 0, "Seconds to sleep between downloads and requests")
	downloadCmd.Flags().Bool("json", false, "Emit a structured JSON result on stdout")

	screenshotCmd.Flags().StringP("output", "o", "tweet_screenshot.png", "Output file path")
	screenshotCmd.Flags().String("theme", "", "Force light or dark theme")
	screenshotCmd.Flags().Int("width", 550, "Browser viewport width")
	screenshotCmd.Flags().Bool("full", false, "Capture the full page instead of the post only")
	screenshotCmd.Flags().String("cookies", "", "Path to cookies.txt file for protected posts")
	screenshotCmd.Flags().Int("timeout", 30000, "Render timeout in milliseconds")
	screenshotCmd.Flags().Bool("json", false, "Emit capture metadata as JSON")

	composeCmd.Flags().StringP("output", "o", "reel_output.mp4", "Output file path")
	composeCmd.Flags().String("theme", "auto", "Background theme (light, dark, auto)")
	composeCmd.Flags().String("position", "top", "Post position on canvas (top, center, bottom)")
	composeCmd.Flags().Int("padding", 40, "Padding around elements in pixels")
	composeCmd.Flags().Float64("duration", 0, "Maximum output duration in seconds")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(screenshotCmd)
	rootCmd.AddCommand(composeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err)
		os.Exit(1)
	}
}
