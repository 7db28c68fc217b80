package config

// ReelOptions defines options for the full tweet-to-reel pipeline
type ReelOptions struct {
	URL             string
	VideoPath       string // empty means auto-download
	OutputPath      string
	Theme           string // "light", "dark", or "auto"
	Position        string // "top", "center", or "bottom"
	Padding         int
	MaxDuration     float64 // seconds; 0 means full source duration
	ScreenshotWidth int
	CookiesPath     string
	Browser         string
	NoCleanup       bool
	NoAutoDownload  bool
}

// DownloadOptions defines options for acquiring media from a post
type DownloadOptions struct {
	URL         string
	OutputDir   string
	CookiesPath string
	Browser     string
	VideosOnly  bool
	ImagesOnly  bool
	Limit       int
	Retweets    bool
	Replies     bool
	RateLimit   string  // bytes per second, e.g. "1M"; empty means unthrottled
	Sleep       float64 // seconds between downloads and requests; 0 means none
}

// CaptureOptions defines options for screenshotting a post
type CaptureOptions struct {
	URL         string
	OutputPath  string
	Theme       string // "light", "dark", or "" for page default
	Width       int
	FullPage    bool
	CookiesPath string
	TimeoutMS   int
}

const (
	// Output canvas (9:16 reel)
	ReelWidth  = 1080
	ReelHeight = 1920

	// Layout defaults
	DefaultPadding         = 40
	DefaultScreenshotWidth = 550
	MinVideoAreaHeight     = 400

	// Gap between the placed screenshot and the media region
	ScreenshotVideoGap = 20

	// Theme detection: border-pixel luminance below this is classified dark.
	// BT.601 luma on 0-255 scale.
	DarkLuminanceThreshold = 128

	// Capture defaults
	DefaultCaptureTimeoutMS = 30000
	ScreenshotClipPadding   = 20

	// Encoder settings for the final reel
	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "128k"
	OutputCRF    = 23
	OutputFPS    = 30

	// Temporary directory prefix for intermediate files
	TempDirPrefix = "tweet_reel_"
)

// ThemeColor holds the RGB background for a resolved theme
type ThemeColor struct {
	R, G, B uint8
}

var (
	LightBackground = ThemeColor{255, 255, 255}
	DarkBackground  = ThemeColor{0, 0, 0}
)

// BackgroundFor returns the canvas background for a resolved theme.
// Theme must already be "light" or "dark".
func BackgroundFor(theme string) ThemeColor {
	if theme == "dark" {
		return DarkBackground
	}
	return LightBackground
}
