// Package capture renders a Twitter/X post in headless Chrome and produces
// a cropped screenshot of the post content plus its detected color theme.
package capture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/ZacxDev/tweet-reel/internal/config"
	"github.com/ZacxDev/tweet-reel/internal/tweet"
	"github.com/ZacxDev/tweet-reel/pkg/logger"
)

var (
	// ErrRenderTimeout is returned when the post does not render within
	// the capture timeout.
	ErrRenderTimeout = errors.New("timed out rendering post")

	// ErrAuthRequired is returned when the post is behind a login wall
	// and no usable credentials were provided.
	ErrAuthRequired = errors.New("authentication required for protected post")
)

// tweetSelector matches the main post article on x.com
const tweetSelector = `article[data-testid="tweet"]`

// cleanupJS hides page chrome so the clip contains only post content.
const cleanupJS = `(() => {
	const hide = [
		'[data-testid="sidebarColumn"]',
		'[aria-label="Timeline: Conversation"]',
		'nav',
		'[data-testid="BottomBar"]',
		'[role="group"]',
	];
	hide.forEach(sel => document.querySelectorAll(sel).forEach(el => { el.style.display = 'none'; }));
	document.querySelectorAll('[style*="position: fixed"], [style*="position: sticky"]').forEach(el => {
		el.style.display = 'none';
	});
	const tweet = document.querySelector('article[data-testid="tweet"]');
	if (tweet) {
		tweet.style.borderRadius = '0';
		tweet.style.border = 'none';
	}
})()`

// Result describes a completed capture
type Result struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Theme  string `json:"theme"`
	PostID string `json:"post_id"`
}

type boundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Capture screenshots the post referenced by opts.URL. The browser context
// is torn down on every exit path.
func Capture(ctx context.Context, opts *config.CaptureOptions) (*Result, error) {
	ref, err := tweet.Parse(opts.URL)
	if err != nil {
		return nil, err
	}
	if !ref.IsPost() {
		return nil, errors.Wrapf(tweet.ErrUnsupportedReference,
			"capture requires a single post URL, got %s reference", ref.Kind)
	}

	width := opts.Width
	if width <= 0 {
		width = config.DefaultScreenshotWidth
	}
	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = config.DefaultCaptureTimeoutMS * time.Millisecond
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create screenshot directory")
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.WindowSize(width, 1200),
	)
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), 1200),
	}

	// Forcing the color scheme only makes sense with an explicit theme;
	// auto detection samples whatever the page rendered.
	if opts.Theme == "light" || opts.Theme == "dark" {
		tasks = append(tasks, emulation.SetEmulatedMedia().WithFeatures([]*emulation.MediaFeature{
			{Name: "prefers-color-scheme", Value: opts.Theme},
		}))
	}

	if opts.CookiesPath != "" {
		cookieTask, err := loadCookiesTask(opts.CookiesPath)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, cookieTask)
	}

	var location string
	var buf []byte
	var box boundingBox

	tasks = append(tasks,
		chromedp.Navigate(ref.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if isLoginWall(location) {
				return ErrAuthRequired
			}
			return nil
		}),
		chromedp.WaitVisible(tweetSelector, chromedp.ByQuery),
		// Give media placeholders time to settle
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(cleanupJS, nil),
	)

	if opts.FullPage {
		tasks = append(tasks, chromedp.FullScreenshot(&buf, 100))
	} else {
		tasks = append(tasks,
			chromedp.Evaluate(boundingBoxJS(tweetSelector), &box),
			chromedp.ActionFunc(func(ctx context.Context) error {
				clip := clipFor(box)
				shot, err := page.CaptureScreenshot().
					WithFormat(page.CaptureScreenshotFormatPng).
					WithClip(&clip).
					Do(ctx)
				if err != nil {
					return err
				}
				buf = shot
				return nil
			}),
		)
	}

	logger.G(ctx).WithField("url", ref.URL).Debug("capturing post screenshot")

	if err := chromedp.Run(runCtx, tasks); err != nil {
		if errors.Is(err, ErrAuthRequired) {
			return nil, ErrAuthRequired
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(ErrRenderTimeout, "the post may be protected or deleted")
		}
		return nil, errors.Wrap(err, "failed to capture post")
	}

	if err := os.WriteFile(opts.OutputPath, buf, 0644); err != nil {
		return nil, errors.Wrap(err, "failed to write screenshot")
	}

	theme, err := ResolveTheme(opts.Theme, opts.OutputPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Path:   opts.OutputPath,
		Theme:  theme,
		PostID: ref.PostID,
	}
	if opts.FullPage {
		result.Width = width
		result.Height = 1200
	} else {
		clip := clipFor(box)
		result.Width = int(clip.Width)
		result.Height = int(clip.Height)
	}
	return result, nil
}

// boundingBoxJS returns an expression yielding the element's viewport rect
func boundingBoxJS(selector string) string {
	return `(() => {
		const el = document.querySelector('` + selector + `');
		if (!el) return {x: 0, y: 0, width: 0, height: 0};
		const r = el.getBoundingClientRect();
		return {x: r.x, y: r.y, width: r.width, height: r.height};
	})()`
}

// clipFor pads the post bounding box by a fixed margin, clamped to the page
func clipFor(box boundingBox) page.Viewport {
	const pad = config.ScreenshotClipPadding
	x := box.X - pad
	y := box.Y - pad
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return page.Viewport{
		X:      x,
		Y:      y,
		Width:  box.Width + pad*2,
		Height: box.Height + pad*2,
		Scale:  1,
	}
}

func isLoginWall(location string) bool {
	return strings.Contains(location, "/login") || strings.Contains(location, "/i/flow/login")
}
