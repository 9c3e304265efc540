// Package chromesurface exposes a live web page as a recordable surface
// using chromedp.
package chromesurface

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/viewcast/pkg/ports"
)

// Options configures the Chrome instance backing the surface.
type Options struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	Width             int // Window width in pixels
	Height            int // Window height in pixels
	IgnoreHTTPSErrors bool
	ProxyServer       string
}

// Surface implements ports.Surface by screenshotting a Chrome page.
type Surface struct {
	logger ports.Logger

	width  int
	height int

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates an unopened Surface.
func New(logger ports.Logger) *Surface {
	return &Surface{logger: logger.WithComponent("chrome")}
}

// Open launches Chrome and navigates to url. The surface is capturable once
// Open returns.
func (s *Surface) Open(ctx context.Context, url string, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	s.width = opts.Width
	s.height = opts.Height

	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(opts.Width, opts.Height),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", opts.Width, opts.Height)),
	}

	if opts.Headless {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}
	if opts.UserAgent != "" {
		chromedpOpts = append(chromedpOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.IgnoreHTTPSErrors {
		chromedpOpts = append(chromedpOpts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if opts.ProxyServer != "" {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("proxy-server", opts.ProxyServer))
	}

	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return fmt.Errorf("chrome not found: install Chrome/Chromium, set CHROME_PATH, or pass an explicit path")
	}
	chromedpOpts = append(chromedpOpts, chromedp.ExecPath(chromePath))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Launching Chrome at %s", chromePath)
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(ctx, chromedpOpts...)
	s.ctx, s.cancel = chromedp.NewContext(s.allocCtx)

	s.logger.Debug("Navigating to %s", url)
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		s.closeLocked()
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// Bounds returns the window dimensions configured at Open.
func (s *Surface) Bounds() (int, int) {
	return s.width, s.height
}

// Rasterize captures the page into a bitmap snapshot.
func (s *Surface) Rasterize(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	pageCtx := s.ctx
	s.mu.Unlock()
	if pageCtx == nil {
		return nil, fmt.Errorf("surface not open")
	}

	captureCtx, cancel := mergeCancel(pageCtx, ctx)
	defer cancel()

	var data []byte
	err := chromedp.Run(captureCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		data, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// Attached reports whether the page is still capturable.
func (s *Surface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx != nil && s.ctx.Err() == nil
}

// Close shuts down the browser. Idempotent.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Surface) closeLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.ctx = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
		s.allocCtx = nil
		s.logger.Debug("Chrome closed")
	}
}

// mergeCancel derives a context from parent that is also cancelled when
// other is cancelled.
func mergeCancel(parent, other context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(other, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Ensure Surface implements ports.Surface
var _ ports.Surface = (*Surface)(nil)
