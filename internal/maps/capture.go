package maps

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "gunstats/internal/errors"
)

// CaptureOptions controls the headless browser used for screenshots
type CaptureOptions struct {
	Headless   bool
	Width      int
	Height     int
	RenderWait time.Duration
}

// Capture opens htmlPath in Chrome and saves a full-page PNG to pngPath
func Capture(ctx context.Context, htmlPath, pngPath string, opts CaptureOptions) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return apperrors.NewRenderError("failed to resolve map path", err).WithContext("path", htmlPath)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.Width, opts.Height),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitVisible(`#map`, chromedp.ByQuery),
		chromedp.Sleep(opts.RenderWait),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return apperrors.NewRenderError("failed to capture map", err).WithContext("path", htmlPath)
	}

	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return apperrors.NewRenderError("failed to write screenshot", err).WithContext("path", pngPath)
	}

	slog.InfoContext(ctx, "Map captured",
		slog.String("png", pngPath),
		slog.Int("bytes", len(buf)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
