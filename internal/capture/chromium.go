// Package capture renders a schedule page to a PNG poster with headless
// Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"udhayam/internal/timeline"
)

// Default capture parameters. Width matches render.DefaultOptions.
const (
	DefaultWidth      = 1200
	DefaultHeight     = 800
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/schedule.svg?category=sports&day=1".
	URL string

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. The screenshot
	// covers the full page, so Height is only the initial viewport.
	Width  int
	Height int

	// Timeout bounds the entire capture operation.
	Timeout time.Duration
}

// ScheduleURL builds the SVG poster URL for a selection on a running server.
func ScheduleURL(base string, sel timeline.Selection) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("capture: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("capture: base url needs scheme and host")
	}
	u.Path = "/schedule.svg"
	q := url.Values{}
	q.Set("category", string(sel.Category))
	if sel.Department != "" {
		q.Set("dept", sel.Department)
	}
	q.Set("day", strconv.Itoa(sel.Day))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (o *Options) withDefaults() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// SchedulePNG navigates headless Chromium to opts.URL, waits for the root
// element to carry data-ready="true" and writes a full-page PNG screenshot.
func SchedulePNG(parentCtx context.Context, opts Options) error {
	if err := opts.withDefaults(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
