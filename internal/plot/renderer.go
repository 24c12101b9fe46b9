// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plot builds the fixed per-format chart sets and rasterizes them
// to in-memory PNG images through a headless browser.
package plot

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer turns a rendered chart page into PNG bytes. The report builder
// depends on this interface so tests can substitute a fake that does not
// need a browser.
type Renderer interface {
	RenderPNG(ctx context.Context, html []byte, width, height int) ([]byte, error)
}

// ChromeRenderer screenshots chart pages with headless Chrome.
type ChromeRenderer struct {
	// Timeout bounds one screenshot (default 20s).
	Timeout time.Duration
}

// NewChromeRenderer probes for a usable headless browser and returns a
// renderer bound to it.
func NewChromeRenderer(ctx context.Context, timeout time.Duration) (*ChromeRenderer, error) {
	if err := ensureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChromeRenderer{Timeout: timeout}, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

func ensureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		parent, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// RenderPNG loads the HTML page in a fresh tab sized to width x height and
// returns a full-page screenshot.
func (r *ChromeRenderer) RenderPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, r.Timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(800 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
