package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"tdfeed/internal/logger"
)

// Browser drives a headless Chrome session. The redeem CSV endpoint
// only responds to a warmed-up browser session (cookies from the
// product page), so a plain GET is not enough there.
type Browser struct {
	timeout time.Duration
}

// NewBrowser builds a session wrapper with a per-operation deadline.
func NewBrowser(timeout time.Duration) *Browser {
	return &Browser{timeout: timeout}
}

// DownloadCSV opens pageURL to establish the session, then navigates to
// fileURL and captures the resulting attachment. The whole operation
// runs inside one browser context so cookies carry over.
func (b *Browser) DownloadCSV(ctx context.Context, pageURL, fileURL string) ([]byte, error) {
	taskCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	dir, err := os.MkdirTemp("", "tdfeed-download-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	done := make(chan string, 1)
	chromedp.ListenTarget(taskCtx, func(ev any) {
		if p, ok := ev.(*browser.EventDownloadProgress); ok && p.State == browser.DownloadProgressStateCompleted {
			select {
			case done <- p.GUID:
			default:
			}
		}
	})

	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
	); err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrUnavailable, pageURL, err)
	}

	// Navigating to an attachment aborts the navigation once the
	// download starts; that abort is expected.
	if err := chromedp.Run(taskCtx, chromedp.Navigate(fileURL)); err != nil &&
		!strings.Contains(err.Error(), "net::ERR_ABORTED") {
		return nil, fmt.Errorf("%w: downloading %s: %v", ErrUnavailable, fileURL, err)
	}

	select {
	case guid := <-done:
		raw, err := os.ReadFile(filepath.Join(dir, guid))
		if err != nil {
			return nil, fmt.Errorf("%w: reading download: %v", ErrUnavailable, err)
		}
		return raw, nil
	case <-taskCtx.Done():
		return nil, fmt.Errorf("%w: download timed out for %s", ErrUnavailable, fileURL)
	}
}

// PageVar opens pageURL and reads a page-global string variable.
// Failures are reported, not fatal: the caller treats an empty string
// as "not available this run".
func (b *Browser) PageVar(ctx context.Context, pageURL, name string) (string, error) {
	taskCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	var value string
	expr := fmt.Sprintf("typeof %s === 'string' ? %s : ''", name, name)
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(expr, &value),
	); err != nil {
		logger.Warnf("reading %s from %s failed: %v", name, pageURL, err)
		return "", err
	}
	return strings.TrimSpace(value), nil
}
