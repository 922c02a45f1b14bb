package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultTimeoutSec bounds a single page render.
const DefaultTimeoutSec = 30

// Browser renders pages in headless Chromium via chromedp. It is used for
// schedule pages whose markup is assembled by scripts after load.
type Browser struct {
	// ReadySelector is waited on before the DOM is read. If empty, "body"
	// is used.
	ReadySelector string

	// Timeout bounds the entire render. If zero, DefaultTimeoutSec is used.
	Timeout time.Duration
}

// Render navigates to url, waits for ReadySelector to be ready and returns
// the serialized document element.
func (b *Browser) Render(parentCtx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("capture: URL is required")
	}
	selector := b.ReadySelector
	if selector == "" {
		selector = "body"
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var markup string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	return []byte(markup), nil
}
