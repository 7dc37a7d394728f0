package repocheck

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
)

// imageInfo is the alt-attribute state of one image element, in document order.
type imageInfo struct {
	HasAlt bool   `json:"hasAlt"`
	Alt    string `json:"alt"`
}

const imagesExpr = `Array.from(document.querySelectorAll("img")).map(img => ({
	hasAlt: img.hasAttribute("alt"),
	alt: img.getAttribute("alt") || ""
}))`

// browserPage is one isolated rendering context, bound to its own deadline.
type browserPage interface {
	SetContent(markup string) error
	HeadingCount() (int, error)
	Images() ([]imageInfo, error)
	OverflowAt(width, height int) (bool, error)
}

// pageFactory hands out rendering contexts and reports engine health.
type pageFactory interface {
	NewPage(ctx context.Context) (browserPage, func(), error)
	Healthy() bool
}

// Engine owns the single headless browser process shared by all runs. It is
// started once at service startup and closed once at shutdown; individual
// runs only borrow pages from it.
type Engine struct {
	browser       context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	pageTimeout   time.Duration
}

// StartEngine launches the headless browser and waits until it is usable.
func StartEngine(ctx context.Context, pageTimeout time.Duration) (*Engine, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Running an empty task forces the browser process to start now rather
	// than on the first check run.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &errs.AppError{
			Kind:    errs.BrowserError,
			Code:    "browser_launch_failed",
			Message: "the rendering engine could not be started",
			Cause:   err,
		}
	}

	return &Engine{
		browser:       browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		pageTimeout:   pageTimeout,
	}, nil
}

// Healthy reports whether the browser process is still usable.
func (e *Engine) Healthy() bool {
	return e.browser.Err() == nil
}

// NewPage opens an isolated page in the shared browser. The returned release
// function closes the page and must be called on every exit path.
func (e *Engine) NewPage(ctx context.Context) (browserPage, func(), error) {
	if !e.Healthy() {
		return nil, nil, &errs.AppError{
			Kind:    errs.BrowserError,
			Code:    "browser_closed",
			Message: "the rendering engine is no longer running",
			Cause:   e.browser.Err(),
		}
	}

	pageCtx, cancelPage := chromedp.NewContext(e.browser)
	pageCtx, cancelTimeout := context.WithTimeout(pageCtx, e.pageTimeout)

	release := func() {
		cancelTimeout()
		cancelPage()
	}

	// Propagate caller cancellation into the page context.
	stop := context.AfterFunc(ctx, release)

	return &chromedpPage{ctx: pageCtx}, func() {
		stop()
		release()
	}, nil
}

// Close shuts the browser process down. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.browserCancel()
	e.allocCancel()
}

// chromedpPage implements browserPage on a chromedp tab context.
type chromedpPage struct {
	ctx context.Context
}

func (p *chromedpPage) SetContent(markup string) error {
	return chromedp.Run(p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
	}))
}

func (p *chromedpPage) HeadingCount() (int, error) {
	var count int
	err := chromedp.Run(p.ctx, chromedp.Evaluate(`document.querySelectorAll("h1").length`, &count))
	return count, err
}

func (p *chromedpPage) Images() ([]imageInfo, error) {
	var images []imageInfo
	err := chromedp.Run(p.ctx, chromedp.Evaluate(imagesExpr, &images))
	return images, err
}

func (p *chromedpPage) OverflowAt(width, height int) (bool, error) {
	var overflow bool
	err := chromedp.Run(p.ctx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Evaluate(`document.documentElement.scrollWidth > document.documentElement.clientWidth`, &overflow),
	)
	return overflow, err
}
