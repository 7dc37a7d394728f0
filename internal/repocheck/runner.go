package repocheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/frontcheck/repo-audit-tool/internal/model"
	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
)

// Viewport sweep bounds for the horizontal-overflow check.
const (
	sweepMinWidth = 320
	sweepMaxWidth = 1920
	sweepStep     = 10
	sweepHeight   = 1080
)

// genericAltTerms flag alt text that names the medium instead of describing
// the content. Deliberately a plain substring match, no word boundaries.
var genericAltTerms = []string{"image", "picture"}

// contentFetcher retrieves a file's raw bytes from its content URL.
type contentFetcher interface {
	FetchContent(ctx context.Context, contentURL string) (string, error)
}

// BrowserChecks holds the outcomes of the three DOM-level structural checks.
type BrowserChecks struct {
	SingleH1            model.CheckResult
	ImageAlts           model.CheckResult
	HorizontalScrollbar model.CheckResult
}

// CheckRunner renders one file at a time in an isolated page and executes
// the structural checks against its live DOM.
type CheckRunner struct {
	pages   pageFactory
	fetcher contentFetcher
}

// NewCheckRunner returns a runner that borrows pages from the given factory
// and fetches file content through the given fetcher.
func NewCheckRunner(pages pageFactory, fetcher contentFetcher) *CheckRunner {
	return &CheckRunner{pages: pages, fetcher: fetcher}
}

// Run fetches the file's raw content, renders the entity-decoded markup in a
// fresh page, and executes the three checks in order. The page is released
// on every exit path. It returns the raw (non-decoded) content so the caller
// can submit it for standards validation without a second fetch.
//
// An error during a single check while the engine is healthy is absorbed
// into a failed CheckResult for that check. Any error raised while the
// engine is unusable escalates as a fatal BrowserError.
func (r *CheckRunner) Run(ctx context.Context, file model.RepoFile) (BrowserChecks, string, error) {
	raw, err := r.fetcher.FetchContent(ctx, file.URL)
	if err != nil {
		return BrowserChecks{}, "", fmt.Errorf("%s: %w", file.Path, err)
	}

	pg, release, err := r.pages.NewPage(ctx)
	if err != nil {
		return BrowserChecks{}, "", err
	}
	defer release()

	if err := pg.SetContent(DecodeEntities(raw)); err != nil {
		if fatal := r.fatal(err); fatal != nil {
			return BrowserChecks{}, "", fatal
		}
		return BrowserChecks{}, "", fmt.Errorf("%s: render content: %w", file.Path, err)
	}

	var checks BrowserChecks

	if count, err := pg.HeadingCount(); err != nil {
		if fatal := r.fatal(err); fatal != nil {
			return BrowserChecks{}, "", fatal
		}
		checks.SingleH1 = failCheck(err.Error())
	} else {
		checks.SingleH1 = headingResult(count)
	}

	if images, err := pg.Images(); err != nil {
		if fatal := r.fatal(err); fatal != nil {
			return BrowserChecks{}, "", fatal
		}
		checks.ImageAlts = failCheck(err.Error())
	} else {
		checks.ImageAlts = imageAltResult(images)
	}

	overflow, err := r.sweepViewports(pg)
	if err != nil {
		if fatal := r.fatal(err); fatal != nil {
			return BrowserChecks{}, "", fatal
		}
		checks.HorizontalScrollbar = failCheck(err.Error())
	} else {
		checks.HorizontalScrollbar = overflow
	}

	return checks, raw, nil
}

// fatal reclassifies err as a BrowserError when the engine has become
// unusable, and returns nil when the failure is local to this check.
func (r *CheckRunner) fatal(err error) error {
	if r.pages.Healthy() {
		return nil
	}
	return &errs.AppError{
		Kind:    errs.BrowserError,
		Code:    "browser_unusable",
		Message: "the rendering engine became unusable during checks",
		Cause:   err,
	}
}

func headingResult(count int) model.CheckResult {
	switch {
	case count == 1:
		return model.CheckResult{Status: model.StatusPass, Message: "Exactly one h1 found"}
	case count == 0:
		return failCheck("No h1 found")
	default:
		return failCheck(fmt.Sprintf("More than one h1 found (%d)", count))
	}
}

func imageAltResult(images []imageInfo) model.CheckResult {
	var details []string
	for i, img := range images {
		if reason := altIssue(img); reason != "" {
			details = append(details, fmt.Sprintf("Image %d: %s", i+1, reason))
		}
	}

	if len(details) > 0 {
		return model.CheckResult{
			Status:  model.StatusFail,
			Message: fmt.Sprintf("%d of %d images have missing or unsuitable alt text", len(details), len(images)),
			Details: details,
		}
	}
	return model.CheckResult{
		Status:  model.StatusPass,
		Message: fmt.Sprintf("All %d images have suitable alt text", len(images)),
	}
}

func altIssue(img imageInfo) string {
	if !img.HasAlt {
		return "missing alt attribute"
	}
	if strings.TrimSpace(img.Alt) == "" {
		return "empty alt attribute"
	}
	lowered := strings.ToLower(img.Alt)
	for _, term := range genericAltTerms {
		if strings.Contains(lowered, term) {
			return fmt.Sprintf("alt text containing %q", term)
		}
	}
	return ""
}

// sweepViewports resizes the page from sweepMinWidth to sweepMaxWidth and
// fails at the first width where the document scrolls horizontally.
func (r *CheckRunner) sweepViewports(pg browserPage) (model.CheckResult, error) {
	for width := sweepMinWidth; width <= sweepMaxWidth; width += sweepStep {
		overflow, err := pg.OverflowAt(width, sweepHeight)
		if err != nil {
			return model.CheckResult{}, err
		}
		if overflow {
			return failCheck(fmt.Sprintf("Horizontal scrollbar appears at viewport width %dpx", width)), nil
		}
	}
	return model.CheckResult{
		Status:  model.StatusPass,
		Message: fmt.Sprintf("No horizontal overflow between %dpx and %dpx", sweepMinWidth, sweepMaxWidth),
	}, nil
}

func failCheck(message string) model.CheckResult {
	return model.CheckResult{Status: model.StatusFail, Message: message}
}
