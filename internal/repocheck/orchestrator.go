package repocheck

import (
	"context"
	"log/slog"

	"github.com/frontcheck/repo-audit-tool/internal/model"
	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
)

// Summary labels for the four check categories.
const (
	labelH1        = "Single H1"
	labelImageAlts = "Image alt attributes"
	labelW3C       = "W3C validation"
	labelScrollbar = "Horizontal scrollbar"
)

// TreeFetcher lists a repository's candidate source files.
type TreeFetcher interface {
	ListFiles(ctx context.Context, owner, repo string) ([]model.RepoFile, error)
}

// checkRunner executes the DOM-level checks for one file.
type checkRunner interface {
	Run(ctx context.Context, file model.RepoFile) (BrowserChecks, string, error)
}

// markupValidator reduces external standards validation to one CheckResult.
type markupValidator interface {
	Validate(ctx context.Context, markup string) model.CheckResult
}

// Orchestrator drives the per-file pipeline and aggregates results. Files
// are processed strictly sequentially so at most one rendering context is
// open at a time.
type Orchestrator struct {
	fetcher   TreeFetcher
	runner    checkRunner
	validator markupValidator
	logger    *slog.Logger
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(fetcher TreeFetcher, runner checkRunner, validator markupValidator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		runner:    runner,
		validator: validator,
		logger:    logger,
	}
}

// CheckRepository audits every markup file of the repository in traversal
// order. A fetch failure, a BrowserError, or an expired run context aborts
// the run with no partial summary; any other per-file failure is absorbed
// into a record with all four checks failed, so every category still sums
// to the file total.
func (o *Orchestrator) CheckRepository(ctx context.Context, owner, repo string) (*model.RepoCheckResult, error) {
	files, err := o.fetcher.ListFiles(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	details := make([]model.FileCheckResult, 0, len(files))
	for _, file := range files {
		if file.Type != model.FileTypeHTML {
			continue
		}

		record, err := o.checkFile(ctx, file)
		if err != nil {
			if errs.KindOf(err) == errs.BrowserError {
				return nil, err
			}
			// A dead run context would fail every remaining file the same
			// way; that is an aborted run, not a set of soft failures.
			if ctx.Err() != nil {
				return nil, err
			}
			o.logger.Warn("file check failed", "path", file.Path, "error", err)
			record = failedFileRecord(file, err)
		}
		details = append(details, record)
	}

	return &model.RepoCheckResult{
		Summary: summarize(details),
		Details: details,
	}, nil
}

func (o *Orchestrator) checkFile(ctx context.Context, file model.RepoFile) (model.FileCheckResult, error) {
	browser, raw, err := o.runner.Run(ctx, file)
	if err != nil {
		return model.FileCheckResult{}, err
	}

	checks := model.FileChecks{
		SingleH1:            browser.SingleH1,
		ImageAlts:           browser.ImageAlts,
		W3CValidation:       o.validator.Validate(ctx, raw),
		HorizontalScrollbar: browser.HorizontalScrollbar,
	}

	profile := ProfileMarkup(raw)

	return model.FileCheckResult{
		FileName:    file.Name,
		Path:        file.Path,
		HTMLVersion: profile.HTMLVersion,
		Title:       profile.Title,
		Passed: checks.SingleH1.Passed() && checks.ImageAlts.Passed() &&
			checks.W3CValidation.Passed() && checks.HorizontalScrollbar.Passed(),
		Checks: checks,
	}, nil
}

// failedFileRecord marks all four categories failed with the same message so
// aggregate counts stay consistent with the file total.
func failedFileRecord(file model.RepoFile, err error) model.FileCheckResult {
	failed := failCheck(err.Error())
	return model.FileCheckResult{
		FileName: file.Name,
		Path:     file.Path,
		Passed:   false,
		Checks: model.FileChecks{
			SingleH1:            failed,
			ImageAlts:           failed,
			W3CValidation:       failed,
			HorizontalScrollbar: failed,
		},
	}
}

func summarize(details []model.FileCheckResult) model.RepoCheckSummary {
	summary := model.RepoCheckSummary{
		TotalFiles:      len(details),
		H1Checks:        model.CheckTally{Label: labelH1},
		ImageAltChecks:  model.CheckTally{Label: labelImageAlts},
		W3CChecks:       model.CheckTally{Label: labelW3C},
		ScrollbarChecks: model.CheckTally{Label: labelScrollbar},
	}

	for _, record := range details {
		tally(&summary.H1Checks, record.Checks.SingleH1)
		tally(&summary.ImageAltChecks, record.Checks.ImageAlts)
		tally(&summary.W3CChecks, record.Checks.W3CValidation)
		tally(&summary.ScrollbarChecks, record.Checks.HorizontalScrollbar)
	}

	return summary
}

func tally(t *model.CheckTally, result model.CheckResult) {
	if result.Passed() {
		t.Passed++
	} else {
		t.Failed++
	}
}
