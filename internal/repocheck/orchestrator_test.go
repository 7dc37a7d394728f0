package repocheck

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/frontcheck/repo-audit-tool/internal/model"
	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
)

// stubTree implements TreeFetcher for testing.
type stubTree struct {
	files []model.RepoFile
	err   error
}

func (s *stubTree) ListFiles(context.Context, string, string) ([]model.RepoFile, error) {
	return s.files, s.err
}

type runnerOutcome struct {
	checks BrowserChecks
	raw    string
	err    error
}

// stubRunner implements checkRunner for testing, keyed by file path.
type stubRunner struct {
	outcomes map[string]runnerOutcome
	calls    []string
}

func (s *stubRunner) Run(_ context.Context, file model.RepoFile) (BrowserChecks, string, error) {
	s.calls = append(s.calls, file.Path)
	out := s.outcomes[file.Path]
	return out.checks, out.raw, out.err
}

// stubValidator implements markupValidator for testing.
type stubValidator struct {
	result model.CheckResult
}

func (s *stubValidator) Validate(context.Context, string) model.CheckResult {
	return s.result
}

func passCheck() model.CheckResult {
	return model.CheckResult{Status: model.StatusPass}
}

func htmlFile(name, path string) model.RepoFile {
	return model.RepoFile{Name: name, Path: path, Type: model.FileTypeHTML, URL: "https://example.com/raw/" + path}
}

func newTestOrchestrator(tree TreeFetcher, runner checkRunner, validator markupValidator) *Orchestrator {
	return NewOrchestrator(tree, runner, validator, slog.Default())
}

func TestOrchestrator_CheckRepository_TwoFileScenario(t *testing.T) {
	// File A compliant on everything; file B has two h1 elements and one
	// image without an alt attribute.
	tree := &stubTree{files: []model.RepoFile{htmlFile("a.html", "a.html"), htmlFile("b.html", "b.html")}}
	runner := &stubRunner{outcomes: map[string]runnerOutcome{
		"a.html": {
			checks: BrowserChecks{SingleH1: passCheck(), ImageAlts: passCheck(), HorizontalScrollbar: passCheck()},
			raw:    "<!DOCTYPE html><html><head><title>A</title></head></html>",
		},
		"b.html": {
			checks: BrowserChecks{
				SingleH1: failCheck("More than one h1 found (2)"),
				ImageAlts: model.CheckResult{
					Status:  model.StatusFail,
					Message: "1 of 1 images have missing or unsuitable alt text",
					Details: []string{"Image 1: missing alt attribute"},
				},
				HorizontalScrollbar: passCheck(),
			},
			raw: "<html></html>",
		},
	}}

	result, err := newTestOrchestrator(tree, runner, &stubValidator{result: passCheck()}).
		CheckRepository(context.Background(), "octo", "site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summary.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", result.Summary.TotalFiles)
	}
	if result.Summary.H1Checks.Passed != 1 || result.Summary.H1Checks.Failed != 1 {
		t.Errorf("H1Checks = %+v, want 1 passed / 1 failed", result.Summary.H1Checks)
	}
	if result.Summary.ImageAltChecks.Passed != 1 || result.Summary.ImageAltChecks.Failed != 1 {
		t.Errorf("ImageAltChecks = %+v, want 1 passed / 1 failed", result.Summary.ImageAltChecks)
	}
	if result.Summary.W3CChecks.Passed != 2 || result.Summary.ScrollbarChecks.Passed != 2 {
		t.Errorf("W3C/Scrollbar = %+v / %+v, want 2 passed each", result.Summary.W3CChecks, result.Summary.ScrollbarChecks)
	}

	if len(result.Details) != 2 {
		t.Fatalf("Details length = %d, want 2", len(result.Details))
	}
	if result.Details[0].FileName != "a.html" || result.Details[1].FileName != "b.html" {
		t.Errorf("details out of traversal order: %s, %s", result.Details[0].FileName, result.Details[1].FileName)
	}
	if !result.Details[0].Passed {
		t.Error("file A should pass overall")
	}
	if result.Details[0].HTMLVersion != "HTML5" || result.Details[0].Title != "A" {
		t.Errorf("file A profile = %q / %q, want HTML5 / A", result.Details[0].HTMLVersion, result.Details[0].Title)
	}
	if result.Details[1].Passed {
		t.Error("file B should fail overall")
	}
	if got := result.Details[1].Checks.ImageAlts.Details; len(got) != 1 {
		t.Errorf("file B imageAlts details = %v, want 1 entry", got)
	}
}

func TestOrchestrator_CheckRepository_FetchFailureAborts(t *testing.T) {
	fetchErr := &errs.AppError{Kind: errs.RepoNotFound, Message: "repository octo/missing was not found"}
	runner := &stubRunner{}

	result, err := newTestOrchestrator(&stubTree{err: fetchErr}, runner, &stubValidator{result: passCheck()}).
		CheckRepository(context.Background(), "octo", "missing")
	if result != nil {
		t.Error("expected no partial summary on fetch failure")
	}
	if !errors.Is(err, fetchErr) {
		t.Errorf("err = %v, want %v", err, fetchErr)
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner was invoked %d times before the abort", len(runner.calls))
	}
}

func TestOrchestrator_CheckRepository_BrowserErrorAbortsMidRun(t *testing.T) {
	tree := &stubTree{files: []model.RepoFile{
		htmlFile("1.html", "1.html"), htmlFile("2.html", "2.html"), htmlFile("3.html", "3.html"),
	}}
	browserErr := &errs.AppError{Kind: errs.BrowserError, Message: "the rendering engine became unusable during checks"}
	runner := &stubRunner{outcomes: map[string]runnerOutcome{
		"1.html": {checks: BrowserChecks{SingleH1: passCheck(), ImageAlts: passCheck(), HorizontalScrollbar: passCheck()}, raw: "<html></html>"},
		"2.html": {err: browserErr},
	}}

	result, err := newTestOrchestrator(tree, runner, &stubValidator{result: passCheck()}).
		CheckRepository(context.Background(), "octo", "site")
	if result != nil {
		t.Error("expected no partial summary after a BrowserError")
	}
	if errs.KindOf(err) != errs.BrowserError {
		t.Errorf("err = %v, want a BrowserError", err)
	}
	if len(runner.calls) != 2 {
		t.Errorf("runner calls = %v, want to stop after file 2", runner.calls)
	}
}

// deadCtxRunner implements checkRunner by failing with the run context's
// error, the way real pipeline stages do once the context expires.
type deadCtxRunner struct {
	calls int
}

func (r *deadCtxRunner) Run(ctx context.Context, _ model.RepoFile) (BrowserChecks, string, error) {
	r.calls++
	return BrowserChecks{}, "", ctx.Err()
}

func TestOrchestrator_CheckRepository_ExpiredContextAbortsRun(t *testing.T) {
	tree := &stubTree{files: []model.RepoFile{htmlFile("a.html", "a.html"), htmlFile("b.html", "b.html")}}
	runner := &deadCtxRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestOrchestrator(tree, runner, &stubValidator{result: passCheck()}).
		CheckRepository(ctx, "octo", "site")
	if result != nil {
		t.Error("an expired run must not produce a summary of synthesized failures")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want the context error", err)
	}
	if runner.calls != 1 {
		t.Errorf("runner was invoked %d times after cancellation, want 1", runner.calls)
	}
}

func TestOrchestrator_CheckRepository_SoftFailureSynthesizesRecord(t *testing.T) {
	tree := &stubTree{files: []model.RepoFile{htmlFile("ok.html", "ok.html"), htmlFile("bad.html", "bad.html")}}
	runner := &stubRunner{outcomes: map[string]runnerOutcome{
		"ok.html":  {checks: BrowserChecks{SingleH1: passCheck(), ImageAlts: passCheck(), HorizontalScrollbar: passCheck()}, raw: "<html></html>"},
		"bad.html": {err: errors.New("bad.html: fetch content: status 500")},
	}}

	result, err := newTestOrchestrator(tree, runner, &stubValidator{result: passCheck()}).
		CheckRepository(context.Background(), "octo", "site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summary.TotalFiles != 2 {
		t.Fatalf("TotalFiles = %d, want 2", result.Summary.TotalFiles)
	}

	// Every category must still sum to the file total.
	for _, tally := range []model.CheckTally{
		result.Summary.H1Checks, result.Summary.ImageAltChecks,
		result.Summary.W3CChecks, result.Summary.ScrollbarChecks,
	} {
		if tally.Passed+tally.Failed != result.Summary.TotalFiles {
			t.Errorf("%s: passed(%d) + failed(%d) != totalFiles(%d)",
				tally.Label, tally.Passed, tally.Failed, result.Summary.TotalFiles)
		}
		if tally.Passed != 1 || tally.Failed != 1 {
			t.Errorf("%s = %+v, want 1 passed / 1 failed", tally.Label, tally)
		}
	}

	bad := result.Details[1]
	if bad.Passed {
		t.Error("synthesized record must not pass")
	}
	wantMsg := "bad.html: fetch content: status 500"
	for _, check := range []model.CheckResult{
		bad.Checks.SingleH1, bad.Checks.ImageAlts, bad.Checks.W3CValidation, bad.Checks.HorizontalScrollbar,
	} {
		if check.Status != model.StatusFail || check.Message != wantMsg {
			t.Errorf("synthesized check = %+v, want fail with %q", check, wantMsg)
		}
	}
}

func TestOrchestrator_CheckRepository_FiltersToMarkupFiles(t *testing.T) {
	tree := &stubTree{files: []model.RepoFile{
		{Name: "style.css", Path: "style.css", Type: model.FileTypeCSS},
		htmlFile("index.html", "index.html"),
		{Name: "app.js", Path: "app.js", Type: model.FileTypeJavaScript},
	}}
	runner := &stubRunner{outcomes: map[string]runnerOutcome{
		"index.html": {checks: BrowserChecks{SingleH1: passCheck(), ImageAlts: passCheck(), HorizontalScrollbar: passCheck()}, raw: "<html></html>"},
	}}

	result, err := newTestOrchestrator(tree, runner, &stubValidator{result: passCheck()}).
		CheckRepository(context.Background(), "octo", "site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.calls) != 1 || runner.calls[0] != "index.html" {
		t.Errorf("runner calls = %v, want only index.html", runner.calls)
	}
	if result.Summary.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1", result.Summary.TotalFiles)
	}
}

func TestOrchestrator_CheckRepository_NoMarkupFiles(t *testing.T) {
	tree := &stubTree{files: []model.RepoFile{
		{Name: "style.css", Path: "style.css", Type: model.FileTypeCSS},
	}}

	result, err := newTestOrchestrator(tree, &stubRunner{}, &stubValidator{result: passCheck()}).
		CheckRepository(context.Background(), "octo", "site")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summary.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", result.Summary.TotalFiles)
	}
	if len(result.Details) != 0 {
		t.Errorf("Details = %v, want empty", result.Details)
	}
	if result.Summary.H1Checks.Label != "Single H1" {
		t.Errorf("H1Checks.Label = %q", result.Summary.H1Checks.Label)
	}
}

func TestOrchestrator_CheckRepository_ValidatorFailureIsPerFile(t *testing.T) {
	tree := &stubTree{files: []model.RepoFile{htmlFile("index.html", "index.html")}}
	runner := &stubRunner{outcomes: map[string]runnerOutcome{
		"index.html": {checks: BrowserChecks{SingleH1: passCheck(), ImageAlts: passCheck(), HorizontalScrollbar: passCheck()}, raw: "<html></html>"},
	}}
	validator := &stubValidator{result: failCheck("markup validation service returned status 503")}

	result, err := newTestOrchestrator(tree, runner, validator).
		CheckRepository(context.Background(), "octo", "site")
	if err != nil {
		t.Fatalf("validator failure must not abort the run: %v", err)
	}

	record := result.Details[0]
	if record.Passed {
		t.Error("a failed validation must fail the file overall")
	}
	if !record.Checks.SingleH1.Passed() {
		t.Error("browser checks must keep their own outcomes")
	}
	if result.Summary.W3CChecks.Failed != 1 || result.Summary.H1Checks.Passed != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
}
