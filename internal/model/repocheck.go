package model

// FileType classifies a repository source file by extension.
type FileType string

const (
	FileTypeHTML       FileType = "HTML"
	FileTypeCSS        FileType = "CSS"
	FileTypeJavaScript FileType = "JavaScript"
)

// RepoFile is one qualifying leaf of the repository source tree.
type RepoFile struct {
	Name string   `json:"name"`
	Path string   `json:"path"`
	Type FileType `json:"type"`
	URL  string   `json:"url"`
}

// CheckStatus is the outcome of a single check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusFail CheckStatus = "fail"
)

// CheckResult holds the outcome of one structural or validation check.
type CheckResult struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
	Details []string    `json:"details,omitempty"`
}

// Passed reports whether the check passed.
func (r CheckResult) Passed() bool {
	return r.Status == StatusPass
}

// FileChecks groups the four per-file check outcomes.
type FileChecks struct {
	SingleH1            CheckResult `json:"singleH1"`
	ImageAlts           CheckResult `json:"imageAlts"`
	W3CValidation       CheckResult `json:"w3cValidation"`
	HorizontalScrollbar CheckResult `json:"horizontalScrollbar"`
}

// FileCheckResult is the complete record for one audited markup file.
// Passed is true exactly when all four checks passed. HTMLVersion and
// Title come from a static parse of the raw markup and are empty when
// the file could not be processed.
type FileCheckResult struct {
	FileName    string     `json:"fileName"`
	Path        string     `json:"path"`
	HTMLVersion string     `json:"htmlVersion,omitempty"`
	Title       string     `json:"title,omitempty"`
	Passed      bool       `json:"passed"`
	Checks      FileChecks `json:"checks"`
}

// CheckTally counts pass/fail outcomes for one check category.
type CheckTally struct {
	Label  string `json:"label"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
}

// RepoCheckSummary aggregates tallies across all audited files.
// For every category, Passed + Failed == TotalFiles.
type RepoCheckSummary struct {
	TotalFiles      int        `json:"totalFiles"`
	H1Checks        CheckTally `json:"h1Checks"`
	ImageAltChecks  CheckTally `json:"imageAltChecks"`
	W3CChecks       CheckTally `json:"w3cChecks"`
	ScrollbarChecks CheckTally `json:"scrollbarChecks"`
}

// RepoCheckResult is the terminal output of one audit run. Details are
// ordered by source-tree traversal order and len(Details) == TotalFiles.
type RepoCheckResult struct {
	Summary RepoCheckSummary  `json:"summary"`
	Details []FileCheckResult `json:"details"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
