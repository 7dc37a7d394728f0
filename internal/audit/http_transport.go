package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frontcheck/repo-audit-tool/internal/model"
	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
)

// checkTimeout bounds a whole run; the viewport sweep makes runs far slower
// than a single page analysis.
const checkTimeout = 5 * time.Minute

var (
	errRepoURLRequired = errors.New("the \"repoUrl\" field is required")
	errHostNotAllowed  = errors.New("only github.com repository URLs are supported")
	errBadRepoPath     = errors.New("the repository URL must look like https://github.com/<owner>/<repo>")
)

// allowedHosts is the trusted host allow-list for repository URLs.
var allowedHosts = map[string]bool{
	"github.com":     true,
	"www.github.com": true,
}

// Transport handles HTTP requests for repository checks.
type Transport struct {
	service *Service
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, logger *slog.Logger) *Transport {
	return &Transport{service: service, logger: logger}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /check", t.handleCheck)
}

type checkRequest struct {
	RepoURL string `json:"repoUrl"`
}

// ownerRepo validates the repository URL against the host allow-list and
// extracts the owner and repository identifiers.
func (r checkRequest) ownerRepo() (string, string, error) {
	if r.RepoURL == "" {
		return "", "", errRepoURLRequired
	}

	parsed, err := url.Parse(r.RepoURL)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return "", "", errBadRepoPath
	}
	if !allowedHosts[strings.ToLower(parsed.Host)] {
		return "", "", errHostNotAllowed
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return "", "", errBadRepoPath
	}

	return segments[0], strings.TrimSuffix(segments[1], ".git"), nil
}

func (t *Transport) handleCheck(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "Invalid request body. Please send a JSON object with a \"repoUrl\" field.")
		return
	}

	owner, repo, err := req.ownerRepo()
	if err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	result, err := t.service.CheckRepository(ctx, owner, repo)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, result)
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case errs.InvalidInput:
			status = http.StatusBadRequest
		case errs.RepoNotFound:
			status = http.StatusNotFound
		case errs.NetworkError:
			status = http.StatusBadGateway
		case errs.BrowserError, errs.Unknown:
			// 500 Internal Server Error
		}
		t.renderError(w, status, appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
