package repocheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/frontcheck/repo-audit-tool/internal/model"
	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
)

const (
	userAgent = "RepoAuditBot/1.0"

	// maxTreeDepth bounds the contents-API traversal so a pathological or
	// adversarial tree cannot recurse without limit.
	maxTreeDepth = 32

	// maxResponseBody limits how much of any upstream response body is read,
	// whether a source file, a directory listing, or a validator report.
	maxResponseBody = 10 << 20
)

// fileTypesByExtension maps recognized source-file extensions to their type.
var fileTypesByExtension = map[string]model.FileType{
	".html": model.FileTypeHTML,
	".htm":  model.FileTypeHTML,
	".css":  model.FileTypeCSS,
	".js":   model.FileTypeJavaScript,
}

// GitHubClient lists repository source trees and fetches raw file content
// through the GitHub REST contents API.
type GitHubClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGitHubClient returns a client with a 15s timeout and a dedicated
// transport that blocks connections to private/reserved IP ranges. The token
// may be empty; when set it is sent as a bearer token for rate-limit headroom.
func NewGitHubClient(baseURL, token string) *GitHubClient {
	return newGitHubClient(baseURL, token, &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newGitHubClient(baseURL, token string, transport http.RoundTripper) *GitHubClient {
	return &GitHubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

// contentEntry is one item of a contents-API directory listing.
type contentEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// ListFiles walks the repository tree depth-first in listing order and
// returns every file with a recognized markup/style/script extension.
func (c *GitHubClient) ListFiles(ctx context.Context, owner, repo string) ([]model.RepoFile, error) {
	files := make([]model.RepoFile, 0, 16)
	if err := c.walk(ctx, owner, repo, "", 0, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *GitHubClient) walk(ctx context.Context, owner, repo, dir string, depth int, out *[]model.RepoFile) error {
	if depth > maxTreeDepth {
		return &errs.AppError{
			Kind:    errs.Unknown,
			Code:    "tree_too_deep",
			Message: fmt.Sprintf("repository tree exceeds the maximum depth of %d", maxTreeDepth),
		}
	}

	entries, err := c.listContents(ctx, owner, repo, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		switch entry.Type {
		case "file":
			if fileType, ok := fileTypesByExtension[strings.ToLower(path.Ext(entry.Name))]; ok {
				*out = append(*out, model.RepoFile{
					Name: entry.Name,
					Path: entry.Path,
					Type: fileType,
					URL:  entry.DownloadURL,
				})
			}
		case "dir":
			if err := c.walk(ctx, owner, repo, entry.Path, depth+1, out); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *GitHubClient) listContents(ctx context.Context, owner, repo, dir string) ([]contentEntry, error) {
	listURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, dir)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.Unknown, Message: "failed to build repository listing request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.NetworkError,
			Code:    "github_unreachable",
			Message: "the repository host could not be reached",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &errs.AppError{
			Kind:    errs.RepoNotFound,
			Code:    "repo_not_found",
			Message: fmt.Sprintf("repository %s/%s was not found", owner, repo),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &errs.AppError{
			Kind:    errs.Unknown,
			Code:    "github_error",
			Message: fmt.Sprintf("the repository host returned status %d", resp.StatusCode),
		}
	}

	var entries []contentEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&entries); err != nil {
		return nil, &errs.AppError{Kind: errs.Unknown, Message: "failed to decode repository listing", Cause: err}
	}

	return entries, nil
}

// FetchContent retrieves a file's raw bytes from its download URL. Errors
// here are soft: the caller records them against the file and moves on.
func (c *GitHubClient) FetchContent(ctx context.Context, contentURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return "", fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch content: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch content: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}

	return string(data), nil
}
