package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frontcheck/repo-audit-tool/internal/model"
	"github.com/frontcheck/repo-audit-tool/internal/platform/errs"
	"github.com/frontcheck/repo-audit-tool/internal/platform/requestid"
)

// Service orchestrates a RepoCheckProvider and logs results.
type Service struct {
	provider RepoCheckProvider
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider RepoCheckProvider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// CheckRepository delegates to the provider and logs the outcome.
func (s *Service) CheckRepository(ctx context.Context, owner, repo string) (*model.RepoCheckResult, error) {
	logger := s.logger.With("owner", owner, "repo", repo, "request_id", requestid.FromContext(ctx))

	result, err := s.provider.CheckRepository(ctx, owner, repo)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Unknown,
				Code:    "timeout",
				Message: "The check run timed out before all files were processed.",
				Cause:   err,
			}
		}
		logger.Error("repository check failed", "error", err)
		return nil, err
	}

	logger.Info("repository check complete",
		"total_files", result.Summary.TotalFiles,
		"h1_failed", result.Summary.H1Checks.Failed,
		"image_alt_failed", result.Summary.ImageAltChecks.Failed,
		"w3c_failed", result.Summary.W3CChecks.Failed,
		"scrollbar_failed", result.Summary.ScrollbarChecks.Failed,
	)
	return result, nil
}
