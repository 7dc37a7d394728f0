package audit

import (
	"context"

	"github.com/frontcheck/repo-audit-tool/internal/model"
)

// RepoCheckProvider defines the contract for any repository check pipeline.
type RepoCheckProvider interface {
	CheckRepository(ctx context.Context, owner, repo string) (*model.RepoCheckResult, error)
}
