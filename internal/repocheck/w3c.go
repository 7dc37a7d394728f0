package repocheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/frontcheck/repo-audit-tool/internal/model"
)

// W3CValidator submits raw markup to a Nu-style validation endpoint and
// reduces its diagnostic feed to a single pass/fail CheckResult. Validator
// outages are soft: they fail the check, never the run.
type W3CValidator struct {
	client   *http.Client
	endpoint string
}

// NewW3CValidator returns a validator client with a 30s timeout. The
// endpoint must already carry the JSON output selector (e.g. ?out=json).
func NewW3CValidator(endpoint string) *W3CValidator {
	return &W3CValidator{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// validatorResponse is the Nu validator's JSON envelope.
type validatorResponse struct {
	Messages []validatorMessage `json:"messages"`
}

type validatorMessage struct {
	Type     string `json:"type"`
	LastLine int    `json:"lastLine"`
	Message  string `json:"message"`
}

// Validate submits the raw, non-decoded markup and passes iff the validator
// reports zero error-severity messages.
func (v *W3CValidator) Validate(ctx context.Context, markup string) model.CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(markup))
	if err != nil {
		return failCheck(fmt.Sprintf("markup validation request could not be built: %v", err))
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return failCheck(fmt.Sprintf("markup validation request failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failCheck(fmt.Sprintf("markup validation service returned status %d", resp.StatusCode))
	}

	var parsed validatorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&parsed); err != nil {
		return failCheck(fmt.Sprintf("markup validation response could not be decoded: %v", err))
	}

	var details []string
	for _, msg := range parsed.Messages {
		if msg.Type == "error" {
			details = append(details, fmt.Sprintf("Line %d: %s", msg.LastLine, msg.Message))
		}
	}

	if len(details) > 0 {
		return model.CheckResult{
			Status:  model.StatusFail,
			Message: fmt.Sprintf("%d validation error(s) found", len(details)),
			Details: details,
		}
	}
	return model.CheckResult{Status: model.StatusPass, Message: "No validation errors found"}
}
