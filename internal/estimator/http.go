package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/saadjs/daykcal/internal/logging"
)

const maxErrorBody = 512

// postJSON sends body to url and returns the raw 200 response. Failures are
// already classified as EstimationErrors.
func postJSON(ctx context.Context, client *http.Client, log logging.Logger, provider, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &EstimationError{Provider: provider, Reason: ReasonMalformed, Err: fmt.Errorf("marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &EstimationError{Provider: provider, Reason: ReasonTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug(ctx, "estimator request", "provider", provider, "bytes", len(payload))
	resp, err := client.Do(req)
	if err != nil {
		return nil, &EstimationError{Provider: provider, Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EstimationError{Provider: provider, Reason: ReasonTransport, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		snippet := raw
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		log.Warn(ctx, "estimator returned non-200", "provider", provider, "status", resp.StatusCode)
		return nil, &EstimationError{Provider: provider, Reason: ReasonStatus, Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))}
	}
	return raw, nil
}

func decodeOutcome(provider, text string) (Outcome, error) {
	out, err := parseReply(text)
	if err != nil {
		return Outcome{}, &EstimationError{Provider: provider, Reason: ReasonMalformed, Err: err}
	}
	return out, nil
}
