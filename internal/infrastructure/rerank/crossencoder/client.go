// Package crossencoder talks to a cross-encoder inference service that
// scores (query, passage) pairs jointly. This is the single most expensive
// step per query; callers bound the candidate set before reaching it.
package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
	"github.com/studylab/exam-ai-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

type rerankRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankHit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// ScoreBatch returns one relevance score per passage, in passage order.
// Must not be called with an empty batch; the orchestration layer
// short-circuits empty candidate sets before reaching the model.
func (c *Client) ScoreBatch(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, fmt.Errorf("score batch: empty passage list")
	}

	payload := rerankRequest{Model: c.model, Query: query, Texts: passages}

	var hits []rerankHit
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/rerank", payload, &hits)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "crossencoder.rerank", call, classifyScorerError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if class := classifyScorerError(err); class.Retryable {
			return nil, domain.WrapError(domain.ErrTemporary, "score batch", err)
		}
		return nil, err
	}

	// The service returns hits sorted by score; map them back to passage
	// order so the caller controls ordering and tie-breaks.
	scores := make([]float64, len(passages))
	seen := 0
	for _, hit := range hits {
		if hit.Index < 0 || hit.Index >= len(passages) {
			return nil, fmt.Errorf("score batch: hit index %d out of range", hit.Index)
		}
		scores[hit.Index] = hit.Score
		seen++
	}
	if seen != len(passages) {
		return nil, fmt.Errorf("score batch: %d scores for %d passages", seen, len(passages))
	}
	return scores, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crossencoder rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode rerank response: %w", err)
	}
	return nil
}

type statusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("crossencoder rerank status: %s", e.Status)
	}
	return fmt.Sprintf("crossencoder rerank status: %s: %s", e.Status, e.Body)
}

func classifyScorerError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
