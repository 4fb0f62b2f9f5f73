// Package owner talks to the Comus platform service that created the
// session and receives its final results.
package owner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/comus-party/justeprix/internal/model"
)

// Client is the HTTP client for the owner platform
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new owner platform client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "owner")),
	}
}

type resultsRequest struct {
	Scores  map[string]int `json:"scores"`
	Winners []string       `json:"winners"`
}

type resultsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ReportResults posts a session's final scores and winners to the
// owner platform. The returned bool is the platform's success flag;
// it can be false on a 200 response, and the caller must treat that
// as rejection.
func (c *Client) ReportResults(ctx context.Context, id model.SessionID, scores map[model.PlayerID]int, winners []model.PlayerID) (bool, error) {
	reqBody := resultsRequest{
		Scores:  make(map[string]int, len(scores)),
		Winners: make([]string, 0, len(winners)),
	}
	for playerID, score := range scores {
		reqBody.Scores[string(playerID)] = score
	}
	for _, w := range winners {
		reqBody.Winners = append(reqBody.Winners, string(w))
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return false, fmt.Errorf("failed to marshal results: %w", err)
	}

	url := fmt.Sprintf("%s/api/games/%s/results", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result resultsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}

	if !result.Success {
		c.logger.Warn("owner platform rejected results",
			slog.String("session_id", string(id)),
			slog.String("message", result.Message),
		)
	}

	return result.Success, nil
}
