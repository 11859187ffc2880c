// Package oracle is the boundary to the external reputation oracle.
// Scores enrich match-score ranking only; a failing or absent oracle
// never blocks an application.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Client interface {
	// CategoryScore returns a 0-100 reputation score for the candidate in
	// the given skill category.
	CategoryScore(ctx context.Context, candidate uuid.UUID, category string) (int, error)
}

// HTTPClient calls a reputation oracle service over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 3 * time.Second},
		logger:  logger,
	}
}

type scoreResponse struct {
	Score int `json:"score"`
}

func (c *HTTPClient) CategoryScore(ctx context.Context, candidate uuid.UUID, category string) (int, error) {
	endpoint := fmt.Sprintf("%s/scores/%s?category=%s",
		c.baseURL, candidate, url.QueryEscape(category))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	if out.Score < 0 || out.Score > 100 {
		return 0, fmt.Errorf("oracle score %d out of range", out.Score)
	}
	return out.Score, nil
}

// Disabled is used when no oracle is configured; it reports no signal.
type Disabled struct{}

func (Disabled) CategoryScore(context.Context, uuid.UUID, string) (int, error) {
	return 0, ErrUnavailable
}

var ErrUnavailable = fmt.Errorf("reputation oracle not configured")
