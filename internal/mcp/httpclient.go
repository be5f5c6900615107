package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements PlanSource by calling the LiftPlan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// plans live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies PlanSource.
var _ PlanSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrPlanNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListPlans(ctx context.Context) ([]models.PlanSummary, error) {
	body, err := c.get(ctx, "/api/v1/plans")
	if err != nil {
		return nil, err
	}

	var plans []models.PlanSummary
	if err := json.Unmarshal(body, &plans); err != nil {
		return nil, fmt.Errorf("httpclient: decode plans: %w", err)
	}
	return plans, nil
}

func (c *HTTPClient) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	body, err := c.get(ctx, "/api/v1/plans/"+id.String())
	if err != nil {
		return nil, err
	}

	var p models.Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return &p, nil
}
