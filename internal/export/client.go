package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// savePlanRequest mirrors the server's create-plan body without importing
// the server package.
type savePlanRequest struct {
	Name      string            `json:"name"`
	Exercises []models.Exercise `json:"exercises"`
}

// Client pushes exported plans to a LiftPlan server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the LiftPlan server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SavePlan POSTs the plan file to the server and returns the new plan's ID.
// Retries up to 3 times with exponential backoff on failure; a 4xx answer
// is final.
func (c *Client) SavePlan(ctx context.Context, pf *PlanFile) (uuid.UUID, error) {
	data, err := json.Marshal(savePlanRequest{Name: pf.Name, Exercises: pf.Exercises})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling plan: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return uuid.Nil, ctx.Err()
			}
		}

		id, retry, err := c.post(ctx, data)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return uuid.Nil, fmt.Errorf("saving plan %s: %w", pf.Name, lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) (uuid.UUID, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/plans", bytes.NewReader(data))
	if err != nil {
		return uuid.Nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, true, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		retry := resp.StatusCode >= http.StatusInternalServerError
		return uuid.Nil, retry, fmt.Errorf("save failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return uuid.Nil, false, fmt.Errorf("decoding saved plan: %w", err)
	}
	return created.ID, false, nil
}
