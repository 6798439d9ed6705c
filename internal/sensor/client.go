package sensor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwulff/glucose-go/internal/glucose"
)

// Sample is the wire form of a glucose reading, shared by the agent's
// history endpoint and the core's ingest endpoint.
type Sample struct {
	T    int64   `json:"t"`
	Mmol float64 `json:"mmol"`
}

// Reading converts a wire sample to the domain type.
func (s Sample) Reading() glucose.Reading {
	return glucose.Reading{Mmol: s.Mmol, Timestamp: s.T}
}

// ToSample converts a domain reading to its wire form.
func ToSample(r glucose.Reading) Sample {
	return Sample{T: r.Timestamp, Mmol: r.Mmol}
}

// Client is an HTTP client for the sensor agent.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new sensor agent client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchHistory fetches the last N minutes of generated glucose history.
func (c *Client) FetchHistory(ctx context.Context, minutes int) ([]glucose.Reading, error) {
	url := fmt.Sprintf("%s/history?minutes=%d", c.BaseURL, minutes)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read history response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history failed with status %d: %s", resp.StatusCode, string(body))
	}

	var samples []Sample
	if err := json.Unmarshal(body, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}

	readings := make([]glucose.Reading, len(samples))
	for i, s := range samples {
		readings[i] = s.Reading()
	}
	return readings, nil
}

// CoreClient is an HTTP client for the assistant core, used by the
// sensor agent to sync its clock and push live values.
type CoreClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewCoreClient creates a new assistant core client.
func NewCoreClient(baseURL string) *CoreClient {
	return &CoreClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StartClock fetches the core's simulation epoch (t0, real wall ms).
func (c *CoreClient) StartClock(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/api/clock/start", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create clock request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("clock request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read clock response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("clock start failed with status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		T0Real int64 `json:"t0Real"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse clock response: %w", err)
	}
	return payload.T0Real, nil
}

// PushGlucose submits a live glucose sample to the core.
func (c *CoreClient) PushGlucose(ctx context.Context, s Sample) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal glucose sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/glucose", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create glucose request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("glucose request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("glucose push failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
