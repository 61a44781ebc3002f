package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foodshare/pkg/types"
)

// Client talks to the donation backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LookupDonor fetches the latest donation and impact for a donor identifier.
// A 404 is reported as types.ErrDonorNotFound.
func (c *Client) LookupDonor(ctx context.Context, identifier string) (*types.DonorLookup, error) {
	endpoint := fmt.Sprintf("%s/api/donor/%s", c.baseURL, url.PathEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to look up donor: %w", types.ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.ErrDonorNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("donor lookup", resp)
	}

	var lookup types.DonorLookup
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("%w: failed to decode donor lookup: %w", types.ErrBackend, err)
	}

	return &lookup, nil
}

// LogDonation records a donation. The response body is ignored.
func (c *Client) LogDonation(ctx context.Context, donation types.LogDonationRequest) error {
	resp, err := c.postJSON(ctx, "/api/log-donation", donation)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("log donation", resp)
	}

	return nil
}

// CalculateImpact asks the backend for the impact of amount
func (c *Client) CalculateImpact(ctx context.Context, amount float64) (*types.DonationImpact, error) {
	resp, err := c.postJSON(ctx, "/api/calculate-impact", types.CalculateImpactRequest{Amount: amount})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("calculate impact", resp)
	}

	var out types.CalculateImpactResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode impact: %w", types.ErrBackend, err)
	}

	return &out.Impact, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed: %w", types.ErrBackend, path, err)
	}

	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%w: %s failed with status %d: %s", types.ErrBackend, op, resp.StatusCode, string(body))
}
