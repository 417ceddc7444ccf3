package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pixelwatch/internal/domain"
)

// Client is a minimal consumer of the pixelwatch HTTP API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client { return &Client{BaseURL: baseURL, HTTP: http.DefaultClient} }

func (c *Client) ListRequests(limit, offset int) ([]domain.RequestRecord, int, error) {
	resp, err := c.HTTP.Get(fmt.Sprintf("%s/api/requests?limit=%d&offset=%d", c.BaseURL, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	var out struct {
		Items []domain.RequestRecord `json:"items"`
		Total int                    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// Export fetches the full working set with attached issues.
func (c *Client) Export() ([]domain.RequestRecord, domain.IssueSummary, error) {
	resp, err := c.HTTP.Get(c.BaseURL + "/api/export")
	if err != nil {
		return nil, domain.IssueSummary{}, err
	}
	defer resp.Body.Close()
	var out struct {
		Records []domain.RequestRecord `json:"records"`
		Summary domain.IssueSummary    `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.IssueSummary{}, err
	}
	return out.Records, out.Summary, nil
}

// Summary fetches the on-demand issue summary.
func (c *Client) Summary() (domain.IssueSummary, error) {
	resp, err := c.HTTP.Get(c.BaseURL + "/api/summary")
	if err != nil {
		return domain.IssueSummary{}, err
	}
	defer resp.Body.Close()
	var out domain.IssueSummary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.IssueSummary{}, err
	}
	return out, nil
}
