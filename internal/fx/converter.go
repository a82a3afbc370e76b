package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Converter is the external rate-lookup collaborator. Implementations
// return an error when the rate is unavailable; callers decide on a
// fallback.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// HTTPConverter talks to an open-exchange-rate style endpoint:
// GET {endpoint}/{from} -> {"result": "success", "rates": {"INR": 83.1, ...}}
type HTTPConverter struct {
	endpoint string
	client   *http.Client
}

func NewHTTPConverter(endpoint string) *HTTPConverter {
	return &HTTPConverter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (c *HTTPConverter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+from, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fx lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx lookup: unexpected status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("fx lookup: decode: %w", err)
	}

	rate, ok := body.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fx lookup: no usable rate for %s", to)
	}
	return amount * rate, nil
}

var _ Converter = (*HTTPConverter)(nil)
