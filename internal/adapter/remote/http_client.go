package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient implements port.StockService against the stock REST API. It is
// the transport the storefront client uses in production; authentication
// headers are attached by the http.Client's transport, not here.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

type stockPayload struct {
	ItemID     string `json:"item_id"`
	StockCount int    `json:"stock_count"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{baseURL: baseURL, http: client}
}

func (c *HTTPClient) SetStock(ctx context.Context, itemID string, value int) (int, error) {
	body := map[string]int{"stock_count": value}
	return c.doStock(ctx, http.MethodPut, "/api/stock/"+itemID, body)
}

func (c *HTTPClient) ApplyDelta(ctx context.Context, itemID string, delta int) (int, error) {
	body := map[string]int{"delta": delta}
	return c.doStock(ctx, http.MethodPost, "/api/stock/"+itemID+"/delta", body)
}

func (c *HTTPClient) GetStock(ctx context.Context, itemID string) (int, error) {
	return c.doStock(ctx, http.MethodGet, "/api/stock/"+itemID, nil)
}

func (c *HTTPClient) doStock(ctx context.Context, method, path string, body map[string]int) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ep errorPayload
		if json.NewDecoder(resp.Body).Decode(&ep) == nil && ep.Message != "" {
			return 0, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, ep.Message)
		}
		return 0, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	var out stockPayload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.StockCount, nil
}
