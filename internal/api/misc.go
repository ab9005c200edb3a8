package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/and161185/notekeeper/internal/errs"
)

// Health returns whatever JSON the backend's health endpoint reports.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CalcSum asks the backend for a+b. Operands go out as given and the result
// comes back as the backend's literal JSON number, so integers beyond 2^53
// keep every digit.
func (c *Client) CalcSum(ctx context.Context, a, b string) (string, error) {
	q := url.Values{}
	q.Set("a", a)
	q.Set("b", b)

	var out struct {
		Result json.Number `json:"result"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/calc/sum", q, nil, &out); err != nil {
		return "", err
	}
	if out.Result == "" {
		return "", fmt.Errorf("%w: GET /calc/sum: no result in response", errs.ErrNetwork)
	}
	return out.Result.String(), nil
}
