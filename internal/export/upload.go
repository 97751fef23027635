// Package export sends drawings out of the widget: to the save endpoint,
// to the sketch search, or into a PDF.
package export

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

	"github.com/rs/zerolog/log"

	"MySketchBoard/internal/match"
	"MySketchBoard/internal/state"
)

// Client talks to a sketch server.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient returns a client for the server at endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint:   strings.TrimSuffix(endpoint, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Upload posts the image data URL and the JSON stroke endpoints to /save.
func (c *Client) Upload(ctx context.Context, dataURL string, pairs []state.EndpointPair) error {
	if pairs == nil {
		pairs = []state.EndpointPair{}
	}
	lines, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("export: encode strokes: %w", err)
	}
	form := url.Values{
		"imgBase64":   {dataURL},
		"json_string": {string(lines)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/save", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("export: build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	log.Info().Str("endpoint", c.Endpoint).Int("strokes", len(pairs)).Str("reply", string(body)).Msg("[EXPORT] saved")
	return nil
}

// Search asks the server for the k saved sketches closest to the strokes.
func (c *Client) Search(ctx context.Context, pairs []state.EndpointPair, k int) ([]match.Result, error) {
	payload, err := json.Marshal(match.Request{Strokes: pairs, K: k})
	if err != nil {
		return nil, fmt.Errorf("export: encode search: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("export: build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var resp match.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("export: decode search reply: %w", err)
	}
	return resp.Results, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("export: read %s reply: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("export: %s returned %s: %s", req.URL.Path, resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
