// Package datafeed implements ports.PatchFetcher over the public Dota 2
// datafeed HTTP API.
package datafeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

// DefaultBaseURL is the public datafeed root.
const DefaultBaseURL = "https://www.dota2.com/datafeed"

// maxSnippet bounds how much of an error body is echoed back.
const maxSnippet = 256

// Client fetches patch notes and reference lists.
type Client struct {
	baseURL  string
	language string
	http     *http.Client
	logger   *zap.Logger
}

// Ensure Client implements ports.PatchFetcher.
var _ ports.PatchFetcher = (*Client)(nil)

// NewClient creates a datafeed client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, language string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if language == "" {
		language = "english"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// PatchNotes fetches the notes for one patch version.
func (c *Client) PatchNotes(ctx context.Context, version string) (*entities.PatchNotes, error) {
	var notes entities.PatchNotes
	if err := c.get(ctx, "patchnotes", url.Values{"version": {version}}, &notes); err != nil {
		return nil, err
	}
	return &notes, nil
}

// HeroList fetches the hero reference list.
func (c *Client) HeroList(ctx context.Context) (*entities.HeroList, error) {
	var list entities.HeroList
	if err := c.get(ctx, "herolist", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AbilityList fetches the hero ability reference list.
func (c *Client) AbilityList(ctx context.Context) (*entities.AbilityList, error) {
	var list entities.AbilityList
	if err := c.get(ctx, "abilitylist", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ItemList fetches the item reference list.
func (c *Client) ItemList(ctx context.Context) (*entities.AbilityList, error) {
	var list entities.AbilityList
	if err := c.get(ctx, "itemlist", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Endpoint returns the full URL for an endpoint with the language appended.
func (c *Client) Endpoint(path string, params url.Values) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("language", c.language)
	return c.baseURL + "/" + path + "?" + q.Encode()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	endpoint := c.Endpoint(path, params)
	c.logger.Debug("fetching datafeed", zap.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request for %s: %v", ports.ErrFetch, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: requesting %s: %v", ports.ErrFetch, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", ports.ErrFetch, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned status %d: %s", ports.ErrFetch, path, resp.StatusCode, snippet(body))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decoding %s: %v: %s", ports.ErrFetch, path, err, snippet(body))
	}

	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippet {
		return s[:maxSnippet] + "..."
	}
	return s
}
