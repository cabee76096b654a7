package enhance

import (
	"context"
	"time"

	"resty.dev/v3"

	"github.com/motorplaza/lingocache"
)

// Client talks to the cache HTTP endpoint. A failed or non-200
// response means "no translations available this pass" and is reported
// through the ok flag, never as a hard error.
type Client struct {
	http     *resty.Client
	endpoint string
	debug    bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout (default 10s).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithDebug forwards the server-side debug flag on every request.
func WithDebug(on bool) ClientOption {
	return func(c *Client) {
		c.debug = on
	}
}

// NewClient creates a Client for the given base URL (e.g.
// "http://localhost:8080").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("User-Agent", lingocache.UserAgent()),
		endpoint: baseURL + "/api/v1/translations",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type translateRequest struct {
	Locale        string   `json:"locale"`
	DefaultLocale string   `json:"defaultLocale"`
	Texts         []string `json:"texts"`
}

type translateResponse struct {
	Translations []string `json:"translations"`
}

// Translations requests translations for texts. ok is false when the
// endpoint was unreachable, answered non-200, or returned a
// misaligned response.
func (c *Client) Translations(ctx context.Context, texts []string, locale, defaultLocale string) ([]string, bool) {
	var parsed translateResponse

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(translateRequest{Locale: locale, DefaultLocale: defaultLocale, Texts: texts}).
		SetResult(&parsed)
	if c.debug {
		req.SetQueryParam("debug", "1")
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		lingocache.Debugf("enhance fetch failed: %v", err)
		return nil, false
	}
	if resp.IsError() {
		lingocache.Debugf("enhance fetch returned %d", resp.StatusCode())
		return nil, false
	}
	if len(parsed.Translations) != len(texts) {
		lingocache.Debugf("enhance fetch misaligned: sent %d, got %d", len(texts), len(parsed.Translations))
		return nil, false
	}
	return parsed.Translations, true
}
