package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is sent when a caller does not supply its own.
const DefaultUserAgent = "market-news-desk/1.0 (+https://github.com/samvad-hq/market-news-desk)"

// NewRestyHTTPClient returns a resty client with the shared defaults, for
// callers that need verbs beyond GET. Retries are off: every outbound call
// in this module is made at most once.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", DefaultUserAgent)
}

// RestyClient is the resty-backed Client.
type RestyClient struct {
	rc *resty.Client
}

// NewRestyClient builds a Client with the given overall request timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{rc: NewRestyHTTPClient(timeout)}
}

// Get issues a GET bound to ctx. Non-2xx statuses are returned, not treated as errors.
func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.rc.R().SetContext(ctx).SetHeaders(headers).Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp}, nil
}

type restyResponse struct{ *resty.Response }

func (r restyResponse) Body() []byte             { return r.Response.Body() }
func (r restyResponse) StatusCode() int          { return r.Response.StatusCode() }
func (r restyResponse) Header(key string) string { return r.Response.Header().Get(key) }
