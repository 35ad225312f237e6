package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(key string) string
}

// Client abstracts HTTP calls so provider adapters can be tested with canned responses.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
