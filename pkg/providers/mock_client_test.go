package providers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samvad-hq/market-news-desk/pkg/httpclient"
)

type mockResponse struct {
	body       []byte
	statusCode int
}

func (r mockResponse) Body() []byte         { return r.body }
func (r mockResponse) StatusCode() int      { return r.statusCode }
func (r mockResponse) Header(string) string { return "" }

// mockHTTPClient returns canned responses per URL and records calls.
type mockHTTPClient struct {
	t         *testing.T
	responses map[string]mockResponse
	expect    map[string]string
	err       error

	mu    sync.Mutex
	calls []string
}

func (m *mockHTTPClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	for key, want := range m.expect {
		if got := headers[key]; got != want {
			m.t.Errorf("expected header %s=%q, got %q", key, want, got)
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	resp, ok := m.responses[url]
	if !ok {
		m.t.Errorf("unexpected url %q", url)
		return nil, errors.New("not found")
	}
	if resp.statusCode == 0 {
		resp.statusCode = 200
	}
	return resp, nil
}
