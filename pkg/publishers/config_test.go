package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/market-news-desk/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: hook
    type: HTTP
    enabled: false
    http:
      url: https://example.com
  - id: topic
    type: sns
    categories: [Energy, Commodities]
    sns:
      topic_arn: arn:aws:sns:us-east-1:123:news
      region: us-east-1
  - id: gcp
    type: gcp_pubsub
    gcp_pubsub:
      project_id: desk
      topic: market-news
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "topic" || enabled[1].ID != "gcp" {
		t.Fatalf("unexpected enabled publishers %#v", enabled)
	}
	hook, ok := reg.ByID("hook")
	if !ok || hook.Type != TypeHTTP || hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", hook)
	}
	if !enabled[0].Accepts(domain.Article{Category: domain.CategoryEnergy}) || enabled[0].Accepts(domain.Article{Category: domain.CategoryStocks}) {
		t.Fatalf("category filter wrong")
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[{"id":"q","type":"sqs","sqs":{"uri":"https://sqs/q","region":"eu-west-1"}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if cfg, ok := reg.ByID("q"); !ok || cfg.SQS.Region != "eu-west-1" {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadRegistryRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":        "publishers: []\n",
		"missing http": "publishers:\n  - id: h\n    type: http\n",
		"sqs region":   "publishers:\n  - id: q\n    type: sqs\n    sqs:\n      uri: https://sqs/q\n",
		"bad category": "publishers:\n  - id: h\n    type: http\n    categories: [Gossip]\n    http:\n      url: https://x\n",
		"duplicate":    "publishers:\n  - id: h\n    type: http\n    http:\n      url: https://x\n  - id: h\n    type: http\n    http:\n      url: https://y\n",
	}
	for name, body := range cases {
		if _, err := LoadRegistry(writeFile(t, "p.yaml", body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
