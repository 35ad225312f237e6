package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/logger"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

// Registry maps publisher types to builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns a registry with the given builders keyed by type.
func NewRegistry(builders map[string]Builder) *Registry {
	r := &Registry{builders: make(map[string]Builder, len(builders))}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// DefaultRegistry wires every supported sink type.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	})
}

// Register associates a builder with a publisher type.
func (r *Registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}
	r.builders[typ] = builder
}

// PublisherFor builds the publisher for cfg. Category filters are applied here so
// individual sinks never see articles they did not subscribe to.
func (r *Registry) PublisherFor(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	builder := r.builders[strings.ToLower(cfg.Type)]
	if builder == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	pub, err := builder(ctx, cfg, logger.Ensure(log))
	if err != nil {
		return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
	}
	if len(cfg.Categories) > 0 {
		pub = &filteredPublisher{Publisher: pub, cfg: cfg}
	}
	return pub, nil
}

// BuildAll instantiates publishers for cfgs. The first failure aborts and closes
// anything already built.
func BuildAll(ctx context.Context, reg *Registry, cfgs []PublisherConfig, log logger.Logger) ([]Publisher, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := reg.PublisherFor(ctx, cfg, log)
		if err != nil {
			CloseAll(pubs)
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// CloseAll releases publishers holding client connections.
func CloseAll(pubs []Publisher) {
	for _, p := range pubs {
		if c, ok := p.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}

// filteredPublisher drops events outside the configured categories.
type filteredPublisher struct {
	Publisher
	cfg PublisherConfig
}

func (f *filteredPublisher) Publish(ctx context.Context, evt Event) error {
	if !f.cfg.Accepts(evt.Article) {
		return nil
	}
	return f.Publisher.Publish(ctx, evt)
}

func (f *filteredPublisher) Close() error {
	if c, ok := f.Publisher.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
