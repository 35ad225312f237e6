package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/market-news-desk/internal/config"
	"github.com/samvad-hq/market-news-desk/internal/domain"
	"github.com/samvad-hq/market-news-desk/internal/feed"
	"github.com/samvad-hq/market-news-desk/internal/logger"
	"github.com/samvad-hq/market-news-desk/internal/storage"
	"github.com/samvad-hq/market-news-desk/pkg/publishers"
)

const defaultNotifyInterval = 5 * time.Minute

// feedSource is the part of feed.Service the notifier needs.
type feedSource interface {
	GetFeed(ctx context.Context, req feed.Request) (domain.FeedResponse, error)
}

// eventSink is the part of publishers.Fanout the notifier needs.
type eventSink interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Notifier recomputes the feed on an interval and publishes articles that were
// not published before for the same region.
type Notifier struct {
	feeds         feedSource
	sink          eventSink
	ledger        storage.Ledger
	regions       []domain.Region
	providerNames map[string]string
	interval      time.Duration
	log           logger.Logger
	now           func() time.Time
	closers       []func()
}

// PassStats summarizes one notifier pass.
type PassStats struct {
	Articles  int
	Published int
	Skipped   int
	Failed    int
}

// NewNotifier builds a notifier runtime from config files.
func NewNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (*Notifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	regions, err := parseRegions(cfg.NotifyRegions)
	if err != nil {
		return nil, err
	}

	pipeline, err := buildFeedPipeline(cfg, log)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(pipeline.providers))
	for _, p := range pipeline.providers {
		names[p.ID] = p.Name
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubs)

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	ledger, err := storage.Open(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	n := newNotifier(pipeline.service, fanout, ledger, regions, cfg.NotifyInterval, log)
	n.providerNames = names
	n.closers = append(n.closers, fanout.Close)
	return n, nil
}

func newNotifier(feeds feedSource, sink eventSink, ledger storage.Ledger, regions []domain.Region, interval time.Duration, log logger.Logger) *Notifier {
	if len(regions) == 0 {
		regions = []domain.Region{domain.RegionAll}
	}
	if interval <= 0 {
		interval = defaultNotifyInterval
	}
	return &Notifier{
		feeds:         feeds,
		sink:          sink,
		ledger:        ledger,
		regions:       regions,
		providerNames: map[string]string{},
		interval:      interval,
		log:           logger.Ensure(log),
		now:           time.Now,
	}
}

func parseRegions(raw []string) ([]domain.Region, error) {
	out := make([]domain.Region, 0, len(raw))
	seen := make(map[domain.Region]bool, len(raw))
	for _, r := range raw {
		region, err := feed.ParseRegion(r)
		if err != nil {
			return nil, fmt.Errorf("notify_regions: %w", err)
		}
		if !seen[region] {
			seen[region] = true
			out = append(out, region)
		}
	}
	return out, nil
}

// Run executes a pass immediately and then on every tick until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	if n == nil || n.feeds == nil || n.sink == nil {
		return fmt.Errorf("notifier is not initialized")
	}
	defer n.close()

	n.log.InfoObj("notifier loop starting", "notifier_state", map[string]any{
		"regions":          n.regions,
		"publishers_count": n.sink.Size(),
		"interval":         n.interval.String(),
	})

	n.runOnce(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.log.InfoObj("notifier loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			n.runOnce(ctx)
		}
	}
}

// runOnce walks every configured region. Region failures are logged and do not
// stop the pass.
func (n *Notifier) runOnce(ctx context.Context) PassStats {
	start := n.now()
	var total PassStats
	for _, region := range n.regions {
		if ctx.Err() != nil {
			break
		}
		stats, err := n.publishRegion(ctx, region)
		if err != nil {
			n.log.ErrorObj("notifier region pass failed", "notifier_error", map[string]any{
				"region": string(region),
				"error":  err.Error(),
			})
		}
		total.Articles += stats.Articles
		total.Published += stats.Published
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
	}

	n.log.InfoObj("notifier pass completed", "notifier_pass", map[string]any{
		"articles":   total.Articles,
		"published":  total.Published,
		"skipped":    total.Skipped,
		"failed":     total.Failed,
		"elapsed_ms": n.now().Sub(start).Milliseconds(),
	})
	return total
}

// publishRegion sends unseen articles of one region feed. An article is recorded
// in the ledger once at least one sink accepted it, so a total delivery failure
// is retried on the next pass.
func (n *Notifier) publishRegion(ctx context.Context, region domain.Region) (PassStats, error) {
	var stats PassStats

	resp, err := n.feeds.GetFeed(ctx, feed.Request{Region: string(region)})
	if err != nil {
		return stats, fmt.Errorf("get feed: %w", err)
	}
	if resp.Error != "" {
		n.log.WarnObj("feed returned no articles", "notifier_feed", map[string]any{
			"region": string(region),
			"error":  resp.Error,
		})
	}

	stats.Articles = len(resp.Articles)
	for _, art := range resp.Articles {
		seen, err := n.ledger.Published(string(region), art.ID)
		if err != nil {
			return stats, fmt.Errorf("ledger lookup: %w", err)
		}
		if seen {
			stats.Skipped++
			continue
		}

		evt := publishers.NewEvent(art, n.providerName(art.Provider), n.now())
		delivered, err := n.sink.Publish(ctx, evt)
		if err != nil {
			n.log.WarnObj("article delivery incomplete", "notifier_delivery", map[string]any{
				"article_id": art.ID,
				"delivered":  delivered,
				"error":      err.Error(),
			})
		}
		if delivered == 0 {
			stats.Failed++
			continue
		}

		if err := n.ledger.Record(string(region), art.ID); err != nil {
			return stats, fmt.Errorf("ledger record: %w", err)
		}
		stats.Published++
	}
	return stats, nil
}

func (n *Notifier) providerName(id string) string {
	if name, ok := n.providerNames[id]; ok && name != "" {
		return name
	}
	return id
}

func (n *Notifier) close() {
	for _, c := range n.closers {
		c()
	}
	if n.ledger == nil {
		return
	}
	if err := n.ledger.Close(); err != nil {
		n.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
