// Package storage keeps the ledger of articles the notifier has already published.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Ledger records which article ids were published for a region. Entries expire
// after the configured TTL so long-lived ledgers stay bounded.
type Ledger interface {
	Close() error
	Published(region, id string) (bool, error)
	Record(region, id string) error
}

// Options controls retention for concrete ledgers.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

const (
	TypeBolt = "bbolt"
	TypeNone = "none"

	defaultTTL             = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// Open creates the configured ledger backend.
func Open(typ, path string, opts Options) (Ledger, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopLedger{}, nil
	case TypeBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt ledger requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// noopLedger never remembers anything, so every article counts as new.
type noopLedger struct{}

func (noopLedger) Close() error                           { return nil }
func (noopLedger) Published(string, string) (bool, error) { return false, nil }
func (noopLedger) Record(string, string) error            { return nil }
