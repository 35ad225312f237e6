package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	rootBucket = "published"
	expiryLen  = 8
)

// boltLedger stores one nested bucket per region under rootBucket. Values are
// big-endian unix expiry seconds.
type boltLedger struct {
	db              *bolt.DB
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu          sync.Mutex
	lastCleanup time.Time
}

func openBolt(path string, opts Options) (*boltLedger, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger bucket: %w", err)
	}

	return &boltLedger{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             opts.Now,
		lastCleanup:     opts.Now(),
	}, nil
}

func (b *boltLedger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Published reports whether id is recorded and unexpired for region.
func (b *boltLedger) Published(region, id string) (bool, error) {
	now := b.now()
	if err := b.maybePrune(now); err != nil {
		return false, err
	}

	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(rootBucket)).Bucket([]byte(region))
		if bucket == nil {
			return nil
		}
		expiry, ok := decodeExpiry(bucket.Get([]byte(id)))
		found = ok && expiry.After(now)
		return nil
	})
	return found, err
}

// Record marks id as published for region until now+TTL.
func (b *boltLedger) Record(region, id string) error {
	now := b.now()
	if err := b.maybePrune(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket([]byte(rootBucket)).CreateBucketIfNotExists([]byte(region))
		if err != nil {
			return fmt.Errorf("region bucket %q: %w", region, err)
		}
		return bucket.Put([]byte(id), encodeExpiry(now.Add(b.ttl)))
	})
}

// maybePrune deletes expired ids across all regions at most once per cleanup interval.
func (b *boltLedger) maybePrune(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Sub(b.lastCleanup) < b.cleanupInterval {
		return nil
	}

	if _, err := b.prune(now); err != nil {
		return err
	}
	b.lastCleanup = now
	return nil
}

func (b *boltLedger) prune(now time.Time) (int, error) {
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		return root.ForEachBucket(func(name []byte) error {
			cursor := root.Bucket(name).Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				expiry, ok := decodeExpiry(v)
				if ok && expiry.After(now) {
					continue
				}
				if err := cursor.Delete(); err != nil {
					return err
				}
				removed++
			}
			return nil
		})
	})
	return removed, err
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryLen)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryLen {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
