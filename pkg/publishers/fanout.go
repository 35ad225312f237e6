package publishers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// defaultFanoutLimit caps concurrent deliveries per event.
const defaultFanoutLimit = 8

// Fanout dispatches each event to every publisher concurrently, at most limit
// deliveries at a time.
type Fanout struct {
	publishers []Publisher
	limit      int
}

// NewFanout builds a dispatcher over the non-nil publishers.
func NewFanout(pubs []Publisher) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			cp = append(cp, p)
		}
	}
	return &Fanout{publishers: cp, limit: defaultFanoutLimit}
}

// Publish forwards evt to every publisher and waits for all of them. It returns
// how many succeeded together with the joined errors of the rest.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	// A plain Group, not WithContext: one sink failing must not cancel the others.
	errs := make([]error, len(f.publishers))
	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, p := range f.publishers {
		g.Go(func() error {
			if err := p.Publish(ctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err)
				return errs[i]
			}
			return nil
		})
	}
	if g.Wait() == nil {
		return len(f.publishers), nil
	}

	successful := 0
	for _, err := range errs {
		if err == nil {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases every publisher that holds a connection.
func (f *Fanout) Close() {
	if f != nil {
		CloseAll(f.publishers)
	}
}
