package publishers

import "context"

// Publisher sends events to a downstream sink (webhook, queue or topic).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
