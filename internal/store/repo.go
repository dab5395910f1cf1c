package store

import (
	"context"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// Repo defines storage operations for subscribers and delivery bookkeeping.
// It is the single writer of subscriber rows; other components request
// mutations through this interface only.
type Repo interface {
	// Subscribe inserts the chat or refreshes its subscribed_at. Idempotent.
	Subscribe(ctx context.Context, chatID int64) error
	// Unsubscribe removes the chat. No-op when absent.
	Unsubscribe(ctx context.Context, chatID int64) error
	// Get returns the subscriber or domain.ErrNotFound.
	Get(ctx context.Context, chatID int64) (*domain.Subscriber, error)
	// ListDue returns chat ids not yet delivered for day, each at most once.
	ListDue(ctx context.Context, day domain.Date) ([]int64, error)
	// MarkDelivered records a successful delivery for day. The stored date
	// only ever moves forward; the call reports whether it changed anything,
	// so retries and concurrent duplicates are safe.
	MarkDelivered(ctx context.Context, chatID int64, day domain.Date) (bool, error)
	Close() error
}
