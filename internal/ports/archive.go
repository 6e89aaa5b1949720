package ports

import (
	"context"

	"energytrader/internal/domain"
)

// TradeArchive is the pluggable durable store for settled trades. The
// in-memory journal remains the authoritative in-process history; an
// archive receives a copy of every settled trade for durability and
// offline audit.
type TradeArchive interface {
	// SaveTrade persists a settled trade receipt and returns its assigned row ID.
	SaveTrade(ctx context.Context, receipt *domain.TradeReceipt) (int64, error)
	// RecentByUser retrieves the most recent archived trades where the user
	// appears as seller or buyer, up to a limit.
	RecentByUser(ctx context.Context, userID string, limit int) ([]*domain.TradeReceipt, error)
	// Close releases the underlying storage resources.
	Close() error
}
