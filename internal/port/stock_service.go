package port

import "context"

// StockService is the remote source of truth for stock counts. Each call is
// idempotent per invocation and returns the authoritative new value, which
// may differ from what the client proposed (the server clamps at zero).
type StockService interface {
	// SetStock persists an absolute stock value.
	SetStock(ctx context.Context, itemID string, value int) (int, error)

	// ApplyDelta applies a signed change against the server's current value.
	ApplyDelta(ctx context.Context, itemID string, delta int) (int, error)

	// GetStock reads the current authoritative value. Used to re-sync after
	// a failed write. Missing items read as zero.
	GetStock(ctx context.Context, itemID string) (int, error)
}
