package cart

import "context"

// Store is the cart persistence boundary. Implementations are keyed by an
// owner key (a user id for durable carts, a guest token for session carts).
//
// Load returns the stored cart and its version, or an empty cart at version
// zero when nothing is stored. Save writes the cart only if the stored
// version still matches the one the caller read, returning ErrConflict when
// another writer got there first. Every mutation is a strict
// read-modify-write through this pair; blind overwrites are not possible.
type Store interface {
	Load(ctx context.Context, key string) (*Cart, int64, error)
	Save(ctx context.Context, key string, cart *Cart, version int64) error
	Delete(ctx context.Context, key string) error
}
