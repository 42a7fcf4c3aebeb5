// Package dedup holds the seen-identifier stores used for duplicate
// detection. Stores grow monotonically: identifiers are added on acceptance
// and never evicted for the lifetime of the backing state.
package dedup

import (
	"context"
)

// Store records previously accepted order identifiers.
//
// Add performs the check-then-insert as one atomic operation: it returns
// true when the identifier was not present and has now been recorded, and
// false when a prior submission already claimed it. Two concurrent Add
// calls with the same new identifier must yield exactly one true.
type Store interface {
	Add(ctx context.Context, id string) (bool, error)
	Len(ctx context.Context) (int, error)
}
