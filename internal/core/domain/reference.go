package domain

import (
	"context"
	"time"
)

// ReferenceTTL is the sliding expiry window of a locally cached swap
// reference, measured from the moment it was saved. It is independent
// of the swap's remote lifecycle.
const ReferenceTTL = 7 * 24 * time.Hour

// SwapReference is the minimal local record linking a remotely owned
// swap to this device. It is written once per swap and never mutated,
// only re-saved, expired or deleted.
type SwapReference struct {
	SwapID        string
	BeneficiaryID string
	SavedAt       time.Time
}

// Expired reports whether the reference fell out of the 7-day window at
// the given instant.
func (r SwapReference) Expired(now time.Time) bool {
	return now.Sub(r.SavedAt) >= ReferenceTTL
}

// SwapReferenceRepository stores the swap references created from this
// device. Reads prune expired entries as a persisted side effect, so a
// second List with no intervening Save returns the same result.
type SwapReferenceRepository interface {
	// Save upserts the reference keyed by its swap id, replacing the
	// saved-at timestamp when the id is already present.
	Save(ctx context.Context, ref SwapReference) error
	// List returns the non-expired references, optionally filtered by
	// beneficiary id when the argument is non-empty.
	List(ctx context.Context, beneficiaryID string, now time.Time) ([]SwapReference, error)
	// Get returns the non-expired reference for a swap id, or nil when
	// absent.
	Get(ctx context.Context, swapID string, now time.Time) (*SwapReference, error)
	// Remove deletes the reference for a swap id and reports whether
	// one was found.
	Remove(ctx context.Context, swapID string) (bool, error)
	// Clear removes all references unconditionally.
	Clear(ctx context.Context) error
	Close()
}
