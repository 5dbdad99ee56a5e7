package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const refDir = "references"

type swapReferenceRepository struct {
	store *badgerhold.Store
}

func NewSwapReferenceRepository(
	baseDir string, logger badger.Logger,
) (domain.SwapReferenceRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, refDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap reference store: %s", err)
	}
	return &swapReferenceRepository{store}, nil
}

// Save upserts by swap id. Swap ids are globally unique, so at most one
// reference can exist per id regardless of beneficiary.
func (r *swapReferenceRepository) Save(ctx context.Context, ref domain.SwapReference) error {
	data := toReferenceData(ref)
	if err := r.store.Upsert(data.SwapID, data); err != nil {
		return fmt.Errorf("failed to save swap reference: %w", err)
	}
	return nil
}

func (r *swapReferenceRepository) List(
	ctx context.Context, beneficiaryID string, now time.Time,
) ([]domain.SwapReference, error) {
	valid, err := r.pruneExpired(now)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.SwapReference, 0, len(valid))
	for _, data := range valid {
		ref := data.toReference()
		if beneficiaryID != "" && ref.BeneficiaryID != beneficiaryID {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (r *swapReferenceRepository) Get(
	ctx context.Context, swapID string, now time.Time,
) (*domain.SwapReference, error) {
	var data referenceData
	err := r.store.Get(swapID, &data)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swap reference: %w", err)
	}

	ref := data.toReference()
	if ref.Expired(now) {
		if err := r.store.Delete(swapID, referenceData{}); err != nil {
			return nil, fmt.Errorf("failed to prune swap reference: %w", err)
		}
		return nil, nil
	}
	return &ref, nil
}

func (r *swapReferenceRepository) Remove(ctx context.Context, swapID string) (bool, error) {
	err := r.store.Delete(swapID, referenceData{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove swap reference: %w", err)
	}
	return true, nil
}

func (r *swapReferenceRepository) Clear(ctx context.Context) error {
	if err := r.store.DeleteMatching(referenceData{}, nil); err != nil {
		return fmt.Errorf("failed to clear swap references: %w", err)
	}
	return nil
}

func (r *swapReferenceRepository) Close() {
	// nolint:all
	r.store.Close()
}

// pruneExpired removes references older than the 7-day window and
// returns the surviving ones. Expiry is enforced lazily on every read,
// there is no background sweep.
func (r *swapReferenceRepository) pruneExpired(now time.Time) ([]referenceData, error) {
	var all []referenceData
	if err := r.store.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list swap references: %w", err)
	}

	valid := all[:0]
	for _, data := range all {
		if data.toReference().Expired(now) {
			if err := r.store.Delete(data.SwapID, referenceData{}); err != nil {
				return nil, fmt.Errorf("failed to prune swap reference: %w", err)
			}
			continue
		}
		valid = append(valid, data)
	}
	return valid, nil
}

type referenceData struct {
	SwapID        string
	BeneficiaryID string
	SavedAt       int64
}

func toReferenceData(ref domain.SwapReference) referenceData {
	return referenceData{
		SwapID:        ref.SwapID,
		BeneficiaryID: ref.BeneficiaryID,
		SavedAt:       ref.SavedAt.UnixMilli(),
	}
}

func (d referenceData) toReference() domain.SwapReference {
	return domain.SwapReference{
		SwapID:        d.SwapID,
		BeneficiaryID: d.BeneficiaryID,
		SavedAt:       time.UnixMilli(d.SavedAt),
	}
}
