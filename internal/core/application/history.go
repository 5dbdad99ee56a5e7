package application

import (
	"sort"
	"strconv"
	"time"

	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/minmo-hq/offrampd/pkg/minmo"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

type Sort string

const (
	SortNewest     Sort = "newest"
	SortOldest     Sort = "oldest"
	SortAmountHigh Sort = "amount_high"
	SortAmountLow  Sort = "amount_low"
)

// HistoryRecord is a remote swap snapshot joined with the local
// reference metadata that proved it belongs to this device.
type HistoryRecord struct {
	minmo.Swap
	BeneficiaryID string    `json:"beneficiaryId"`
	SavedAt       time.Time `json:"savedAt"`
}

// FilterRecords returns the records matching the filter. Pending means
// not completed, cancelled or disputed. The input is not mutated.
func FilterRecords(records []HistoryRecord, filter Filter) []HistoryRecord {
	switch filter {
	case FilterCompleted:
		out := make([]HistoryRecord, 0, len(records))
		for _, rec := range records {
			if domain.State(rec.State) == domain.StateCompleted {
				out = append(out, rec)
			}
		}
		return out
	case FilterPending:
		out := make([]HistoryRecord, 0, len(records))
		for _, rec := range records {
			if domain.State(rec.State).IsPending() {
				out = append(out, rec)
			}
		}
		return out
	default:
		out := make([]HistoryRecord, len(records))
		copy(out, records)
		return out
	}
}

// SortRecords returns a sorted copy of the records. The input is not
// mutated, so the same inputs always yield the same output.
func SortRecords(records []HistoryRecord, by Sort) []HistoryRecord {
	sorted := make([]HistoryRecord, len(records))
	copy(sorted, records)

	switch by {
	case SortOldest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})
	case SortAmountHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return fiatAmount(sorted[i]) > fiatAmount(sorted[j])
		})
	case SortAmountLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return fiatAmount(sorted[i]) < fiatAmount(sorted[j])
		})
	default: // newest first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}
	return sorted
}

func fiatAmount(rec HistoryRecord) float64 {
	amount, err := strconv.ParseFloat(rec.FiatAmount, 64)
	if err != nil {
		return 0
	}
	return amount
}
