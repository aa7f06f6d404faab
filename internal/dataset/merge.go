package dataset

import (
	"slices"
	"time"

	"NewsSignal/internal/domain"
)

// Order sorts records by collected_at, newest first. Records with an
// unparseable timestamp go last; ties keep their input order.
func Order(records []domain.Record) []domain.Record {
	type stamped struct {
		record domain.Record
		at     time.Time
		parsed bool
	}

	items := make([]stamped, len(records))
	for i, record := range records {
		at, err := domain.ParseCollectedAt(record.CollectedAt)
		items[i] = stamped{record: record, at: at, parsed: err == nil}
	}

	slices.SortStableFunc(items, func(a, b stamped) int {
		switch {
		case a.parsed && b.parsed:
			return b.at.Compare(a.at)
		case a.parsed:
			return -1
		case b.parsed:
			return 1
		default:
			return 0
		}
	})

	out := make([]domain.Record, len(items))
	for i, item := range items {
		out[i] = item.record
	}
	return out
}
