package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsSignal/internal/domain"
)

func TestValidateDropsEmptySummaries(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		rec("a", "t", "kept", ""),
		rec("b", "t", "", ""),
		rec("c", "t", "   ", ""),
		rec("d", "t", "nan", ""),
		rec("e", "t", "None", ""),
		rec("f", "t", "NULL", ""),
		rec("g", "t", "nanny state", ""),
	}

	valid, dropped := Validate(records)

	assert.Equal(t, 5, dropped)
	assert.Equal(t, []string{"kept", "nanny state"}, summaries(valid))
}
