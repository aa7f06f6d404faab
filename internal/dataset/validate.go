package dataset

import "NewsSignal/internal/domain"

// Validate drops records whose summary is empty or a stringified null.
func Validate(records []domain.Record) ([]domain.Record, int) {
	valid := make([]domain.Record, 0, len(records))
	for _, record := range records {
		if domain.IsNullPlaceholder(record.Summary) {
			continue
		}
		valid = append(valid, record)
	}
	return valid, len(records) - len(valid)
}
