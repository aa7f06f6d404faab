package domain

import (
	"strings"
	"time"
)

// Column names of the canonical dataset, in output order.
const (
	ColumnTitle       = "title"
	ColumnLink        = "link"
	ColumnSummary     = "summary"
	ColumnPublisher   = "publisher"
	ColumnReporter    = "reporter"
	ColumnSignal      = "signal"
	ColumnCollectedAt = "collected_at"
)

// Columns lists every required field. Partial collections must carry all of them.
var Columns = []string{
	ColumnTitle,
	ColumnLink,
	ColumnSummary,
	ColumnPublisher,
	ColumnReporter,
	ColumnSignal,
	ColumnCollectedAt,
}

// Unknown is the default publisher and reporter value.
const Unknown = "Unknown"

// CollectedAtLayout is the timestamp format written by the collector.
const CollectedAtLayout = "2006-01-02 15:04"

// Signal is the directional annotation attached to a record.
type Signal string

const (
	SignalBull Signal = "BULL"
	SignalBear Signal = "BEAR"
	SignalFlat Signal = "FLAT"
)

// Signals enumerates the valid values in display order.
var Signals = []Signal{SignalBull, SignalBear, SignalFlat}

// ParseSignal normalizes a raw value. Anything outside the enum becomes FLAT
// and is reported through a *FieldParseError.
func ParseSignal(raw string) (Signal, error) {
	switch s := Signal(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SignalBull, SignalBear, SignalFlat:
		return s, nil
	default:
		return SignalFlat, &FieldParseError{Field: ColumnSignal, Value: raw}
	}
}

// Record is one article with its annotation.
type Record struct {
	Title       string
	Link        string
	Summary     string
	Publisher   string
	Reporter    string
	Signal      Signal
	CollectedAt string
}

// Values returns the record fields in Columns order.
func (r Record) Values() []string {
	return []string{
		r.Title,
		r.Link,
		r.Summary,
		r.Publisher,
		r.Reporter,
		string(r.Signal),
		r.CollectedAt,
	}
}

// WithDefaults fills the fields that carry a documented default.
func (r Record) WithDefaults() Record {
	if strings.TrimSpace(r.Publisher) == "" {
		r.Publisher = Unknown
	}
	if strings.TrimSpace(r.Reporter) == "" {
		r.Reporter = Unknown
	}
	r.Signal, _ = ParseSignal(string(r.Signal))
	return r
}

// IsNullPlaceholder reports whether v is empty or a stringified null.
func IsNullPlaceholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "none", "null":
		return true
	default:
		return false
	}
}

var collectedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
}

// ParseCollectedAt parses the collection timestamp. Zone-less values are read as UTC.
func ParseCollectedAt(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value != "" {
		for _, layout := range collectedAtLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, &FieldParseError{Field: ColumnCollectedAt, Value: raw}
}

// BuildStats summarizes one canonical build.
type BuildStats struct {
	Sources     int
	Skipped     int
	Loaded      int
	Invalid     int
	Duplicates  int
	RowsWritten int
}
