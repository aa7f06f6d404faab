// Package board prepares the canonical dataset for display: each row gets its
// parsed annotation, facets are derived, and rows are filtered by selection.
package board

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"NewsSignal/internal/annotation"
	"NewsSignal/internal/domain"
	"NewsSignal/internal/infrastructure/csvstore"
)

// Row is one canonical record plus the fields derived from its summary.
type Row struct {
	domain.Record
	Region  string
	Keyword string
	Display string
}

// Facet names a filterable dimension.
type Facet string

const (
	FacetPublisher Facet = "publisher"
	FacetReporter  Facet = "reporter"
	FacetRegion    Facet = "region"
	FacetKeyword   Facet = "keyword"
	FacetSignal    Facet = "signal"
)

// AllFacets lists facets in display order.
var AllFacets = []Facet{FacetPublisher, FacetReporter, FacetRegion, FacetKeyword, FacetSignal}

// Selection maps a facet to the accepted values. Values within a facet are
// alternatives; facets combine with AND. Empty facets accept everything.
type Selection map[Facet][]string

// Load reads the canonical file. A missing file is an empty board.
func Load(path string) ([]Row, error) {
	table, err := csvstore.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.SourceReadError{Path: path, Err: err}
	}
	records, missing := csvstore.Records(table)
	if len(missing) > 0 {
		return nil, &domain.SourceReadError{Path: path, Missing: missing}
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewRow(r.WithDefaults()))
	}
	return rows, nil
}

// NewRow annotates a record with its parsed summary.
func NewRow(r domain.Record) Row {
	ann := annotation.Parse(r.Summary)
	return Row{Record: r, Region: ann.Region, Keyword: ann.Keyword, Display: ann.Display}
}

// Value returns the row's value for facet f.
func (r Row) Value(f Facet) string {
	switch f {
	case FacetPublisher:
		return r.Publisher
	case FacetReporter:
		return r.Reporter
	case FacetRegion:
		return r.Region
	case FacetKeyword:
		return r.Keyword
	case FacetSignal:
		return string(r.Signal)
	default:
		panic(fmt.Sprintf("board: unknown facet %q", f))
	}
}

// Facets returns the sorted distinct non-empty values per facet.
func Facets(rows []Row) map[Facet][]string {
	out := make(map[Facet][]string, len(AllFacets))
	for _, f := range AllFacets {
		seen := make(map[string]struct{})
		values := []string{}
		for _, r := range rows {
			v := r.Value(f)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		slices.Sort(values)
		out[f] = values
	}
	return out
}

// Filter keeps rows matching every non-empty facet of sel, preserving order.
func Filter(rows []Row, sel Selection) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if sel.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Selection) matches(r Row) bool {
	for f, accepted := range s {
		if len(accepted) == 0 {
			continue
		}
		if !slices.Contains(accepted, r.Value(f)) {
			return false
		}
	}
	return true
}

// ParseFacet validates a facet name.
func ParseFacet(name string) (Facet, error) {
	f := Facet(name)
	if slices.Contains(AllFacets, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown facet %q", name)
}
