package dataset

import (
	"slices"
	"strings"
	"time"

	"NewsSignal/internal/domain"
)

type contentKey struct {
	title   string
	summary string
}

type survivor struct {
	record domain.Record
	at     time.Time
	parsed bool
	pos    int
}

// supersedes reports whether c replaces the incumbent s. The newer collected_at
// wins; an unparseable timestamp is older than any parseable one, and ties go
// to the later-loaded record.
func (c survivor) supersedes(s survivor) bool {
	switch {
	case c.parsed && s.parsed:
		return !c.at.Before(s.at)
	case c.parsed != s.parsed:
		return c.parsed
	default:
		return true
	}
}

// LinkKey returns the trimmed link, or "" when the record has no usable link.
func LinkKey(r domain.Record) string {
	link := strings.TrimSpace(r.Link)
	if domain.IsNullPlaceholder(link) {
		return ""
	}
	return link
}

// Deduplicate keeps one record per logical article. Linked records are keyed by
// link, linkless ones by (title, summary); the two groups never collide.
// Survivors are returned linked first, each group in load order of the winner.
func Deduplicate(records []domain.Record) ([]domain.Record, int) {
	linked := map[string]int{}
	unlinked := map[contentKey]int{}
	var withLink, withoutLink []survivor

	for pos, record := range records {
		at, err := domain.ParseCollectedAt(record.CollectedAt)
		candidate := survivor{record: record, at: at, parsed: err == nil, pos: pos}

		if key := LinkKey(record); key != "" {
			withLink = keep(withLink, linked, key, candidate)
			continue
		}
		withoutLink = keep(withoutLink, unlinked, contentKey{title: record.Title, summary: record.Summary}, candidate)
	}

	byPos := func(a, b survivor) int { return a.pos - b.pos }
	slices.SortFunc(withLink, byPos)
	slices.SortFunc(withoutLink, byPos)

	out := make([]domain.Record, 0, len(withLink)+len(withoutLink))
	for _, s := range withLink {
		out = append(out, s.record)
	}
	for _, s := range withoutLink {
		out = append(out, s.record)
	}
	return out, len(records) - len(out)
}

func keep[K comparable](group []survivor, index map[K]int, key K, candidate survivor) []survivor {
	i, ok := index[key]
	if !ok {
		index[key] = len(group)
		return append(group, candidate)
	}
	if candidate.supersedes(group[i]) {
		group[i] = candidate
	}
	return group
}
