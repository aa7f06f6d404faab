package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain"
)

const header = "title,link,summary,publisher,reporter,signal,collected_at\n"

func writeSource(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(header+strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func rec(link, title, summary, collectedAt string) domain.Record {
	return domain.Record{
		Title:       title,
		Link:        link,
		Summary:     summary,
		Publisher:   domain.Unknown,
		Reporter:    domain.Unknown,
		Signal:      domain.SignalFlat,
		CollectedAt: collectedAt,
	}
}

func summaries(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Summary
	}
	return out
}
