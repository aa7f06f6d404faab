package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain"
)

func TestDeleteStatement(t *testing.T) {
	t.Parallel()

	query, args, err := deleteStatement("news_latest").ToSql()
	require.NoError(t, err)

	assert.Equal(t, `DELETE FROM "news_latest"`, query)
	assert.Empty(t, args)
}

func TestInsertStatementsBatchesRows(t *testing.T) {
	t.Parallel()

	records := make([]domain.Record, insertBatchSize+2)
	for i := range records {
		records[i] = domain.Record{
			Title:       fmt.Sprintf("title %d", i),
			Link:        fmt.Sprintf("https://x/%d", i),
			Summary:     "s",
			Publisher:   domain.Unknown,
			Reporter:    domain.Unknown,
			Signal:      domain.SignalFlat,
			CollectedAt: "2024-01-01 00:00",
		}
	}

	batches := insertStatements("news_latest", records)
	require.Len(t, batches, 2)

	query, args, err := batches[1].ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "news_latest" (position,title,link,summary,publisher,reporter,signal,collected_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8),($9,$10,$11,$12,$13,$14,$15,$16)`,
		query)
	require.Len(t, args, 16)
	assert.Equal(t, insertBatchSize, args[0])
	assert.Equal(t, "https://x/501", args[10])
}

func TestInsertStatementsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, insertStatements("news_latest", nil))
}

func TestCreateTableStatementQuotesIdentifier(t *testing.T) {
	t.Parallel()

	assert.Contains(t, createTableStatement(`weird"name`), `"weird""name"`)
}

func TestStageWithoutDatabase(t *testing.T) {
	t.Parallel()

	snapshot := NewPostgresSnapshot(nil, "news_latest")
	_, err := snapshot.Stage(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, "postgres:news_latest", snapshot.Name())
}
