package csvstore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain"
)

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		{
			Title:       "\"서울\" 아파트값, 3주 연속 상승",
			Link:        "https://n.news.naver.com/article/001/0014000000",
			Summary:     "요약 문장입니다.\nRegion: 서울\nKeyword: 아파트\nSignal: BULL",
			Publisher:   "연합뉴스",
			Reporter:    "홍길동",
			Signal:      domain.SignalBull,
			CollectedAt: "2024-05-01 08:30",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}), "output starts with a UTF-8 BOM")

	table, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, domain.Columns, table.Header)

	got, missing := Records(table)
	require.Empty(t, missing)
	assert.Equal(t, records, got)
}

func TestReadKeepsCRLFInsideQuotedFields(t *testing.T) {
	t.Parallel()

	input := "\ufefftitle,link,summary,publisher,reporter,signal,collected_at\r\n" +
		"T,https://x/1,\"line1\r\nline2\",Pub,Rep,BULL,2024-01-01 00:00\r\n" +
		"U,https://x/2,plain,Pub,Rep,BEAR,2024-01-02 00:00\r\n"

	table, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	records, missing := Records(table)
	require.Empty(t, missing)
	require.Len(t, records, 2)
	assert.Equal(t, "line1\r\nline2", records[0].Summary)
	assert.Equal(t, "2024-01-01 00:00", records[0].CollectedAt)
	assert.Equal(t, "plain", records[1].Summary)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))
	again, err := Read(&buf)
	require.NoError(t, err)
	roundTripped, _ := Records(again)
	assert.Equal(t, records, roundTripped)
}

func TestReadWithoutBOM(t *testing.T) {
	t.Parallel()

	table, err := Read(strings.NewReader(" title ,link\na,b\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "link"}, table.Header)
	assert.Equal(t, 1, table.Index("link"))
	assert.Equal(t, -1, table.Index("summary"))
}

func TestReadRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
}

func TestRecordsReportsMissingColumns(t *testing.T) {
	t.Parallel()

	records, missing := Records(Table{Header: []string{"title", "link", "summary"}})

	assert.Nil(t, records)
	assert.Equal(t, []string{"publisher", "reporter", "signal", "collected_at"}, missing)
}

func TestStageFileCommitAndAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out", "news_data_latest.csv")

	staged, err := StageFile(path, nil)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "staging must not touch the destination")

	require.NoError(t, staged.Commit())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufefftitle,link,summary,publisher,reporter,signal,collected_at\n", string(data))

	aborted, err := StageFile(path, []domain.Record{{Title: "x", Summary: "y"}})
	require.NoError(t, err)
	require.NoError(t, aborted.Abort())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "x,")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
