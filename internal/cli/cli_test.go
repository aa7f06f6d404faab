package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/infrastructure/csvstore"
)

func setupCLITest(t *testing.T) (root, configPath string) {
	t.Helper()
	for _, env := range []string{"NEWSSIGNAL_ROOT", "NEWSSIGNAL_CONFIG", "GEMINI_API_KEY", "DATABASE_DSN", "PUSHGATEWAY_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(env, "")
	}
	root = t.TempDir()
	configPath = filepath.Join(t.TempDir(), "newssignal.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("dataset:\n  root: "+root+"\n"), 0o644))
	return root, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommandPrintsReport(t *testing.T) {
	root, configPath := setupCLITest(t)
	require.NoError(t, csvstore.WriteFile(filepath.Join(root, "news_data_20250101_090000.csv"), []domain.Record{
		{Title: "a", Link: "https://x/1", Summary: "요약", Publisher: "p", Reporter: "r", Signal: domain.SignalBull, CollectedAt: "2025-01-01 09:00"},
		{Title: "a", Link: "https://x/1", Summary: "요약 new", Publisher: "p", Reporter: "r", Signal: domain.SignalBull, CollectedAt: "2025-01-01 10:00"},
	}))

	out, err := execute(t, "build", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "source_files=1\n - "+filepath.Join(root, "news_data_20250101_090000.csv")+"\nrows_written=1\n", out)
	assert.FileExists(t, filepath.Join(root, "news_data_latest.csv"))
}

func TestCollectCommandRequiresAPIKey(t *testing.T) {
	_, configPath := setupCLITest(t)

	_, err := execute(t, "collect", "--config", configPath)
	assert.ErrorContains(t, err, "gemini api key")
}

func TestShowCommandFiltersRows(t *testing.T) {
	root, configPath := setupCLITest(t)
	require.NoError(t, csvstore.WriteFile(filepath.Join(root, "news_data_latest.csv"), []domain.Record{
		{Title: "강남 상승", Link: "https://x/1", Summary: "요약\nRegion: 서울", Publisher: "매일경제", Reporter: "r", Signal: domain.SignalBull, CollectedAt: "2025-01-02 09:00"},
		{Title: "부산 하락", Link: "https://x/2", Summary: "요약\nRegion: 부산", Publisher: "한국경제", Reporter: "r", Signal: domain.SignalBear, CollectedAt: "2025-01-01 09:00"},
	}))

	out, err := execute(t, "show", "--config", configPath, "--no-color", "--signal", "bull")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "total 1 / 2\n"))
	assert.Contains(t, out, "강남 상승")
	assert.NotContains(t, out, "부산 하락")

	out, err = execute(t, "show", "--config", configPath, "--facets")
	require.NoError(t, err)
	assert.Contains(t, out, "publisher (2): 매일경제, 한국경제\n")
	assert.Contains(t, out, "region (2): 부산, 서울\n")
	assert.Contains(t, out, "signal (2): BEAR, BULL\n")
}

func TestShowCommandEmptyDataset(t *testing.T) {
	_, configPath := setupCLITest(t)

	out, err := execute(t, "show", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "total 0 / 0\n", out)
}
