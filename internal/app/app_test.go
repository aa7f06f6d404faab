package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSignal/internal/config"
)

func loadTestConfig(t *testing.T, yaml string) config.Config {
	t.Helper()
	for _, env := range []string{"NEWSSIGNAL_ROOT", "GEMINI_API_KEY", "DATABASE_DSN", "PUSHGATEWAY_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(env, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return config.Load(path)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildWritesConfiguredOutputs(t *testing.T) {
	root := t.TempDir()
	cfg := loadTestConfig(t, "dataset:\n  root: "+root+"\n")

	application, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer application.Close()

	report, err := application.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Stats.RowsWritten)
	assert.Equal(t, []string{filepath.Join(root, "news_data.csv"), filepath.Join(root, "news_data_latest.csv")}, report.Targets)

	assert.FileExists(t, filepath.Join(root, "news_data.csv"))
	assert.FileExists(t, application.CanonicalPath())
}

func TestUnknownProviderOnlyFailsCollection(t *testing.T) {
	cfg := loadTestConfig(t, "dataset:\n  root: "+t.TempDir()+"\nsearch:\n  provider: bing\ngemini:\n  apiKey: key\n")

	application, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer application.Close()

	_, err = application.Build(context.Background())
	require.NoError(t, err)

	_, err = application.Collect(context.Background())
	assert.ErrorContains(t, err, "bing")
	assert.ErrorContains(t, application.CollectEvery(context.Background(), 0), "bing")
}

func TestCollectRequiresAPIKey(t *testing.T) {
	cfg := loadTestConfig(t, "dataset:\n  root: "+t.TempDir()+"\n")

	application, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	_, err = application.Collect(context.Background())
	assert.ErrorContains(t, err, "gemini api key")
	assert.Error(t, application.CollectEvery(context.Background(), 0))
}
