package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg := Load("")

	assert.Equal(t, "news_data*.csv", cfg.Dataset.Pattern)
	assert.Equal(t, []string{"news_data.csv", "news_data_latest.csv"}, cfg.Dataset.Outputs)
	assert.Equal(t, []string{"news_data_latest.csv"}, cfg.Dataset.Exclude)
	assert.Equal(t, defaultGeminiModel, cfg.Gemini.Model)
	assert.Equal(t, 20, cfg.Collector.TargetCount)
	assert.NotNil(t, cfg.Collector.Location())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newssignal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
dataset:
  root: /data/news
  outputs: [latest.csv]
search:
  query: 전세 시장
  excludeKeywords: [정치, 사건]
collector:
  targetCount: 5
  timezone: UTC
scheduler:
  interval: 90m
gemini:
  apiKey: from-file
`), 0o644))

	t.Setenv(geminiAPIKeyEnv, "from-env")
	t.Setenv(naverClientIDEnv, "client")

	cfg := Load(path)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/data/news", cfg.Dataset.Root)
	assert.Equal(t, []string{"latest.csv"}, cfg.Dataset.Outputs)
	assert.Equal(t, "news_data*.csv", cfg.Dataset.Pattern, "unset keys keep defaults")
	assert.Equal(t, "전세 시장", cfg.Search.Query)
	assert.Equal(t, []string{"정치", "사건"}, cfg.Search.ExcludeKeywords)
	assert.Equal(t, 5, cfg.Collector.TargetCount)
	assert.Equal(t, time.UTC.String(), cfg.Collector.Location().String())
	assert.Equal(t, 90*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, "client", cfg.Search.Naver.ClientID)
}

func TestLoadFallsBackOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: [unclosed"), 0o644))

	cfg := Load(path)

	assert.Equal(t, defaultConfig().Dataset, cfg.Dataset)
}

func TestDatasetPath(t *testing.T) {
	t.Parallel()

	d := DatasetConfig{Root: "/data/news", CanonicalFile: "news_data_latest.csv"}

	assert.Equal(t, "/data/news/news_data_latest.csv", d.CanonicalPath())
	assert.Equal(t, "/tmp/out.csv", d.Path("/tmp/out.csv"))
}
