package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/ppiankov/decisync/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".decisync", "config.yaml")

	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Decisync Configuration File")
	assert.Contains(t, string(data), "CONFLUENCE_API_TOKEN")

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Output.Path, cfg.Output.Path)
	assert.Equal(t, model.DefaultConfig().HTTP.Timeout, cfg.HTTP.Timeout)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("confluence.base_url", "https://acme.atlassian.net")
	viper.Set("confluence.root_id", int64(4242))
	viper.Set("classify.missing_summary", "include")
	viper.Set("http.timeout", "5s")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://acme.atlassian.net", cfg.Confluence.BaseURL)
	assert.EqualValues(t, 4242, cfg.Confluence.RootID)
	assert.Equal(t, model.MissingSummaryInclude, cfg.Classify.MissingSummary)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 8, cfg.Concurrency.Workers, "unset keys keep defaults")
}

func TestLoadConfig_Invalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("confluence.base_url", "https://acme.atlassian.net")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root id")
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("CONFLUENCE_EMAIL", "dev@example.com")
	t.Setenv("CONFLUENCE_API_TOKEN", "secret")
	t.Setenv("CONFLUENCE_AUTH_HEADER", "")

	creds := credentialsFromEnv()
	header, err := creds.AuthorizationHeader()
	require.NoError(t, err)
	assert.Equal(t, "Basic ZGV2QGV4YW1wbGUuY29tOnNlY3JldA==", header)
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	stats := model.NewRunStatistics("run-7", 3)
	stats.SkippedNoSummary = append(stats.SkippedNoSummary, model.DocumentRef{ID: 2, Title: "Half done"})
	stats.Decisions = append(stats.Decisions, model.DecisionRecord{ID: 1, Title: "Logging"})
	stats.OutputWritten = true

	var buf bytes.Buffer
	printSummary(&buf, stats, "out.md", 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "Discovered:        3")
	assert.Contains(t, out, "Decisions:         1")
	assert.Contains(t, out, "! Half done (2) has no developer summary")
	assert.Contains(t, out, "✓ Wrote out.md (1.5s, run run-7)")
}

func TestPrintSummary_Errors(t *testing.T) {
	color.NoColor = true

	stats := model.NewRunStatistics("run-8", 1)
	stats.Errors = append(stats.Errors, "fetching page 9: boom")

	var buf bytes.Buffer
	printSummary(&buf, stats, "out.md", time.Second)

	out := buf.String()
	assert.Contains(t, out, "✗ fetching page 9: boom")
	assert.Contains(t, out, "✗ out.md not updated: 1 page(s) failed")
}

func TestCacheClear(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entry.json"), []byte("{}"), 0644))

	require.NoError(t, cacheClearCmd.Flags().Set("cache-dir", dir))
	require.NoError(t, cacheClearCmd.RunE(cacheClearCmd, nil))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "expected cache dir to be removed, stat err = %v", err)
}
