package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/ppiankov/decisync/internal/confluence"
	"github.com/ppiankov/decisync/internal/model"
	"github.com/ppiankov/decisync/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the decision log into the AI reference document",
	Long: `Sync discovers every page under the Decision Log root, reads the Status
and Classification of each decision, collects the bullets under its
"AI Summary — Developer" heading and writes one grouped markdown document.

The document is only written when every page was fetched successfully.

Credentials are read from the environment:
  CONFLUENCE_EMAIL + CONFLUENCE_API_TOKEN   basic auth
  CONFLUENCE_AUTH_HEADER                    full Authorization header value

Example:
  decisync sync --base-url https://acme.atlassian.net --space DL --root 123456
  decisync sync --root 123456 --output docs/decisions.md --stats-json stats.json`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	d := model.DefaultConfig()
	f := syncCmd.Flags()

	// Confluence flags
	f.String("base-url", d.Confluence.BaseURL, "Confluence site URL, e.g. https://acme.atlassian.net")
	f.String("space", d.Confluence.Space, "space key used to build page links")
	f.Int64("root", d.Confluence.RootID, "page id of the Decision Log root")
	f.String("page-type", d.Confluence.PageType, "content type to discover")
	f.Int("page-size", d.Confluence.PageSize, "results per discovery request")

	// Classification flags
	f.StringSlice("statuses", d.Classify.KnownStatuses, "status values that mark a decision page")
	f.String("missing-summary", string(d.Classify.MissingSummary), "decisions without a developer summary: exclude or include")
	f.Bool("fail-on-missing-summary", d.Classify.FailOnMissingSummary, "fail the run when any decision lacks a developer summary")

	// HTTP flags
	f.Duration("timeout", d.HTTP.Timeout, "per-request timeout")
	f.String("ua", d.HTTP.UserAgent, "HTTP User-Agent")
	f.Int("retries", d.HTTP.Retries, "retries for transient failures (0 disables)")
	f.Duration("retry-backoff", d.HTTP.RetryBackoff, "wait between retries")
	f.Int("workers", d.Concurrency.Workers, "concurrent page fetches")
	f.Float64("rps", d.RateLimiting.RequestsPerSecond, "requests per second to the site (0 disables the limit)")
	f.Bool("cache", d.Cache.Enabled, "cache page bodies between local runs")
	f.String("cache-dir", d.Cache.Dir, "page body cache directory")

	// Output flags
	f.StringP("output", "o", d.Output.Path, "rendered document path")
	f.String("stats-json", d.Output.StatsJSON, "write run statistics as JSON to this path")
	f.String("step-summary", os.Getenv("GITHUB_STEP_SUMMARY"), "append a markdown run summary to this file")
	f.Bool("debug", d.Output.Debug, "log body snippets of structural pages")

	bindFlags(f, map[string]string{
		"base-url":                "confluence.base_url",
		"space":                   "confluence.space",
		"root":                    "confluence.root_id",
		"page-type":               "confluence.page_type",
		"page-size":               "confluence.page_size",
		"statuses":                "classify.known_statuses",
		"missing-summary":         "classify.missing_summary",
		"fail-on-missing-summary": "classify.fail_on_missing_summary",
		"timeout":                 "http.timeout",
		"ua":                      "http.user_agent",
		"retries":                 "http.retries",
		"retry-backoff":           "http.retry_backoff",
		"workers":                 "concurrency.workers",
		"rps":                     "rate_limiting.requests_per_second",
		"cache":                   "cache.enabled",
		"cache-dir":               "cache.dir",
		"output":                  "output.path",
		"stats-json":              "output.stats_json",
		"step-summary":            "output.step_summary",
		"debug":                   "output.debug",
	})
}

func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// credentialsFromEnv reads the Confluence credentials
func credentialsFromEnv() confluence.Credentials {
	return confluence.Credentials{
		Email:  os.Getenv("CONFLUENCE_EMAIL"),
		Token:  os.Getenv("CONFLUENCE_API_TOKEN"),
		Header: os.Getenv("CONFLUENCE_AUTH_HEADER"),
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	creds := credentialsFromEnv()
	p, err := pipeline.NewPipeline(cfg, creds, logger)
	if err != nil {
		if errors.Is(err, confluence.ErrMissingCredentials) {
			return fmt.Errorf("%w: set CONFLUENCE_EMAIL and CONFLUENCE_API_TOKEN, or CONFLUENCE_AUTH_HEADER", err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s (root %d)\n", cyan("⚙️  Syncing decisions from"), cfg.Confluence.BaseURL, cfg.Confluence.RootID)

	start := time.Now()
	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if _, err := pipeline.Publish(result, cfg.Output.Path); err != nil {
		return err
	}

	if cfg.Output.StatsJSON != "" {
		if err := pipeline.WriteStatsJSON(result, cfg.Output.StatsJSON); err != nil {
			return err
		}
	}

	if cfg.Output.StepSummary != "" {
		summary := p.Renderer().StepSummary(result.Stats, cfg.Output.Path)
		if err := pipeline.AppendStepSummary(cfg.Output.StepSummary, summary); err != nil {
			logger.Warn("step summary not written", zap.Error(err))
		}
	}

	printSummary(os.Stderr, result.Stats, cfg.Output.Path, time.Since(start))

	if result.Failed(cfg.Classify.Gate()) {
		return pipeline.ErrRunFailed
	}
	return nil
}
