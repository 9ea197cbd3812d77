package model

import (
	"fmt"
	"strings"
	"time"
)

// MissingSummaryPolicy controls decisions that have no developer summary
type MissingSummaryPolicy string

const (
	// MissingSummaryExclude leaves the decision out of the rendered document
	MissingSummaryExclude MissingSummaryPolicy = "exclude"
	// MissingSummaryInclude renders the decision with an empty bullet list
	MissingSummaryInclude MissingSummaryPolicy = "include"
)

// Config is the complete, immutable configuration of a sync run
type Config struct {
	Confluence   ConfluenceConfig   `yaml:"confluence" mapstructure:"confluence"`
	Classify     ClassifyConfig     `yaml:"classify" mapstructure:"classify"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ConfluenceConfig locates the decision log in the content store
type ConfluenceConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Space    string `yaml:"space" mapstructure:"space"`
	RootID   int64  `yaml:"root_id" mapstructure:"root_id"`
	PageType string `yaml:"page_type" mapstructure:"page_type"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}

// PageURL returns the browser URL of a page
func (c ConfluenceConfig) PageURL(id int64) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if c.Space == "" {
		return fmt.Sprintf("%s/wiki/pages/viewpage.action?pageId=%d", base, id)
	}
	return fmt.Sprintf("%s/wiki/spaces/%s/pages/%d", base, c.Space, id)
}

// ClassifyConfig controls how fetched pages are classified
type ClassifyConfig struct {
	KnownStatuses        []string             `yaml:"known_statuses" mapstructure:"known_statuses"`
	MissingSummary       MissingSummaryPolicy `yaml:"missing_summary" mapstructure:"missing_summary"`
	FailOnMissingSummary bool                 `yaml:"fail_on_missing_summary" mapstructure:"fail_on_missing_summary"`
}

// Gate returns the run gate derived from the classify settings
func (c ClassifyConfig) Gate() Gate {
	return Gate{FailOnMissingSummary: c.FailOnMissingSummary}
}

// HTTPConfig controls requests against the content store
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Retries      int           `yaml:"retries" mapstructure:"retries"` // 0 disables retries
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ConcurrencyConfig bounds the body fetch fan-out
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig configures the per-host token bucket (0 disables it)
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig configures the optional page body cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls the rendered artifacts
type OutputConfig struct {
	Path              string `yaml:"path" mapstructure:"path"`
	Title             string `yaml:"title" mapstructure:"title"`
	RegenerateCommand string `yaml:"regenerate_command" mapstructure:"regenerate_command"`
	StatsJSON         string `yaml:"stats_json,omitempty" mapstructure:"stats_json"`
	StepSummary       string `yaml:"step_summary,omitempty" mapstructure:"step_summary"`
	Verbose           bool   `yaml:"verbose" mapstructure:"verbose"`
	Debug             bool   `yaml:"debug" mapstructure:"debug"`
}

// DefaultKnownStatuses are the status values that mark a page as a decision
func DefaultKnownStatuses() []string {
	return []string{"Accepted", "Proposed", "Draft", "Deprecated"}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Confluence: ConfluenceConfig{
			PageType: "page",
			PageSize: 50,
		},
		Classify: ClassifyConfig{
			KnownStatuses:  DefaultKnownStatuses(),
			MissingSummary: MissingSummaryExclude,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "decisync/0.1 (+https://github.com/ppiankov/decisync)",
			MaxBodyBytes: 10_000_000,
			RetryBackoff: 2 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 8,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 10,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Dir:       ".decisync-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   time.Hour,
		},
		Output: OutputConfig{
			Path:              ".claude/rules/decisions.md",
			Title:             "Decision Log — Developer AI Reference",
			RegenerateCommand: "decisync sync",
		},
	}
}

// Validate checks the configuration before any network activity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Confluence.BaseURL) == "" {
		return fmt.Errorf("confluence base URL is required")
	}
	if c.Confluence.RootID <= 0 {
		return fmt.Errorf("confluence root id must be positive, got %d", c.Confluence.RootID)
	}
	if c.Confluence.PageSize < 1 || c.Confluence.PageSize > 250 {
		return fmt.Errorf("page size must be between 1 and 250, got %d", c.Confluence.PageSize)
	}
	if len(c.Classify.KnownStatuses) == 0 {
		return fmt.Errorf("at least one known status is required")
	}
	switch c.Classify.MissingSummary {
	case MissingSummaryExclude, MissingSummaryInclude:
	default:
		return fmt.Errorf("unknown missing summary policy %q (want %q or %q)",
			c.Classify.MissingSummary, MissingSummaryExclude, MissingSummaryInclude)
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.HTTP.Retries)
	}
	return nil
}
