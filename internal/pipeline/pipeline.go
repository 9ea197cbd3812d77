// Package pipeline wires discovery, fetching, classification and rendering
// into a single sync run.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ppiankov/decisync/internal/cache"
	"github.com/ppiankov/decisync/internal/classify"
	"github.com/ppiankov/decisync/internal/confluence"
	"github.com/ppiankov/decisync/internal/model"
	"github.com/ppiankov/decisync/internal/render"
	"github.com/ppiankov/decisync/internal/worker"
	"go.uber.org/zap"
)

// ErrRunFailed is returned by callers when a finished run did not pass its gate
var ErrRunFailed = errors.New("sync run failed")

// Discoverer lists the pages under a root
type Discoverer interface {
	DiscoverAll(ctx context.Context, root int64) ([]model.DocumentRef, error)
}

// Pipeline orchestrates one sync run
type Pipeline struct {
	discoverer Discoverer
	fetcher    worker.BodyFetcher
	renderer   *render.Renderer
	config     *model.Config
	logger     *zap.Logger
	newRunID   func() string
}

// New creates a pipeline from explicit collaborators
func New(cfg *model.Config, discoverer Discoverer, fetcher worker.BodyFetcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		discoverer: discoverer,
		fetcher:    fetcher,
		renderer: render.NewRenderer(render.Options{
			Title:                 cfg.Output.Title,
			RegenerateCommand:     cfg.Output.RegenerateCommand,
			PageURL:               cfg.Confluence.PageURL,
			IncludeMissingSummary: cfg.Classify.MissingSummary == model.MissingSummaryInclude,
		}),
		config:   cfg,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// NewPipeline creates a pipeline talking to Confluence with the given credentials
func NewPipeline(cfg *model.Config, creds confluence.Credentials, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	client, err := confluence.NewClient(cfg, creds, limiter, logger)
	if err != nil {
		return nil, err
	}

	var fetcher worker.BodyFetcher = client
	if cfg.Cache.Enabled {
		store := newStore(cfg)
		// zero ttl lets each layer apply its own expiry
		fetcher = cache.NewCachingFetcher(client, store, cfg.Confluence.BaseURL, 0, logger)
	}

	return New(cfg, client, fetcher, logger), nil
}

func newStore(cfg *model.Config) *cache.Layered {
	return cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
}

// ClearCache removes every cached page body
func ClearCache(cfg *model.Config) error {
	if err := newStore(cfg).Clear(); err != nil {
		return fmt.Errorf("clear cache %s: %w", cfg.Cache.Dir, err)
	}
	return nil
}

// Renderer returns the renderer used for the document and summaries
func (p *Pipeline) Renderer() *render.Renderer {
	return p.renderer
}

// Result is the outcome of a completed run
type Result struct {
	Document string
	Stats    *model.RunStatistics
}

// Failed reports whether the run did not pass the gate
func (r *Result) Failed(gate model.Gate) bool {
	return r.Stats.Failed(gate)
}

// Run performs discovery, fetches every page body and renders the document.
// A discovery failure aborts the run before any body is fetched; per-page
// failures are recorded in the statistics instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := p.newRunID()
	logger := p.logger.With(zap.String("run_id", runID))

	root := p.config.Confluence.RootID
	logger.Info("discovering pages", zap.Int64("root_id", root))

	refs, err := p.discoverer.DiscoverAll(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("discover pages: %w", err)
	}
	refs, duplicates := dedupe(refs, logger)
	logger.Info("pages discovered", zap.Int("count", len(refs)), zap.Int("duplicates", len(duplicates)))

	outcomes := worker.FetchAll(ctx, p.fetcher, refs, p.config.Concurrency.Workers)

	classifier := classify.NewClassifier(p.config.Classify, nil, p.config.Output.Debug, logger)
	stats := classifier.Classify(runID, outcomes)
	stats.RecordDuplicates(duplicates)

	logger.Info("run classified",
		zap.Int("decisions", len(stats.Decisions)),
		zap.Int("structural", len(stats.SkippedStructural)),
		zap.Int("missing_summary", len(stats.SkippedNoSummary)),
		zap.Int("errors", len(stats.Errors)))

	return &Result{
		Document: p.renderer.Document(stats.Decisions),
		Stats:    stats,
	}, nil
}

// dedupe drops repeated page ids, keeping the first occurrence
func dedupe(refs []model.DocumentRef, logger *zap.Logger) (unique, duplicates []model.DocumentRef) {
	seen := make(map[int64]bool, len(refs))
	unique = make([]model.DocumentRef, 0, len(refs))
	for _, ref := range refs {
		if seen[ref.ID] {
			logger.Warn("duplicate page in discovery", zap.Int64("page_id", ref.ID), zap.String("title", ref.Title))
			duplicates = append(duplicates, ref)
			continue
		}
		seen[ref.ID] = true
		unique = append(unique, ref)
	}
	return unique, duplicates
}
