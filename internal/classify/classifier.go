// Package classify turns fetched page bodies into decision records and run
// statistics.
package classify

import (
	"strings"

	"github.com/ppiankov/decisync/internal/extract"
	"github.com/ppiankov/decisync/internal/model"
	"go.uber.org/zap"
)

// debugSnippetBytes bounds the body excerpt logged for structural pages
const debugSnippetBytes = 3000

// Classifier decides which bucket every fetched page lands in
type Classifier struct {
	extractor      extract.Extractor
	statuses       map[string]bool
	missingSummary model.MissingSummaryPolicy
	debug          bool
	logger         *zap.Logger
}

// NewClassifier creates a classifier from the classify settings
func NewClassifier(cfg model.ClassifyConfig, extractor extract.Extractor, debug bool, logger *zap.Logger) *Classifier {
	if extractor == nil {
		extractor = extract.NewStorageExtractor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	statuses := make(map[string]bool, len(cfg.KnownStatuses))
	for _, s := range cfg.KnownStatuses {
		statuses[strings.TrimSpace(s)] = true
	}

	policy := cfg.MissingSummary
	if policy == "" {
		policy = model.MissingSummaryExclude
	}

	return &Classifier{
		extractor:      extractor,
		statuses:       statuses,
		missingSummary: policy,
		debug:          debug,
		logger:         logger,
	}
}

// Classify processes outcomes sequentially, in the order given.
// Every outcome produces exactly one ledger entry; refs are expected to be
// unique.
func (c *Classifier) Classify(runID string, outcomes []model.FetchOutcome) *model.RunStatistics {
	stats := model.NewRunStatistics(runID, len(outcomes))

	for _, o := range outcomes {
		ref := o.Ref

		if o.Err != nil {
			c.logger.Warn("page fetch failed", zap.Int64("page_id", ref.ID), zap.Error(o.Err))
			stats.Errors = append(stats.Errors, o.Err.Error())
			stats.Ledger = append(stats.Ledger, model.LedgerEntry{Ref: ref, Bucket: model.BucketErrored, Detail: o.Err.Error()})
			continue
		}

		stats.Ledger = append(stats.Ledger, c.classifyOne(stats, ref, o.Body))
	}

	return stats
}

func (c *Classifier) classifyOne(stats *model.RunStatistics, ref model.DocumentRef, body string) model.LedgerEntry {
	log := c.logger.With(zap.Int64("page_id", ref.ID), zap.String("title", ref.Title))

	status := c.extractor.Status(body)
	if !c.statuses[status] {
		log.Info("SKIP structural page", zap.String("status", status))
		if c.debug {
			log.Debug("structural page body", zap.String("snippet", snippet(body)))
		}
		stats.SkippedStructural = append(stats.SkippedStructural, ref)
		return model.LedgerEntry{Ref: ref, Bucket: model.BucketStructural}
	}

	record := model.DecisionRecord{
		ID:             ref.ID,
		Title:          ref.Title,
		Status:         status,
		Classification: c.extractor.Classification(body),
		Bullets:        c.extractor.SummaryBullets(body),
	}

	if len(record.Bullets) == 0 {
		log.Info("SKIP decision without developer summary", zap.String("status", status))
		stats.SkippedNoSummary = append(stats.SkippedNoSummary, ref)
		if c.missingSummary == model.MissingSummaryInclude {
			stats.Decisions = append(stats.Decisions, record)
		}
		return model.LedgerEntry{Ref: ref, Bucket: model.BucketMissingSummary}
	}

	log.Info("OK decision",
		zap.String("classification", record.Classification.String()),
		zap.String("status", status),
		zap.Int("bullets", len(record.Bullets)))
	stats.Decisions = append(stats.Decisions, record)
	return model.LedgerEntry{Ref: ref, Bucket: model.BucketIncluded}
}

func snippet(body string) string {
	if len(body) <= debugSnippetBytes {
		return body
	}
	return body[:debugSnippetBytes]
}
