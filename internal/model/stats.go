package model

// Bucket records where a discovered page ended up
type Bucket string

const (
	BucketIncluded       Bucket = "included"
	BucketStructural     Bucket = "structural"
	BucketMissingSummary Bucket = "missing_summary"
	BucketErrored        Bucket = "errored"

	// BucketDuplicate marks a repeated discovery result that was not fetched
	BucketDuplicate Bucket = "duplicate"
)

// LedgerEntry accounts for a single discovered page
type LedgerEntry struct {
	Ref    DocumentRef `json:"ref"`
	Bucket Bucket      `json:"bucket"`
	Detail string      `json:"detail,omitempty"`
}

// RunStatistics aggregates the outcome of one sync run.
// It is built once per run and consumed by the summary emitters.
type RunStatistics struct {
	RunID             string           `json:"run_id"`
	Discovered        int              `json:"discovered"`
	SkippedStructural []DocumentRef    `json:"skipped_structural"`
	SkippedNoSummary  []DocumentRef    `json:"skipped_no_summary"`
	Decisions         []DecisionRecord `json:"decisions"`
	Errors            []string         `json:"errors"`
	// Ledger holds one entry per discovered result, duplicates included
	Ledger            []LedgerEntry    `json:"ledger"`
	OutputWritten     bool             `json:"output_written"`
}

// NewRunStatistics creates empty statistics for a run
func NewRunStatistics(runID string, discovered int) *RunStatistics {
	return &RunStatistics{
		RunID:             runID,
		Discovered:        discovered,
		SkippedStructural: []DocumentRef{},
		SkippedNoSummary:  []DocumentRef{},
		Decisions:         []DecisionRecord{},
		Errors:            []string{},
		Ledger:            make([]LedgerEntry, 0, discovered),
	}
}

// RecordDuplicates accounts for discovery results dropped as repeats
func (s *RunStatistics) RecordDuplicates(refs []DocumentRef) {
	for _, ref := range refs {
		s.Discovered++
		s.Ledger = append(s.Ledger, LedgerEntry{Ref: ref, Bucket: BucketDuplicate, Detail: "repeated in discovery"})
	}
}

// Gate decides which conditions fail a run
type Gate struct {
	// FailOnMissingSummary fails the run when any decision lacks a summary
	FailOnMissingSummary bool
}

// Failed reports whether the run outcome is a failure under the given gate
func (s *RunStatistics) Failed(gate Gate) bool {
	if len(s.Errors) > 0 {
		return true
	}
	return gate.FailOnMissingSummary && len(s.SkippedNoSummary) > 0
}

// Count returns how many ledger entries landed in the bucket
func (s *RunStatistics) Count(b Bucket) int {
	n := 0
	for _, e := range s.Ledger {
		if e.Bucket == b {
			n++
		}
	}
	return n
}
