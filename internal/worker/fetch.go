package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/decisync/internal/model"
)

// BodyFetcher retrieves the markup body of a single page
type BodyFetcher interface {
	FetchBody(ctx context.Context, ref model.DocumentRef) (string, error)
}

// FetchJob fetches one page body
type FetchJob struct {
	Index   int
	Ref     model.DocumentRef
	Fetcher BodyFetcher
}

// Execute executes the fetch job
func (j *FetchJob) Execute(ctx context.Context) Result {
	body, err := j.Fetcher.FetchBody(ctx, j.Ref)
	return &FetchResult{
		Index:   j.Index,
		Outcome: model.FetchOutcome{Ref: j.Ref, Body: body, Err: err},
	}
}

// FetchResult carries the outcome of a fetch job and its discovery position
type FetchResult struct {
	Index   int
	Outcome model.FetchOutcome
}

// GetError returns the error from the fetch outcome
func (r *FetchResult) GetError() error {
	return r.Outcome.Err
}

// FetchAll fetches every ref concurrently and waits until all have settled.
// The returned outcomes line up with refs; a ref whose job never ran (the
// context was cancelled first) gets an error outcome, so none is lost.
func FetchAll(ctx context.Context, fetcher BodyFetcher, refs []model.DocumentRef, workers int) []model.FetchOutcome {
	outcomes := make([]model.FetchOutcome, len(refs))
	if len(refs) == 0 {
		return outcomes
	}

	pool := NewPool(ctx, workers, len(refs))
	pool.Start()

	for i, ref := range refs {
		pool.Submit(&FetchJob{Index: i, Ref: ref, Fetcher: fetcher})
	}

	settled := make([]bool, len(refs))
	for _, result := range pool.Wait() {
		r := result.(*FetchResult)
		outcomes[r.Index] = r.Outcome
		settled[r.Index] = true
	}

	for i, ok := range settled {
		if ok {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		outcomes[i] = model.FetchOutcome{
			Ref: refs[i],
			Err: fmt.Errorf("fetching page %d: not attempted: %w", refs[i].ID, err),
		}
	}

	return outcomes
}
