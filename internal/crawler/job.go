package crawler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescribe/internal/model"
)

// progressBuffer is the capacity of a Job's progress channel.
const progressBuffer = 64

// Job is a crawl running in the background.
type Job struct {
	group    *errgroup.Group
	progress chan model.ProgressSnapshot
	result   *model.CrawlResult
}

// Start runs Crawl in a new goroutine and returns immediately.
//
// Snapshots are delivered on Progress in processing order. The channel is
// bounded: when it is full the crawl waits for the consumer. It is closed
// when the crawl ends.
func (s *Spider) Start(ctx context.Context, seed string) *Job {
	j := &Job{
		group:    new(errgroup.Group),
		progress: make(chan model.ProgressSnapshot, progressBuffer),
	}

	j.group.Go(func() error {
		defer close(j.progress)

		result, err := s.Crawl(ctx, seed, func(p model.ProgressSnapshot) {
			select {
			case j.progress <- p:
			case <-ctx.Done():
			}
		})
		j.result = result
		return err
	})

	return j
}

// Progress returns the channel of progress snapshots.
func (j *Job) Progress() <-chan model.ProgressSnapshot {
	return j.progress
}

// Wait blocks until the crawl ends and returns what Crawl returned.
// Snapshots not yet received from Progress are discarded.
// Wait may be called more than once.
func (j *Job) Wait() (*model.CrawlResult, error) {
	for range j.progress { //nolint:revive // drain so the crawl never blocks on a full channel
	}
	err := j.group.Wait()
	return j.result, err
}
