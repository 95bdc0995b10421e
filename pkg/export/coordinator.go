package export

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/nexport/nexport/pkg/observability"
)

// Coordinator drives the export of one repository end to end: it pulls
// descriptors from the listing, filters already-complete files through the
// checker, schedules the rest onto a bounded worker pool, and folds every
// outcome into a Summary.
type Coordinator struct {
	Source  Source
	Root    string
	Workers int
	Retries int
	Backoff time.Duration
	DryRun  bool
}

// Export processes every artifact of repository. The returned summary
// accounts for each listed descriptor exactly once, regardless of
// completion order. A non-nil error means the listing stopped early; the
// summary is then marked incomplete but still covers everything listed
// before the failure.
func (c Coordinator) Export(ctx context.Context, repository string) (Summary, error) {
	start := time.Now()
	hooks := observability.Export()
	hooks.OnRepositoryStart(ctx, repository)

	workers := max(c.Workers, 1)
	checker := Checker{Root: c.Root}
	worker := Downloader{Fetcher: c.Source, Root: c.Root, Retries: c.Retries, Backoff: c.Backoff}

	jobs := make(chan Descriptor, workers*2)
	results := make(chan Outcome, workers*2)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				results <- c.download(ctx, worker, d)
			}
		}()
	}

	// The feeder walks the listing sequentially, emitting immediate
	// outcomes for artifacts that need no download and submitting the rest
	// to the pool. Closing jobs after the walk lets the workers drain and
	// exit; listErr is only read after the results channel closes.
	var listErr error
	go func() {
		defer close(jobs)
		pager := c.Source.List(repository)
		for {
			if err := ctx.Err(); err != nil {
				listErr = err
				return
			}
			d, err := pager.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				listErr = err
				return
			}
			if out, submit := c.admit(ctx, checker, d); !submit {
				results <- out
			} else {
				select {
				case jobs <- d:
				case <-ctx.Done():
					// The descriptor was listed, so it still owes an
					// outcome even though it never reached the pool.
					listErr = ctx.Err()
					hooks.OnArtifactFailed(ctx, d.Repository, d.Path, listErr)
					results <- Outcome{Descriptor: d, Status: StatusFailed, Error: listErr.Error()}
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	sum := Summary{Repository: repository}
	for out := range results {
		sum.add(out)
	}
	sum.Elapsed = time.Since(start)
	if listErr != nil {
		sum.Incomplete = true
		sum.Error = listErr.Error()
	}

	hooks.OnRepositoryComplete(ctx, repository,
		sum.Downloaded, sum.Skipped, sum.Failed, sum.Bytes, sum.Elapsed, listErr)
	return sum, listErr
}

// admit routes one descriptor: already-complete files, checker failures and
// dry-run planning produce an immediate outcome, everything else goes to
// the download pool.
func (c Coordinator) admit(ctx context.Context, checker Checker, d Descriptor) (Outcome, bool) {
	hooks := observability.Export()

	complete, err := checker.Complete(d)
	if err != nil {
		hooks.OnArtifactFailed(ctx, d.Repository, d.Path, err)
		return Outcome{Descriptor: d, Status: StatusFailed, Error: err.Error()}, false
	}
	if complete {
		hooks.OnArtifactComplete(ctx, d.Repository, d.Path, StatusSkipped, 0, 0)
		return Outcome{Descriptor: d, Status: StatusSkipped}, false
	}
	if c.DryRun {
		hooks.OnArtifactComplete(ctx, d.Repository, d.Path, StatusPlanned, 0, 0)
		return Outcome{Descriptor: d, Status: StatusPlanned}, false
	}
	return Outcome{}, true
}

func (c Coordinator) download(ctx context.Context, worker Downloader, d Descriptor) Outcome {
	hooks := observability.Export()
	hooks.OnArtifactStart(ctx, d.Repository, d.Path)

	start := time.Now()
	n, err := worker.Download(ctx, d)
	if err != nil {
		hooks.OnArtifactFailed(ctx, d.Repository, d.Path, err)
		return Outcome{Descriptor: d, Status: StatusFailed, Error: err.Error()}
	}
	hooks.OnArtifactComplete(ctx, d.Repository, d.Path, StatusDownloaded, n, time.Since(start))
	return Outcome{Descriptor: d, Status: StatusDownloaded, Bytes: n}
}
