package export

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexport/nexport/pkg/errors"
	"github.com/nexport/nexport/pkg/observability"
)

// Options configures a full export run.
type Options struct {
	// Root is the output directory; artifacts land at Root/<repository>/<path>.
	Root string

	// Concurrency caps simultaneous downloads within one repository.
	Concurrency int

	// Retries and Backoff shape the retry policy for listing pages and
	// individual transfers.
	Retries int
	Backoff time.Duration

	// Repositories restricts the run to the named repositories.
	// Empty means every repository on the server.
	Repositories []string

	// DryRun walks the listings and reports what would be downloaded
	// without writing any artifact.
	DryRun bool

	// Server is recorded in the report for reference.
	Server string
}

// Runner exports every selected repository of a server and assembles the
// final report. Repositories run sequentially; the download concurrency
// ceiling applies within each.
type Runner struct {
	source Source
	opts   Options
}

// NewRunner creates a Runner. Zero-valued options get defaults: output
// root "export", concurrency 5, 3 retries with 1s initial backoff.
func NewRunner(source Source, opts Options) *Runner {
	if opts.Root == "" {
		opts.Root = "export"
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 5
	}
	if opts.Retries < 0 {
		opts.Retries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Runner{source: source, opts: opts}
}

// Run exports all selected repositories and returns the assembled report.
// A repository whose listing fails is recorded as incomplete and does not
// stop the run; authentication failures and cancellation do, because every
// further request would fail the same way. On early termination the report
// built so far is returned together with the error that stopped the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Server:    r.opts.Server,
		Root:      r.opts.Root,
		DryRun:    r.opts.DryRun,
		StartedAt: time.Now(),
	}

	names, err := r.source.Repositories(ctx)
	if err != nil {
		report.FinishedAt = time.Now()
		return report, err
	}
	names, err = selectRepositories(names, r.opts.Repositories)
	if err != nil {
		report.FinishedAt = time.Now()
		return report, err
	}

	hooks := observability.Export()
	hooks.OnRunStart(ctx, report.RunID, r.opts.Server, len(names))

	coord := Coordinator{
		Source:  r.source,
		Root:    r.opts.Root,
		Workers: r.opts.Concurrency,
		Retries: r.opts.Retries,
		Backoff: r.opts.Backoff,
		DryRun:  r.opts.DryRun,
	}

	var runErr error
	for _, name := range names {
		sum, err := coord.Export(ctx, name)
		report.add(sum)
		if err == nil {
			continue
		}
		if errors.IsFatal(err) || ctx.Err() != nil {
			runErr = err
			break
		}
		// Listing failures short of fatal abort only this repository.
	}

	report.FinishedAt = time.Now()
	hooks.OnRunComplete(ctx, report.RunID, report.Duration(), runErr)
	return report, runErr
}

// selectRepositories filters available down to the requested names,
// preserving server order. Requesting a repository the server does not
// have is an error; a typo must not silently export nothing.
func selectRepositories(available, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return available, nil
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}

	var selected []string
	for _, name := range available {
		if want[name] {
			selected = append(selected, name)
			delete(want, name)
		}
	}
	if len(want) > 0 {
		missing := slices.Sorted(maps.Keys(want))
		return nil, errors.New(errors.ErrCodeRepositoryNotFound,
			"repository not found on server: %s", strings.Join(missing, ", "))
	}
	return selected, nil
}
