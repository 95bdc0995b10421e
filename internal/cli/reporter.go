package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nexport/nexport/pkg/export"
	"github.com/nexport/nexport/pkg/observability"
)

// progressInterval is how often the reporter logs a progress line during
// a run.
const progressInterval = 5 * time.Second

// Reporter narrates an export run on the terminal: one line per
// repository, a periodic progress line while downloads are in flight, and
// a warning for every failed artifact. Artifact events arrive from worker
// goroutines, so all counters are atomics.
type Reporter struct {
	logger   *log.Logger
	interval time.Duration

	listed     atomic.Int64
	downloaded atomic.Int64
	skipped    atomic.Int64
	planned    atomic.Int64
	failed     atomic.Int64
	bytes      atomic.Int64

	started time.Time
	quit    chan struct{}
}

// NewReporter creates a reporter logging through logger.
func NewReporter(logger *log.Logger) *Reporter {
	return &Reporter{logger: logger, interval: progressInterval}
}

func (r *Reporter) OnRunStart(_ context.Context, runID, server string, repositories int) {
	r.started = time.Now()
	r.quit = make(chan struct{})
	printInfo("Exporting %d repositories from %s", repositories, StyleHighlight.Render(server))
	r.logger.Debug("run started", "run_id", runID)
	go r.loop()
}

func (r *Reporter) OnRunComplete(_ context.Context, runID string, duration time.Duration, err error) {
	if r.quit != nil {
		close(r.quit)
	}
	if err != nil {
		r.logger.Error("run aborted", "run_id", runID, "after", formatDuration(duration), "error", err)
	}
}

func (r *Reporter) OnRepositoryStart(_ context.Context, repository string) {
	printInfo("Exporting %s", StyleHighlight.Render(repository))
}

func (r *Reporter) OnRepositoryComplete(_ context.Context, repository string, downloaded, skipped, failed int, bytes int64, duration time.Duration, err error) {
	switch {
	case err != nil:
		printWarning("%s: incomplete: %v", repository, err)
	case failed > 0:
		printWarning("%s: %d downloaded, %d skipped, %d failed (%s in %s)",
			repository, downloaded, skipped, failed, formatBytes(bytes), formatDuration(duration))
	default:
		printSuccess("%s: %d downloaded, %d skipped (%s in %s)",
			repository, downloaded, skipped, formatBytes(bytes), formatDuration(duration))
	}
}

func (r *Reporter) OnListingPage(_ context.Context, repository string, artifacts int) {
	r.listed.Add(int64(artifacts))
	r.logger.Debug("listing page", "repository", repository, "artifacts", artifacts)
}

func (r *Reporter) OnArtifactStart(_ context.Context, repository, path string) {
	r.logger.Debug("downloading", "artifact", repository+"/"+path)
}

func (r *Reporter) OnArtifactComplete(_ context.Context, repository, path, status string, bytes int64, duration time.Duration) {
	switch status {
	case export.StatusDownloaded:
		r.downloaded.Add(1)
		r.bytes.Add(bytes)
		r.logger.Debug("downloaded", "artifact", repository+"/"+path,
			"size", formatBytes(bytes), "in", formatDuration(duration))
	case export.StatusSkipped:
		r.skipped.Add(1)
	case export.StatusPlanned:
		r.planned.Add(1)
	}
}

func (r *Reporter) OnArtifactFailed(_ context.Context, repository, path string, err error) {
	r.failed.Add(1)
	r.logger.Warn("artifact failed", "artifact", repository+"/"+path, "error", err)
}

// loop logs a progress line at every interval until the run completes.
func (r *Reporter) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.logProgress()
		}
	}
}

func (r *Reporter) logProgress() {
	bytes := r.bytes.Load()
	r.logger.Info("progress",
		"listed", r.listed.Load(),
		"downloaded", r.downloaded.Load(),
		"skipped", r.skipped.Load(),
		"failed", r.failed.Load(),
		"data", formatBytes(bytes),
		"rate", formatRate(bytes, time.Since(r.started)))
}

var _ observability.ExportHooks = (*Reporter)(nil)
