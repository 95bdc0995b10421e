// Package status serves a live view of a running export over HTTP.
//
// A [Tracker] consumes export events through the observability hooks and
// folds them into a snapshot; a [Server] exposes that snapshot as JSON.
// Operators point monitoring at the status address to watch long exports
// without attaching to the terminal.
//
// # Endpoints
//
//	GET /healthz                          liveness probe
//	GET /api/status                       full run snapshot
//	GET /api/status/repositories/{name}   one repository's progress
//
// The tracker reports "idle" until the run actually starts; a run that
// fails during repository enumeration never leaves that state.
package status

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nexport/nexport/pkg/export"
	"github.com/nexport/nexport/pkg/observability"
)

// Run and repository states reported in snapshots.
const (
	StateIdle       = "idle"
	StateRunning    = "running"
	StateComplete   = "complete"
	StateFailed     = "failed"
	StateIncomplete = "incomplete"
)

// Snapshot is the JSON shape served at /api/status.
type Snapshot struct {
	State        string       `json:"state"`
	RunID        string       `json:"run_id,omitempty"`
	Server       string       `json:"server,omitempty"`
	StartedAt    time.Time    `json:"started_at,omitzero"`
	FinishedAt   time.Time    `json:"finished_at,omitzero"`
	Repositories []Repository `json:"repositories"`
	Totals       Counters     `json:"totals"`
	Error        string       `json:"error,omitempty"`
}

// Repository is one repository's progress within a run.
type Repository struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	Listed     int    `json:"listed"`
	Active     int    `json:"active"`
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	Planned    int    `json:"planned,omitempty"`
	Failed     int    `json:"failed"`
	Bytes      int64  `json:"bytes"`
	Error      string `json:"error,omitempty"`
}

// Counters aggregates progress across all repositories of the run.
type Counters struct {
	Repositories int   `json:"repositories"`
	Listed       int   `json:"listed"`
	Downloaded   int   `json:"downloaded"`
	Skipped      int   `json:"skipped"`
	Planned      int   `json:"planned,omitempty"`
	Failed       int   `json:"failed"`
	Bytes        int64 `json:"bytes"`
}

// Tracker folds export events into a queryable snapshot. It implements
// observability.ExportHooks and is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	snap  Snapshot
	index map[string]int
}

// NewTracker creates a tracker in the idle state.
func NewTracker() *Tracker {
	return &Tracker{
		snap:  Snapshot{State: StateIdle},
		index: make(map[string]int),
	}
}

// Snapshot returns a copy of the current run state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.snap
	snap.Repositories = slices.Clone(t.snap.Repositories)
	return snap
}

// Repository returns the progress of one repository by name.
func (t *Tracker) Repository(name string) (Repository, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[name]
	if !ok {
		return Repository{}, false
	}
	return t.snap.Repositories[i], true
}

// repo returns a pointer to the tracked repository, registering it if the
// start event was never observed. Callers must hold t.mu.
func (t *Tracker) repo(name string) *Repository {
	i, ok := t.index[name]
	if !ok {
		i = len(t.snap.Repositories)
		t.index[name] = i
		t.snap.Repositories = append(t.snap.Repositories, Repository{Name: name, State: StateRunning})
	}
	return &t.snap.Repositories[i]
}

func (t *Tracker) OnRunStart(_ context.Context, runID, server string, repositories int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Snapshot{
		State:     StateRunning,
		RunID:     runID,
		Server:    server,
		StartedAt: time.Now(),
		Totals:    Counters{Repositories: repositories},
	}
	t.index = make(map[string]int)
}

func (t *Tracker) OnRunComplete(_ context.Context, runID string, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.FinishedAt = time.Now()
	if err != nil {
		t.snap.State = StateFailed
		t.snap.Error = err.Error()
		return
	}
	t.snap.State = StateComplete
}

func (t *Tracker) OnRepositoryStart(_ context.Context, repository string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.repo(repository)
}

func (t *Tracker) OnRepositoryComplete(_ context.Context, repository string, downloaded, skipped, failed int, bytes int64, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.repo(repository)
	r.Downloaded = downloaded
	r.Skipped = skipped
	r.Failed = failed
	r.Bytes = bytes
	r.Active = 0
	if err != nil {
		r.State = StateIncomplete
		r.Error = err.Error()
		return
	}
	r.State = StateComplete
}

func (t *Tracker) OnListingPage(_ context.Context, repository string, artifacts int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.repo(repository).Listed += artifacts
	t.snap.Totals.Listed += artifacts
}

func (t *Tracker) OnArtifactStart(_ context.Context, repository, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.repo(repository).Active++
}

func (t *Tracker) OnArtifactComplete(_ context.Context, repository, path, status string, bytes int64, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.repo(repository)
	switch status {
	case export.StatusDownloaded:
		r.Active--
		r.Downloaded++
		r.Bytes += bytes
		t.snap.Totals.Downloaded++
		t.snap.Totals.Bytes += bytes
	case export.StatusSkipped:
		r.Skipped++
		t.snap.Totals.Skipped++
	case export.StatusPlanned:
		r.Planned++
		t.snap.Totals.Planned++
	}
}

func (t *Tracker) OnArtifactFailed(_ context.Context, repository, path string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.repo(repository)
	// Artifacts rejected at admission never produced a start event.
	if r.Active > 0 {
		r.Active--
	}
	r.Failed++
	t.snap.Totals.Failed++
}

var _ observability.ExportHooks = (*Tracker)(nil)
