package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nexport/nexport/pkg/errors"
)

// Summary aggregates one repository's outcomes: counts per status, bytes
// transferred and elapsed time. Incomplete marks a repository whose
// listing failed partway; the counts then cover only what was listed
// before the failure.
type Summary struct {
	Repository string        `json:"repository"`
	Downloaded int           `json:"downloaded"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Planned    int           `json:"planned,omitempty"`
	Bytes      int64         `json:"bytes"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Incomplete bool          `json:"incomplete,omitempty"`
	Error      string        `json:"error,omitempty"`
	Failures   []Failure     `json:"failures,omitempty"`
}

// Failure records one failed artifact and its cause, so a rerun can be
// checked against the exact gaps.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Outcomes returns the number of outcomes folded into the summary.
func (s Summary) Outcomes() int {
	return s.Downloaded + s.Skipped + s.Failed + s.Planned
}

// add folds one outcome into the summary. Only the collector goroutine
// calls it, so no locking is needed.
func (s *Summary) add(out Outcome) {
	switch out.Status {
	case StatusDownloaded:
		s.Downloaded++
		s.Bytes += out.Bytes
	case StatusSkipped:
		s.Skipped++
	case StatusPlanned:
		s.Planned++
	case StatusFailed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Path: out.Descriptor.Path, Error: out.Error})
	}
}

// Report is the final account of a full export run.
type Report struct {
	RunID        string    `json:"run_id"`
	Server       string    `json:"server,omitempty"`
	Root         string    `json:"root"`
	DryRun       bool      `json:"dry_run,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Repositories []Summary `json:"repositories"`
	Totals       Totals    `json:"totals"`
}

// Totals aggregates counts across all repositories of a run.
type Totals struct {
	Repositories int   `json:"repositories"`
	Downloaded   int   `json:"downloaded"`
	Skipped      int   `json:"skipped"`
	Failed       int   `json:"failed"`
	Planned      int   `json:"planned,omitempty"`
	Bytes        int64 `json:"bytes"`
	Incomplete   int   `json:"incomplete,omitempty"`
}

// add appends one repository summary and rolls it into the totals.
func (r *Report) add(sum Summary) {
	r.Repositories = append(r.Repositories, sum)
	r.Totals.Repositories++
	r.Totals.Downloaded += sum.Downloaded
	r.Totals.Skipped += sum.Skipped
	r.Totals.Failed += sum.Failed
	r.Totals.Planned += sum.Planned
	r.Totals.Bytes += sum.Bytes
	if sum.Incomplete {
		r.Totals.Incomplete++
	}
}

// Clean reports whether the run finished without failed artifacts or
// incomplete repositories.
func (r *Report) Clean() bool {
	return r.Totals.Failed == 0 && r.Totals.Incomplete == 0
}

// Duration returns the wall-clock duration of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// WriteJSON encodes a report as indented JSON and writes it to w.
func WriteJSON(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	return nil
}

// ExportJSON writes a report to a JSON file at path, creating parent
// directories as needed. This is a convenience wrapper around [WriteJSON]
// for file-based output.
func ExportJSON(r *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "create directory for %s", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(r, f)
}
