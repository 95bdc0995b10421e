package export

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nexport/nexport/pkg/errors"
)

func newTestRunner(src *fakeSource, root string, mutate func(*Options)) *Runner {
	opts := Options{
		Root:        root,
		Concurrency: 2,
		Backoff:     time.Millisecond,
		Server:      "https://nexus.example.com",
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewRunner(src, opts)
}

func TestRunnerReport(t *testing.T) {
	src := newFakeSource()
	src.repos = []string{"alpha", "beta"}
	src.pages["alpha"] = [][]Descriptor{page("alpha", "lib", 3)}
	src.pages["beta"] = [][]Descriptor{page("beta", "lib", 2)}

	runner := newTestRunner(src, t.TempDir(), nil)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.RunID == "" {
		t.Error("report must carry a run ID")
	}
	if report.Server != "https://nexus.example.com" {
		t.Errorf("Server = %q", report.Server)
	}
	if len(report.Repositories) != 2 {
		t.Fatalf("Repositories = %d, want 2", len(report.Repositories))
	}
	if report.Repositories[0].Repository != "alpha" || report.Repositories[1].Repository != "beta" {
		t.Errorf("repository order = %q, %q", report.Repositories[0].Repository, report.Repositories[1].Repository)
	}

	want := Totals{Repositories: 2, Downloaded: 5}
	got := report.Totals
	if got.Repositories != want.Repositories || got.Downloaded != want.Downloaded ||
		got.Skipped != 0 || got.Failed != 0 {
		t.Errorf("Totals = %+v, want %d repositories with %d downloads", got, want.Repositories, want.Downloaded)
	}
	if got.Bytes == 0 {
		t.Error("Totals.Bytes should account for transferred bytes")
	}
	if !report.Clean() {
		t.Error("Clean() = false for a run without failures")
	}
	if report.Duration() < 0 {
		t.Errorf("Duration() = %v", report.Duration())
	}
}

func TestRunnerPartialFailureIsolation(t *testing.T) {
	src := newFakeSource()
	src.repos = []string{"alpha", "beta"}
	src.pages["alpha"] = [][]Descriptor{page("alpha", "lib", 3)}
	src.listErr["alpha"] = fmt.Errorf("status 502")
	src.pages["beta"] = [][]Descriptor{page("beta", "lib", 2)}

	runner := newTestRunner(src, t.TempDir(), nil)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("a single listing failure must not abort the run: %v", err)
	}

	if len(report.Repositories) != 2 {
		t.Fatalf("Repositories = %d, want 2", len(report.Repositories))
	}
	alpha, beta := report.Repositories[0], report.Repositories[1]
	if !alpha.Incomplete {
		t.Error("alpha must be marked incomplete")
	}
	if alpha.Outcomes() != 3 {
		t.Errorf("alpha Outcomes() = %d, want 3 (everything listed before the failure)", alpha.Outcomes())
	}
	if beta.Incomplete || beta.Downloaded != 2 {
		t.Errorf("beta = %+v, want a complete export of 2 artifacts", beta)
	}
	if report.Clean() {
		t.Error("Clean() = true despite an incomplete repository")
	}
	if report.Totals.Incomplete != 1 {
		t.Errorf("Totals.Incomplete = %d, want 1", report.Totals.Incomplete)
	}
}

func TestRunnerAuthFailureStopsRun(t *testing.T) {
	src := newFakeSource()
	src.repos = []string{"alpha", "beta"}
	src.listErr["alpha"] = errors.New(errors.ErrCodeUnauthorized, "authentication failed")
	src.pages["beta"] = [][]Descriptor{page("beta", "lib", 2)}

	runner := newTestRunner(src, t.TempDir(), nil)
	report, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("Run should surface the authentication failure")
	}
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("error code = %v, want UNAUTHORIZED", errors.GetCode(err))
	}

	// The failing repository is recorded, the rest is never attempted.
	if len(report.Repositories) != 1 {
		t.Fatalf("Repositories = %d, want 1", len(report.Repositories))
	}
	if !report.Repositories[0].Incomplete {
		t.Error("failing repository must be marked incomplete")
	}
	if n := src.totalFetches(); n != 0 {
		t.Errorf("fetched %d artifacts after a fatal auth failure, want 0", n)
	}
}

func TestRunnerEnumerationFailure(t *testing.T) {
	src := newFakeSource()
	src.repoErr = fmt.Errorf("connection refused")

	runner := newTestRunner(src, t.TempDir(), nil)
	report, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when repositories cannot be enumerated")
	}
	if len(report.Repositories) != 0 {
		t.Errorf("Repositories = %d, want 0", len(report.Repositories))
	}
}

func TestRunnerRepositorySelection(t *testing.T) {
	src := newFakeSource()
	src.repos = []string{"alpha", "beta", "gamma"}
	for _, name := range src.repos {
		src.pages[name] = [][]Descriptor{page(name, "lib", 1)}
	}

	runner := newTestRunner(src, t.TempDir(), func(o *Options) {
		o.Repositories = []string{"gamma", "alpha"}
	})
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Repositories) != 2 {
		t.Fatalf("Repositories = %d, want 2", len(report.Repositories))
	}
	// Selection preserves server order, not request order.
	if report.Repositories[0].Repository != "alpha" || report.Repositories[1].Repository != "gamma" {
		t.Errorf("exported %q, %q; want alpha then gamma",
			report.Repositories[0].Repository, report.Repositories[1].Repository)
	}
}

func TestRunnerUnknownRepository(t *testing.T) {
	src := newFakeSource()
	src.repos = []string{"alpha"}
	src.pages["alpha"] = [][]Descriptor{page("alpha", "lib", 1)}

	runner := newTestRunner(src, t.TempDir(), func(o *Options) {
		o.Repositories = []string{"alpha", "missing"}
	})
	_, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("Run should reject unknown repository names")
	}
	if !errors.Is(err, errors.ErrCodeRepositoryNotFound) {
		t.Errorf("error code = %v, want REPOSITORY_NOT_FOUND", errors.GetCode(err))
	}
	if n := src.totalFetches(); n != 0 {
		t.Errorf("fetched %d artifacts despite invalid selection, want 0", n)
	}
}

func TestSelectRepositories(t *testing.T) {
	available := []string{"alpha", "beta", "gamma"}

	tests := []struct {
		name      string
		requested []string
		want      []string
		wantErr   bool
	}{
		{
			name:      "empty selects all",
			requested: nil,
			want:      available,
		},
		{
			name:      "subset in server order",
			requested: []string{"gamma", "alpha"},
			want:      []string{"alpha", "gamma"},
		},
		{
			name:      "duplicates collapse",
			requested: []string{"beta", "beta"},
			want:      []string{"beta"},
		},
		{
			name:      "unknown name",
			requested: []string{"delta"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectRepositories(available, tt.requested)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectRepositories() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("selectRepositories() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("selectRepositories()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
