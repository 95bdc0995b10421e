package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nexport/nexport/pkg/export"
	"github.com/nexport/nexport/pkg/observability"
)

// Dashboard styles
var (
	dashDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	dashDoneStyle = lipgloss.NewStyle().Foreground(colorGreen)
	dashWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	dashFailStyle = lipgloss.NewStyle().Foreground(colorRed)
	dashRunStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Messages
// =============================================================================

type runStartMsg struct {
	server       string
	repositories int
}

type repoStartMsg struct{ name string }

type listingMsg struct {
	repo  string
	count int
}

type artifactStartMsg struct{ repo string }

type artifactDoneMsg struct {
	repo   string
	status string
	bytes  int64
}

type artifactFailMsg struct{ repo string }

type repoDoneMsg struct {
	name       string
	downloaded int
	skipped    int
	failed     int
	bytes      int64
	incomplete bool
}

type runDoneMsg struct{}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// =============================================================================
// DashboardModel - Live export progress
// =============================================================================

const (
	repoWaiting = "waiting"
	repoRunning = "running"
	repoDone    = "done"
	repoPartial = "incomplete"
)

// repoRow is one repository's line in the dashboard table. Planned is
// tracked separately because the final repository event does not carry it;
// the downloaded column shows both.
type repoRow struct {
	name       string
	state      string
	listed     int
	active     int
	downloaded int
	planned    int
	skipped    int
	failed     int
	bytes      int64
}

// DashboardModel is the bubbletea model for the live export dashboard.
type DashboardModel struct {
	Server string
	Total  int

	rows    []repoRow
	index   map[string]int
	started time.Time
	elapsed time.Duration
	done    bool
	aborted bool
}

// NewDashboardModel creates an empty dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{
		index:   map[string]int{},
		started: time.Now(),
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

// row returns the index for a repository, appending a new row on first use.
func (m *DashboardModel) row(name string) *repoRow {
	if i, ok := m.index[name]; ok {
		return &m.rows[i]
	}
	m.index[name] = len(m.rows)
	m.rows = append(m.rows, repoRow{name: name, state: repoWaiting})
	return &m.rows[len(m.rows)-1]
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}

	case runStartMsg:
		m.Server = msg.server
		m.Total = msg.repositories

	case repoStartMsg:
		m.row(msg.name).state = repoRunning

	case listingMsg:
		m.row(msg.repo).listed += msg.count

	case artifactStartMsg:
		m.row(msg.repo).active++

	case artifactDoneMsg:
		r := m.row(msg.repo)
		switch msg.status {
		case export.StatusDownloaded:
			r.downloaded++
			r.bytes += msg.bytes
			r.active--
		case export.StatusSkipped:
			r.skipped++
		case export.StatusPlanned:
			r.planned++
		}

	case artifactFailMsg:
		r := m.row(msg.repo)
		r.failed++
		if r.active > 0 {
			r.active--
		}

	case repoDoneMsg:
		r := m.row(msg.name)
		r.downloaded = msg.downloaded
		r.skipped = msg.skipped
		r.failed = msg.failed
		r.bytes = msg.bytes
		r.active = 0
		if msg.incomplete {
			r.state = repoPartial
		} else {
			r.state = repoDone
		}

	case runDoneMsg:
		m.done = true
		return m, tea.Quit

	case tickMsg:
		if !m.done {
			m.elapsed = time.Since(m.started)
			return m, tickCmd()
		}
	}
	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Exporting " + m.Server))
	b.WriteString("\n")
	b.WriteString(dashDimStyle.Render("q: cancel"))
	b.WriteString("\n\n")

	var downloaded, skipped, failed int
	var bytes int64
	rows := make([][]string, len(m.rows))
	for i, r := range m.rows {
		downloaded += r.downloaded + r.planned
		skipped += r.skipped
		failed += r.failed
		bytes += r.bytes

		state := r.state
		if r.state == repoRunning && r.active > 0 {
			state = fmt.Sprintf("running (%d)", r.active)
		}
		rows[i] = []string{
			r.name, state,
			fmt.Sprintf("%d", r.listed),
			fmt.Sprintf("%d", r.downloaded+r.planned),
			fmt.Sprintf("%d", r.skipped),
			fmt.Sprintf("%d", r.failed),
			formatBytes(r.bytes),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Repository", "State", "Listed", "Downloaded", "Skipped", "Failed", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			r := m.rows[row]
			if col == 5 && r.failed > 0 {
				return dashFailStyle
			}
			if col == 1 {
				switch r.state {
				case repoDone:
					return dashDoneStyle
				case repoPartial:
					return dashWarnStyle
				case repoWaiting:
					return dashDimStyle
				default:
					return dashRunStyle
				}
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(dashDimStyle.Render(fmt.Sprintf("  [%d/%d repositories]", len(m.rows), m.Total)))
	b.WriteString(fmt.Sprintf("  %d downloaded  %d skipped  %d failed  %s  %s",
		downloaded, skipped, failed, formatBytes(bytes), formatDuration(m.elapsed)))
	b.WriteString("\n")
	if m.aborted {
		b.WriteString(dashWarnStyle.Render("  cancelling, waiting for running downloads..."))
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// Hook Bridge
// =============================================================================

// dashboardHooks forwards export events into the running bubbletea program.
// Send is safe from any goroutine and is a no-op once the program has quit.
type dashboardHooks struct {
	program *tea.Program
}

func (d *dashboardHooks) OnRunStart(_ context.Context, _, server string, repositories int) {
	d.program.Send(runStartMsg{server: server, repositories: repositories})
}

func (d *dashboardHooks) OnRunComplete(context.Context, string, time.Duration, error) {}

func (d *dashboardHooks) OnRepositoryStart(_ context.Context, repository string) {
	d.program.Send(repoStartMsg{name: repository})
}

func (d *dashboardHooks) OnRepositoryComplete(_ context.Context, repository string, downloaded, skipped, failed int, bytes int64, _ time.Duration, err error) {
	d.program.Send(repoDoneMsg{
		name:       repository,
		downloaded: downloaded,
		skipped:    skipped,
		failed:     failed,
		bytes:      bytes,
		incomplete: err != nil,
	})
}

func (d *dashboardHooks) OnListingPage(_ context.Context, repository string, artifacts int) {
	d.program.Send(listingMsg{repo: repository, count: artifacts})
}

func (d *dashboardHooks) OnArtifactStart(_ context.Context, repository, _ string) {
	d.program.Send(artifactStartMsg{repo: repository})
}

func (d *dashboardHooks) OnArtifactComplete(_ context.Context, repository, _, status string, bytes int64, _ time.Duration) {
	d.program.Send(artifactDoneMsg{repo: repository, status: status, bytes: bytes})
}

func (d *dashboardHooks) OnArtifactFailed(_ context.Context, repository, _ string, _ error) {
	d.program.Send(artifactFailMsg{repo: repository})
}

var _ observability.ExportHooks = (*dashboardHooks)(nil)

// =============================================================================
// Runner Integration
// =============================================================================

// runDashboard runs the export behind a full-screen dashboard. The terminal
// logger is silenced while the dashboard owns the screen; extra hooks (the
// status tracker) keep receiving events alongside it.
func (c *CLI) runDashboard(ctx context.Context, runner *export.Runner, extra []observability.ExportHooks) (*export.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewDashboardModel())
	hooks := append([]observability.ExportHooks{&dashboardHooks{program: p}}, extra...)
	observability.SetExportHooks(observability.MultiExportHooks(hooks...))
	defer observability.Reset()

	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.out)

	var report *export.Report
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		report, runErr = runner.Run(runCtx)
		p.Send(runDoneMsg{})
	}()

	_, err := p.Run()

	// Quitting the dashboard cancels the run; wait for the collector to
	// finish so the partial report is complete.
	cancel()
	<-done

	if err != nil {
		return report, err
	}
	return report, runErr
}
