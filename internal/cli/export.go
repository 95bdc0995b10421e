package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexport/nexport/internal/status"
	"github.com/nexport/nexport/pkg/config"
	"github.com/nexport/nexport/pkg/export"
	"github.com/nexport/nexport/pkg/nexus"
	"github.com/nexport/nexport/pkg/observability"
)

// exportFlags holds the command-line surface of the export command that is
// not part of the persisted configuration.
type exportFlags struct {
	dryRun     bool
	noCache    bool
	refresh    bool
	statusAddr string
	tui        bool
	reportPath string
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		server      string
		username    string
		password    string
		output      string
		repos       []string
		concurrency int
		retries     int
		fl          exportFlags
	)

	cmd := &cobra.Command{
		Use:   "export [repository ...]",
		Short: "Export all artifacts from the server to local disk",
		Long: `Export walks the selected repositories and downloads every artifact
into <output>/<repository>/<path>. Repositories can be named as
arguments or with --repos; without either, every repository on the
server is exported.

Artifacts already present on disk with the expected size are skipped, so
an interrupted run can simply be repeated: only the missing and failed
files are fetched again. Failed downloads never leave partial files
behind.

A repository whose listing fails partway is marked incomplete in the
report and the run moves on to the next one. Authentication failures
abort the whole run, since every further request would be rejected too.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if f.Changed("server") {
				cfg.Server.URL = server
			}
			if f.Changed("username") {
				cfg.Server.Username = username
			}
			if f.Changed("password") {
				cfg.Server.Password = password
			}
			if f.Changed("output") {
				cfg.Export.Output = output
			}
			// Naming repositories on the command line replaces any selection
			// from the config file.
			if len(args) > 0 || f.Changed("repos") {
				cfg.Export.Repositories = append(append([]string(nil), args...), repos...)
			}
			if f.Changed("concurrency") {
				cfg.Export.Concurrency = concurrency
			}
			if f.Changed("retries") {
				cfg.Export.Retries = retries
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return c.runExport(cmd.Context(), cfg, fl)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Nexus server URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for basic auth")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for basic auth (prefer NEXPORT_PASSWORD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default \"export\")")
	cmd.Flags().StringSliceVarP(&repos, "repos", "r", nil, "repositories to export (default all)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", config.DefaultConcurrency, "parallel downloads per repository")
	cmd.Flags().IntVar(&retries, "retries", config.DefaultRetries, "retry attempts per artifact")
	cmd.Flags().BoolVar(&fl.dryRun, "dry-run", false, "list what would be downloaded without writing anything")
	cmd.Flags().BoolVar(&fl.noCache, "no-cache", false, "disable the listing cache")
	cmd.Flags().BoolVar(&fl.refresh, "refresh", false, "bypass cached listings for this run")
	cmd.Flags().StringVar(&fl.statusAddr, "status-addr", "", "serve live progress on this address (e.g. 127.0.0.1:8099)")
	cmd.Flags().BoolVar(&fl.tui, "tui", false, "show a full-screen progress dashboard")
	cmd.Flags().StringVar(&fl.reportPath, "report", "", "write the run report as JSON to this file")

	return cmd
}

// runExport wires the client, hooks and optional status server together
// and drives the run.
func (c *CLI) runExport(ctx context.Context, cfg config.Config, fl exportFlags) error {
	client, err := c.newClient(ctx, cfg, fl.noCache)
	if err != nil {
		return err
	}
	source := nexus.NewSource(client, fl.refresh)

	var hooks []observability.ExportHooks
	if !fl.tui {
		hooks = append(hooks, NewReporter(c.Logger))
	}

	statusAddr := fl.statusAddr
	if statusAddr == "" {
		statusAddr = cfg.Status.Addr
	}
	if statusAddr != "" {
		tracker := status.NewTracker()
		srv := status.NewServer(statusAddr, tracker, c.Logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		c.Logger.Info("status server listening", "addr", "http://"+srv.Addr()+"/api/status")
		hooks = append(hooks, tracker)
	}

	runner := export.NewRunner(source, export.Options{
		Root:         cfg.Export.Output,
		Concurrency:  cfg.Export.Concurrency,
		Retries:      cfg.Export.Retries,
		Repositories: cfg.Export.Repositories,
		DryRun:       fl.dryRun,
		Server:       cfg.BaseURL(),
	})

	var report *export.Report
	var runErr error
	if fl.tui {
		report, runErr = c.runDashboard(ctx, runner, hooks)
	} else {
		observability.SetExportHooks(observability.MultiExportHooks(hooks...))
		defer observability.Reset()
		report, runErr = runner.Run(ctx)
	}

	if report != nil {
		printNewline()
		c.printReport(report)
		if fl.reportPath != "" {
			if err := export.ExportJSON(report, fl.reportPath); err != nil {
				return err
			}
			printFile(fl.reportPath)
		}
	}

	if runErr != nil {
		return runErr
	}
	if !report.Clean() {
		return fmt.Errorf("export incomplete: %d artifacts failed, %d repositories not fully listed (rerun to retry the gaps)",
			report.Totals.Failed, report.Totals.Incomplete)
	}
	return nil
}

// printReport prints the final run summary.
func (c *CLI) printReport(r *export.Report) {
	title := "Export complete"
	if r.DryRun {
		title = "Dry run complete"
	}
	if !r.Clean() {
		fmt.Println(StyleWarning.Render(title + " (with gaps)"))
	} else {
		fmt.Println(StyleTitle.Render(title))
	}

	printKeyValue("Repositories", fmt.Sprintf("%d", r.Totals.Repositories))
	printKeyValue("Downloaded", fmt.Sprintf("%d (%s)", r.Totals.Downloaded, formatBytes(r.Totals.Bytes)))
	printKeyValue("Skipped", fmt.Sprintf("%d", r.Totals.Skipped))
	if r.Totals.Planned > 0 {
		printKeyValue("Planned", fmt.Sprintf("%d", r.Totals.Planned))
	}
	printKeyValue("Failed", fmt.Sprintf("%d", r.Totals.Failed))
	printKeyValue("Elapsed", fmt.Sprintf("%s (%s)", formatDuration(r.Duration()), formatRate(r.Totals.Bytes, r.Duration())))
	printKeyValue("Output", r.Root)

	for _, sum := range r.Repositories {
		if sum.Incomplete {
			printWarning("%s: listing incomplete after %d artifacts: %s", sum.Repository, sum.Outcomes(), sum.Error)
		}
		for _, f := range sum.Failures {
			printDetail("%s %s/%s: %s", iconError, sum.Repository, f.Path, f.Error)
		}
	}
}
