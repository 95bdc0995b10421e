package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// statusCommand creates the status command.
func (c *CLI) statusCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check that the server is reachable and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := c.newClient(ctx, cfg, noCache)
			if err != nil {
				return err
			}

			sp := newSpinnerWithContext(ctx, "Checking server status")
			sp.Start()
			start := time.Now()
			err = client.Status(ctx)
			latency := time.Since(start)
			if err != nil {
				sp.StopWithError("Server unavailable")
				return err
			}
			sp.StopWithSuccess("Server is healthy")

			printKeyValue("Server", cfg.BaseURL())
			printKeyValue("Latency", formatDuration(latency))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the listing cache")

	return cmd
}
