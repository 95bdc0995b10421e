package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// reposCommand creates the repos command.
func (c *CLI) reposCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List the repositories visible on the server",
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

			sp := newSpinnerWithContext(ctx, "Listing repositories")
			sp.Start()
			repos, err := client.ListRepositories(ctx, refresh)
			if err != nil {
				sp.StopWithError("Listing failed")
				return err
			}
			sp.Stop()

			if len(repos) == 0 {
				printInfo("No repositories visible on %s", cfg.BaseURL())
				return nil
			}

			rows := make([][]string, len(repos))
			for i, r := range repos {
				rows[i] = []string{r.Name, r.Format, r.Type, r.URL}
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Repository", "Format", "Type", "URL").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					if col == 3 {
						return StyleDim
					}
					return lipgloss.NewStyle()
				})

			fmt.Println(t)
			printDetail("%d repositories", len(repos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the listing cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached listing")

	return cmd
}
