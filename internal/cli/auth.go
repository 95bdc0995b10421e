package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexport/nexport/pkg/cache"
	"github.com/nexport/nexport/pkg/credentials"
	"github.com/nexport/nexport/pkg/errors"
	"github.com/nexport/nexport/pkg/nexus"
)

// verifyTimeout bounds the login round-trip to the server.
const verifyTimeout = 30 * time.Second

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage saved server credentials",
		Long: `Save Nexus credentials so they do not have to be passed on every run.

Credentials are verified against the server and stored with 0600
permissions under ~/.config/nexport/. Flags and NEXPORT_* environment
variables always take precedence over the stored values.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var (
		server   string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the server and save them",
		Long: `Verify the given credentials with a listing request and save them.

The password is taken from --password or, preferably, from the
NEXPORT_PASSWORD environment variable so it does not end up in shell
history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				server = cfg.Server.URL
			}
			if server == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no server given (use --server or set NEXPORT_URL)")
			}
			if err := errors.ValidateURL(server); err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("NEXPORT_PASSWORD")
			}
			if username != "" && password == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no password given (use --password or set NEXPORT_PASSWORD)")
			}

			server = strings.TrimRight(server, "/")
			if err := c.verifyCredentials(cmd.Context(), server, username, password); err != nil {
				return err
			}

			store, err := credentials.NewStore("")
			if err != nil {
				return fmt.Errorf("open credentials store: %w", err)
			}
			creds := &credentials.Credentials{
				Server:   server,
				Username: username,
				Password: password,
			}
			if err := store.Save(creds); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}

			if username == "" {
				printSuccess("Logged in to %s (anonymous)", server)
			} else {
				printSuccess("Logged in to %s as %s", server, username)
			}
			printDetail("Saved to %s", store.Path())
			printNextStep("Start a full export", "nexport export")
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "Nexus server URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for basic auth")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for basic auth (prefer NEXPORT_PASSWORD)")

	return cmd
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credentials.NewStore("")
			if err != nil {
				return fmt.Errorf("open credentials store: %w", err)
			}
			if err := store.Delete(); err != nil {
				return fmt.Errorf("delete credentials: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// authStatusCommand creates the status subcommand.
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credentials and verify them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credentials.NewStore("")
			if err != nil {
				return fmt.Errorf("open credentials store: %w", err)
			}
			creds, err := store.Load()
			if err != nil {
				return err
			}
			if creds == nil {
				printInfo("Not logged in")
				printDetail("Run 'nexport auth login' to save credentials")
				return nil
			}

			printKeyValue("Server", creds.Server)
			if creds.Username != "" {
				printKeyValue("Username", creds.Username)
			}
			printKeyValue("Saved", creds.SavedAt.Format("Jan 2, 2006"))

			return c.verifyCredentials(cmd.Context(), creds.Server, creds.Username, creds.Password)
		},
	}
}

// =============================================================================
// Credential Verification
// =============================================================================

// verifyCredentials makes a listing request with the given credentials.
// A listing is used instead of the status endpoint because the latter
// accepts anonymous requests even when the repositories do not.
func (c *CLI) verifyCredentials(ctx context.Context, server, username, password string) error {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Verifying credentials...")
	spinner.Start()

	client := nexus.NewClient(nexus.Config{
		BaseURL:  server,
		Username: username,
		Password: password,
	}, cache.NewNullCache(), 0)

	if _, err := client.ListRepositories(ctx, true); err != nil {
		spinner.StopWithError("Login failed")
		return err
	}
	spinner.StopWithSuccess("Credentials verified")
	return nil
}
