package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fusiongraph/pkg/auth"
)

// loginTimeout bounds the token request.
const loginTimeout = 30 * time.Second

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored access token",
		Long: `Obtain and inspect the two-legged access token used for API requests.

Credentials come from APS_CLIENT_ID and APS_CLIENT_SECRET or the
[credentials] section of the config file. Tokens are stored in
~/.config/fusiongraph/sessions/ and reused until they expire.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Request a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.session(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Requesting token...")
			spinner.Start()
			sess, err := auth.Login(ctx, cfg.authConfig(), store)
			if err != nil {
				spinner.StopWithError("Authentication failed")
				return err
			}
			spinner.Stop()
			if n, err := store.Prune(ctx); err != nil {
				c.Logger.Warn("prune sessions", "error", err)
			} else if n > 0 {
				c.Logger.Debug("removed expired tokens", "count", n)
			}

			printSuccess("Logged in as client %s", StyleHighlight.Render(sess.ClientID))
			printKeyValue("Scopes", strings.Join(sess.Scopes, " "))
			printKeyValue("Expires", sess.ExpiresAt.Format(time.Kitchen))
			printNewline()
			printNextStep("Read a design", "fusiongraph hierarchy --hub <hub> --project <project> --component <name>")
			return nil
		},
	}
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.session(cfg)
			if err != nil {
				return err
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
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
		Short: "Show the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.session(cfg)
			if err != nil {
				return err
			}
			sess, err := store.GetSession(cmd.Context())
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}
			if sess == nil {
				printInfo("No valid token stored")
				printNextStep("Log in", "fusiongraph auth login")
				return nil
			}

			printSuccess("Token")
			printKeyValue("Client", sess.ClientID)
			printKeyValue("Scopes", strings.Join(sess.Scopes, " "))
			printKeyValue("Created", sess.CreatedAt.Format(time.DateTime))
			printKeyValue("Expires", sess.ExpiresAt.Format(time.DateTime))
			printKeyValue("File", store.Path())
			return nil
		},
	}
}
