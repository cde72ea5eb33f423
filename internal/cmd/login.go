package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trilhalab/portalctl/internal/api"
	"github.com/trilhalab/portalctl/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the portal",
	Long: `Log in to the training portal and persist the session locally.

Credentials can be passed via flags or entered interactively.

Examples:
  portalctl login
  portalctl login --email user@example.com --password mypass`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// During an interactive login there is nobody to redirect to the
		// login prompt; the usual session-expired hint is disabled.
		d, err := buildDeps(cmd, api.WithSessionExpiredHook(nil))
		if err != nil {
			return err
		}
		defer d.close()

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			email, err = tui.PromptForString(tui.Prompt{
				Message:     "Email",
				Placeholder: "user@example.com",
				Required:    true,
			})
			if err != nil {
				return err
			}
		}
		if password == "" {
			password, err = tui.PromptForString(tui.Prompt{
				Message:  "Password",
				Required: true,
				Password: true,
			})
			if err != nil {
				return err
			}
		}

		sess, err := d.auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged in as %s <%s>\n", sess.Name, sess.Email)
		fmt.Fprintf(out, "Role: %s\n", sess.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("email", "", "Email address")
	loginCmd.Flags().String("password", "", "Password")
}
