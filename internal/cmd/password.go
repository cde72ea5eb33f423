package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trilhalab/portalctl/internal/tui"
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your portal password",
	Long: `Change the password of the currently logged-in user.

The local session stays valid after the change; log in again if you want a
session issued under the new password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		if _, err := d.auth.RequireAuth(); err != nil {
			return err
		}

		current, _ := cmd.Flags().GetString("current")
		newPassword, _ := cmd.Flags().GetString("new")

		if current == "" {
			current, err = tui.PromptForString(tui.Prompt{
				Message:  "Current password",
				Required: true,
				Password: true,
			})
			if err != nil {
				return err
			}
		}
		if newPassword == "" {
			newPassword, err = tui.PromptForString(tui.Prompt{
				Message:  "New password",
				Required: true,
				Password: true,
			})
			if err != nil {
				return err
			}
		}

		env, err := d.auth.ChangePassword(cmd.Context(), current, newPassword)
		if err != nil {
			return err
		}

		message := "Password changed."
		var data struct {
			Message string `json:"message"`
		}
		if decodeErr := env.DecodeData(&data); decodeErr == nil && data.Message != "" {
			message = data.Message
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changePasswordCmd)
	changePasswordCmd.Flags().String("current", "", "Current password")
	changePasswordCmd.Flags().String("new", "", "New password")
}
