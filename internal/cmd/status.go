package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/trilhalab/portalctl/internal/auth"
	"github.com/trilhalab/portalctl/internal/token"
	"github.com/trilhalab/portalctl/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the current authentication status and user information.

With --watch, keeps a live view open that follows session changes made by
other portalctl processes and drops the session when the token expires.

Examples:
  portalctl status
  portalctl status --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			return runWatch(cmd, d)
		}

		out := cmd.OutOrStdout()
		sess := d.auth.CurrentUser()
		if sess == nil {
			fmt.Fprintln(out, "Not logged in.")
			fmt.Fprintln(out, "Use 'portalctl login' to authenticate.")
			return nil
		}

		fmt.Fprintln(out, "Logged in")
		fmt.Fprintf(out, "Name:    %s\n", sess.Name)
		fmt.Fprintf(out, "Email:   %s\n", sess.Email)
		fmt.Fprintf(out, "Role:    %s\n", sess.Role)
		fmt.Fprintf(out, "Expires: in %s\n", token.TimeRemaining(sess.Token).Round(time.Second))
		return nil
	},
}

func runWatch(cmd *cobra.Command, d *deps) error {
	monitor := auth.NewMonitor(d.auth, d.store, auth.DefaultMonitorOptions(), d.logger)
	if err := monitor.Start(cmd.Context()); err != nil {
		return err
	}
	defer monitor.Stop()

	program := tea.NewProgram(tui.NewWatch(monitor), tea.WithContext(cmd.Context()))
	_, err := program.Run()
	return err
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("watch", false, "Keep a live session view open")
}
