package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the portal backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		env, err := d.client.HealthCheck(cmd.Context())
		if err != nil {
			return err
		}

		status := "ok"
		var data struct {
			Status string `json:"status"`
		}
		if decodeErr := env.DecodeData(&data); decodeErr == nil && data.Status != "" {
			status = data.Status
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Portal %s: %s\n", d.client.BaseURL(), status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
