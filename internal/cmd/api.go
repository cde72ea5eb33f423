package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var apiMethods = map[string]string{
	"get":    http.MethodGet,
	"post":   http.MethodPost,
	"put":    http.MethodPut,
	"patch":  http.MethodPatch,
	"delete": http.MethodDelete,
}

var apiCmd = &cobra.Command{
	Use:   "api <get|post|put|patch|delete> <path>",
	Short: "Issue an authorized request against the portal API",
	Long: `Issue a raw, authorized request against the portal API and print the
response envelope. The bearer token of the current session is attached
automatically.

Examples:
  portalctl api get /trilhas
  portalctl api get /videos
  portalctl api post /trilhas --data '{"title":"Onboarding","description":"..."}'
  portalctl api delete /videos/64a1f0c2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, ok := apiMethods[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown method %q: use get, post, put, patch or delete", args[0])
		}
		path := args[1]

		var body any
		if data, _ := cmd.Flags().GetString("data"); data != "" {
			if err := json.Unmarshal([]byte(data), &body); err != nil {
				return fmt.Errorf("--data is not valid JSON: %w", err)
			}
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		env, err := d.client.Request(cmd.Context(), method, path, body)
		if err != nil {
			return err
		}

		pretty, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().String("data", "", "JSON request body")
}
