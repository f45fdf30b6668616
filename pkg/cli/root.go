// Package cli implements docsync, the command-line client for the
// docs-evaluator API.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{
				"error": err.Error(),
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				if apiErr.RequestID != "" {
					errObj["request_id"] = apiErr.RequestID
				}
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host    string
		token   string
		output  string
		profile string
	)

	client := NewClient(host, token)

	rootCmd := &cobra.Command{
		Use:           "docsync",
		Short:         "Submission sync CLI",
		Long:          "Command-line interface for the docs-evaluator submission sync API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Config file is optional
			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = emptyUserConfig()
			}
			p := cfg.ActiveProfile(profile)

			// Apply precedence: flag > env > profile > default
			host = resolve(cmd, "host", host, "DOCSYNC_HOST", p.Host)
			token = resolve(cmd, "token", token, "DOCSYNC_TOKEN", p.Token)
			output = resolve(cmd, "output", output, "DOCSYNC_OUTPUT", p.Output)

			if err := validateOutputFormat(output); err != nil {
				return err
			}
			// Keep the flag in sync so getOutputFormat sees the resolved value.
			_ = cmd.Root().PersistentFlags().Set("output", output)

			*client = *NewClient(host, token)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Google ID token for authentication")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")

	rootCmd.AddCommand(newSyncCmd(client))
	rootCmd.AddCommand(newFilesCmd(client))
	rootCmd.AddCommand(newDeliverablesCmd(client))
	rootCmd.AddCommand(newAnalyzeCmd(client))
	rootCmd.AddCommand(newHistoryCmd(client))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// resolve returns the flag value when set explicitly, else the environment
// variable, else the profile value, else the flag default.
func resolve(cmd *cobra.Command, flag, current, envKey, profileValue string) string {
	if cmd.Flags().Changed(flag) {
		return current
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if profileValue != "" {
		return profileValue
	}
	return current
}
