// Package cmd provides the command-line interface for the issuebridge service.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "issuebridge",
	Short: "issuebridge keeps Jira tickets in sync with GitHub issues",
	Long: `issuebridge is a webhook service that mirrors GitHub issue activity
into Jira. For every issue or comment event it resolves the repository's
sync configuration, decides whether the event is actionable, and creates,
transitions, updates or comments on the linked Jira ticket.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
