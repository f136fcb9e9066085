// Package main provides the ordinansa binary entry point.
// Ordinansa is the Quezon City ordinance tracker: a server-rendered admin
// application for tracking legislative documents, their priority
// classification, draft registration, and activity history.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "ordinansa"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "QC Ordinance Tracker",
		Long: `Ordinansa is the Quezon City ordinance tracker.

It serves the legislative tracking admin interface: unified activity
history across all document event tables, priority classification,
draft registration numbering, and the notification center.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(migrateCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}
