/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command. Extensions are initialised in
// PersistentPreRunE only for commands outside noStoreCommands, so init,
// guide and config work before a catalogue database exists.

package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "glossd",
	Short: "Keyword search over course glossaries",
	Long:  `Search the glossaries of a course by keyword, with whole-word (+word) and exclusion (-word) terms, from the command line or over MCP.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// PersistentPreRunE is assigned in init to avoid an initialization cycle
// (rootCmd -> UserID -> rootCmd).
func init() {
	rootCmd.PersistentPreRunE = persistentPreRunE
}

func persistentPreRunE(cmd *cobra.Command, _ []string) error {
	if output != "" && !slices.Contains(validOutputFormats, output) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
	}

	detectUser()
	if id := UserID(); id != nil && *id < 0 {
		return fmt.Errorf("invalid --user %d: user ids are not negative", *id)
	}

	cmdName := topLevelCmdName(cmd)

	// Initialise extensions for commands that need the store
	if !noStoreCommands[cmdName] {
		if err := initExtensions(); err != nil {
			if JSON() {
				_ = PrintJSON(map[string]string{"error": err.Error()})
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
			}
			return fmt.Errorf("initialise extensions: %w", err)
		}
	}

	return nil
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "glossd search cell", returns "search".
// For "glossd grant add 2 ...", returns "grant".
func topLevelCmdName(cmd *cobra.Command) string {
	// Walk up until we find a command whose parent has no parent (the root)
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, registers extensions, executes the command, and ensures
// proper cleanup of the glossary service before exit. Exit code 1 indicates error.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	registerExtensions()
	err := rootCmd.Execute()

	// Close the service if it was created
	if extService != nil {
		if closeErr := extService.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", closeErr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}
