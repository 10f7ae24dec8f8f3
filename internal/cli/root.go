// Package cli implements the weave command-line interface.
//
// Commands operate on one SG document at a time. Every mutating command
// follows the same sequence: load the document, take a safety backup
// (unless --no-backup), apply the operation in memory, then commit — log
// file first, main document second. Nothing is persisted if the operation
// fails in memory.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the weave CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "weave",
		Short: "weave - transactional semantic graph editor",
		Long: `weave edits semantic graph (SG) documents: Markdown files carrying a
YAML front matter header and a fenced JSON block of nodes and relations.
Every mutation is recorded as a transaction in an append-only log file
that is written before the document itself.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBatchModifyCommand(opts))
	cmd.AddCommand(NewPromoteRelationCommand(opts))
	cmd.AddCommand(NewArchiveLogCommand(opts))
	cmd.AddCommand(NewBundleLogCommand(opts))
	cmd.AddCommand(NewDetachLogCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCleanupBackupsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
