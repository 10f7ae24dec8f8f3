package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/document"
)

// NewCleanupBackupsCommand creates the cleanup-backups command.
func NewCleanupBackupsCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup-backups",
		Short: "Delete the safety backups of a document",
		Long: `Find and delete the timestamped safety backups belonging to the
document. Only files matching the exact backup pattern are touched;
archived logs and unrelated files are never picked up. Asks for
confirmation unless --yes is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)

			backups, err := document.FindBackups(file)
			if err != nil {
				return c.formatter.reportError(err)
			}
			if len(backups) == 0 {
				return c.formatter.Success("no backups found")
			}

			for _, b := range backups {
				c.logger.Info("backup found", "path", b)
			}
			if !yes && !confirm(cmd, fmt.Sprintf("delete %d backup file(s)?", len(backups))) {
				return c.formatter.Success("cancelled")
			}

			deleted := 0
			for _, b := range backups {
				if err := os.Remove(b); err != nil {
					c.logger.Error("delete failed", "path", b, "err", err)
					continue
				}
				deleted++
			}
			return c.formatter.Success(map[string]any{"deleted": deleted})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	cmd.Flags().BoolVar(&yes, "yes", false, "delete without confirmation")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// confirm asks a y/n question on the command's streams.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/n): ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(answer)) == "y"
}
