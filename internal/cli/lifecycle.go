package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/txlog"
)

// NewArchiveLogCommand creates the archive-log command.
func NewArchiveLogCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "archive-log",
		Short: "Archive the active log and start a fresh one",
		Long: `Rename the active external log to an archive name and create a fresh
log whose first transaction references the archived file. Fails if the
log is embedded in the document (detach first) or if no log file exists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)
			result, err := txlog.Archive(file)
			if err != nil {
				return c.formatter.reportError(err)
			}
			c.logger.Info("log archived", "archive", result.ArchivePath, "transaction", result.TransactionMUID)
			return c.formatter.Success(map[string]any{
				"archive":     result.ArchivePath,
				"log":         result.LogPath,
				"transaction": result.TransactionMUID,
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewBundleLogCommand creates the bundle-log command.
func NewBundleLogCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "bundle-log",
		Short: "Embed the external log inside the document",
		Long: `Copy the external log into the document's log_history property and
delete the external file. Fails if a log is already embedded, if the
external log is missing, or if archive files are present (collect those
manually first).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)
			result, err := txlog.Bundle(file)
			if err != nil {
				return c.formatter.reportError(err)
			}
			c.logger.Info("log bundled", "removed", result.LogPath, "transaction", result.TransactionMUID)
			return c.formatter.Success(map[string]any{
				"removed":     result.LogPath,
				"transaction": result.TransactionMUID,
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewDetachLogCommand creates the detach-log command.
func NewDetachLogCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "detach-log",
		Short: "Extract the embedded log into an external file",
		Long: `Pop the log_history property out of the document and write it as a new
external log file. Fails if no log is embedded or if an external log
file already exists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)
			result, err := txlog.Detach(file)
			if err != nil {
				return c.formatter.reportError(err)
			}
			c.logger.Info("log detached", "log", result.LogPath, "transaction", result.TransactionMUID)
			return c.formatter.Success(map[string]any{
				"log":         result.LogPath,
				"transaction": result.TransactionMUID,
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
