package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/history"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var file, indexPath string

	cmd := &cobra.Command{
		Use:   "history <entity-id>",
		Short: "Show the transaction history of an entity",
		Long: `Replay the document's log into a SQLite index and print every
transaction that touched the given entity, in timestamp order.

The index is derived data: by default it lives in memory and is rebuilt
on every run. Pass --index to keep it on disk. The log and the document
are never modified.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)
			entityID := args[0]

			logDoc, err := document.LoadLog(document.LogPath(file))
			if err != nil {
				return c.formatter.reportError(err)
			}

			ix, err := history.Open(indexPath)
			if err != nil {
				return c.formatter.reportError(err)
			}
			defer ix.Close()

			replayed, err := ix.Replay(cmd.Context(), logDoc.Graph)
			if err != nil {
				return c.formatter.reportError(err)
			}
			c.logger.Debug("log replayed", "transactions", replayed)

			entries, err := ix.Entity(cmd.Context(), entityID)
			if err != nil {
				return c.formatter.reportError(err)
			}

			if c.formatter.Format == "json" {
				return c.formatter.Success(map[string]any{
					"entity_id": entityID,
					"entries":   entries,
				})
			}
			if len(entries) == 0 {
				return c.formatter.Success(fmt.Sprintf("no history for entity %q", entityID))
			}
			var b strings.Builder
			fmt.Fprintf(&b, "history of %q (%d transactions):\n", entityID, len(entries))
			for _, e := range entries {
				fmt.Fprintf(&b, "  %s  %-28s %s", e.Timestamp, e.TransactionMUID, e.Action)
				if e.RecipeID != "" {
					fmt.Fprintf(&b, "  (%s)", e.RecipeID)
				}
				b.WriteByte('\n')
			}
			return c.formatter.Success(strings.TrimRight(b.String(), "\n"))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	cmd.Flags().StringVar(&indexPath, "index", ":memory:", "path of the SQLite index database")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
