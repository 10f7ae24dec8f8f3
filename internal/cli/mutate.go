package cli

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/txlog"
)

// commandContext bundles what every command handler needs.
type commandContext struct {
	formatter *OutputFormatter
	logger    *log.Logger
}

func newCommandContext(cmd *cobra.Command, opts *RootOptions) *commandContext {
	return &commandContext{
		formatter: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
	}
}

// applyFunc computes a command's in-memory mutation. It returns the
// changeset and the recipe label for the transaction.
type applyFunc func(doc *document.Document) ([]graph.ChangeRecord, string, error)

// mutate runs the common sequence of every document-mutating command:
// load, backup, apply in memory, commit (log first, document second).
// A failing apply aborts before anything is persisted.
func (c *commandContext) mutate(file, command string, noBackup bool, apply applyFunc) error {
	doc, err := document.Load(file)
	if err != nil {
		return c.formatter.reportError(err)
	}

	if !noBackup {
		backup, err := document.Backup(file, command)
		if err != nil {
			return c.formatter.reportError(err)
		}
		c.logger.Debug("created backup", "path", backup)
	}

	changeset, recipeID, err := apply(doc)
	if err != nil {
		return c.formatter.reportError(err)
	}
	if len(changeset) == 0 {
		c.logger.Info("no changes to commit")
		return c.formatter.Success(map[string]any{"changes": 0})
	}

	l, err := txlog.OpenFor(file, doc)
	if err != nil {
		return c.formatter.reportError(err)
	}
	txnMUID, err := txlog.Commit(l, doc, changeset, recipeID)
	if err != nil {
		var div *txlog.DivergenceError
		if errors.As(err, &div) {
			// The log already holds the transaction; say so loudly.
			c.logger.Error("document write failed after log commit",
				"transaction", div.TransactionMUID, "err", div.Err)
		}
		return c.formatter.reportError(err)
	}

	c.logger.Info("transaction committed", "transaction", txnMUID, "changes", len(changeset))
	return c.formatter.Success(map[string]any{
		"transaction": txnMUID,
		"changes":     len(changeset),
	})
}
