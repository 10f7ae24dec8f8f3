package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/ops"
	"github.com/roach88/weave/internal/recipe"
)

// NewBatchModifyCommand creates the batch-modify command.
func NewBatchModifyCommand(rootOpts *RootOptions) *cobra.Command {
	var file, recipePath string
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "batch-modify",
		Short: "Apply a recipe of operations as one transaction",
		Long: `Apply an ordered recipe of named operations against the document.

Steps naming an unknown operation are skipped with a warning; a failing
known operation aborts the whole run with nothing persisted. All change
records of the run commit as a single transaction labeled with the
recipe's file name, and the document is saved once, after all steps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)

			r, err := recipe.Load(recipePath)
			if err != nil {
				return c.formatter.reportError(err)
			}
			if r.Description != "" {
				c.logger.Info("recipe loaded", "name", r.Name, "description", r.Description)
			}

			registry := ops.NewRegistry()
			return c.mutate(file, "batch-modify", noBackup, func(doc *document.Document) ([]graph.ChangeRecord, string, error) {
				result, err := recipe.Execute(doc.Graph, r, registry, c.logger)
				if err != nil {
					return nil, "", err
				}
				return result.Changeset, r.Name, nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	cmd.Flags().StringVar(&recipePath, "recipe", "", "path to the recipe file (YAML or JSON)")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the safety backup")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("recipe")
	return cmd
}
