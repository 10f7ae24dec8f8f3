package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/ops"
)

// NewPromoteRelationCommand creates the promote-relation command.
func NewPromoteRelationCommand(rootOpts *RootOptions) *cobra.Command {
	var file, lid string
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "promote-relation",
		Short: "Promote a link relation to a durable bind",
		Long: `Promote the link relation identified by --lid to class "bind".

The relation receives a fresh globally unique MUID and its LID moves to
legacy_LID for provenance. Promoting a relation that is already a bind
fails; there is no reverse transition.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)
			registry := ops.NewRegistry()
			op, _ := registry.Get("promote_relation")

			return c.mutate(file, "promote-relation", noBackup, func(doc *document.Document) ([]graph.ChangeRecord, string, error) {
				changes, err := op.Apply(doc.Graph, ops.Params{"lid": lid})
				if err != nil {
					return nil, "", err
				}
				return changes, "promote_cmd_" + lid, nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	cmd.Flags().StringVar(&lid, "lid", "", "LID of the link relation to promote")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the safety backup")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("lid")
	return cmd
}
