package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check graph integrity and persist the issue list",
		Long: `Run the integrity checks (duplicate nodes, duplicate relations,
dangling relation endpoints) against the document.

The issue list is written into the document's validation_issues property
and logged as a transaction only when it differs from the stored one, so
repeated runs on an unchanged document do not churn the log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCommandContext(cmd, rootOpts)
			return c.mutate(file, "validate", noBackup, func(doc *document.Document) ([]graph.ChangeRecord, string, error) {
				return runValidation(c, doc)
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the SG document")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the safety backup")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runValidation(c *commandContext, doc *document.Document) ([]graph.ChangeRecord, string, error) {
	issues := validate.Run(doc.Graph)
	for _, issue := range issues {
		c.logger.Warn(issue.Message, "code", issue.Code, "severity", issue.Severity)
	}
	if len(issues) == 0 {
		c.logger.Info("all checks passed")
	}

	stored := doc.Graph.Props[graph.PropValidationIssues]
	if validate.EqualToStored(issues, stored) {
		c.logger.Debug("issue list unchanged, nothing to persist")
		return nil, "", nil
	}

	oldState := map[string]any{graph.PropValidationIssues: stored}
	var newProperty any
	if len(issues) == 0 {
		delete(doc.Graph.Props, graph.PropValidationIssues)
	} else {
		newProperty = validate.ToProperty(issues)
		doc.Graph.Props[graph.PropValidationIssues] = newProperty
	}

	changeset := []graph.ChangeRecord{{
		Action:     "validate_graph",
		EntityID:   "graph_meta",
		EntityType: graph.EntityGraph,
		Details:    map[string]any{"issues_found": len(issues)},
		OldState:   oldState,
		NewState:   map[string]any{graph.PropValidationIssues: newProperty},
	}}
	return changeset, "validation_run", nil
}
