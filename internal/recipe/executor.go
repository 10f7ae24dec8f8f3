package recipe

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/ops"
)

// Result is the outcome of one recipe run.
type Result struct {
	// Changeset collects the change records of all executed steps, in
	// step order.
	Changeset []graph.ChangeRecord

	// Skipped lists the operation names of steps skipped because no such
	// operation is registered.
	Skipped []string
}

// Execute applies the recipe's steps in order against the registry.
//
// Unknown operations are skipped with a warning and execution continues
// (deliberate leniency, so a recipe written for a newer operation set
// still partially applies). A FAILING known operation aborts the whole
// run: the caller must discard the store without persisting, so either
// every step up to the end commits as one transaction or nothing does.
func Execute(g *graph.Graph, r *Recipe, registry *ops.Registry, logger *log.Logger) (*Result, error) {
	result := &Result{}

	for i, step := range r.Steps {
		op, ok := registry.Get(step.Operation)
		if !ok {
			logger.Warn("skipping unknown operation", "step", i+1, "operation", step.Operation)
			result.Skipped = append(result.Skipped, step.Operation)
			continue
		}

		logger.Debug("applying step", "step", i+1, "operation", step.Operation)
		changes, err := op.Apply(g, ops.Params(step.Params))
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Operation, err)
		}
		if len(changes) == 0 {
			logger.Warn("step matched no entities", "step", i+1, "operation", step.Operation)
		}
		result.Changeset = append(result.Changeset, changes...)
	}

	return result, nil
}
