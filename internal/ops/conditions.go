package ops

import (
	"github.com/roach88/weave/internal/graph"
)

// Condition is a per-node predicate gating bulk schema-evolution
// operations.
type Condition func(graph.Node) bool

// conditions names the predicates a recipe may reference in a "where"
// block.
var conditions = map[string]Condition{
	// is_not_uuid matches nodes whose MUID is not yet a canonical UUID,
	// i.e. identifiers still pending migration.
	"is_not_uuid": func(n graph.Node) bool {
		return !graph.IsUUID(n.MUID())
	},
}
