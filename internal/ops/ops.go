package ops

import (
	"sort"

	"github.com/roach88/weave/internal/graph"
)

// Params holds the typed parameters of one operation invocation, as decoded
// from a recipe step or built directly by a command handler.
type Params map[string]any

// stringParam returns the named string parameter. Missing or wrongly typed
// values yield an OPERATION_ERROR.
func (p Params) stringParam(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", graph.NewErrorf(graph.ErrCodeOperation, "missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", graph.NewErrorf(graph.ErrCodeOperation, "parameter %q must be a string, got %T", key, v)
	}
	return s, nil
}

// mapParam returns the named mapping parameter.
func (p Params) mapParam(key string) (map[string]any, error) {
	v, ok := p[key]
	if !ok {
		return nil, graph.NewErrorf(graph.ErrCodeOperation, "missing required parameter %q", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, graph.NewErrorf(graph.ErrCodeOperation, "parameter %q must be a mapping, got %T", key, v)
	}
	return m, nil
}

// conditionParam resolves the where.condition predicate. The "where" block
// is required; a missing block or an unknown condition name is an
// OPERATION_ERROR.
func (p Params) conditionParam() (Condition, error) {
	v, ok := p["where"]
	if !ok {
		return nil, graph.NewError(graph.ErrCodeOperation, `missing "where" block with a named condition`)
	}
	where, ok := v.(map[string]any)
	if !ok {
		return nil, graph.NewErrorf(graph.ErrCodeOperation, `"where" must be a mapping, got %T`, v)
	}
	name, _ := where["condition"].(string)
	cond, ok := conditions[name]
	if !ok {
		return nil, graph.NewErrorf(graph.ErrCodeOperation, "unknown condition: %q", name)
	}
	return cond, nil
}

// Operation is a single atomic mutation capability over a graph store.
type Operation interface {
	// Name is the operation's registry key, as referenced by recipes.
	Name() string

	// Apply mutates g according to params and returns one change record
	// per entity actually modified. On error, g is unchanged.
	Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error)
}

// Registry maps operation names to implementations. Built once at startup;
// read-only afterwards.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry constructs the registry with the full operation set.
func NewRegistry() *Registry {
	r := &Registry{ops: map[string]Operation{}}
	for _, op := range []Operation{
		addNode{},
		updateNode{},
		deleteNode{},
		addRelation{},
		updateRelation{},
		updateRelationsByQuery{},
		promoteRelation{},
		addNodeField{},
		copyField{},
		setFieldFromGeneratedUUID{},
		addLIDToAllLinks{},
	} {
		r.ops[op.Name()] = op
	}
	return r
}

// Get returns the operation registered under name.
func (r *Registry) Get(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns all registered operation names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
