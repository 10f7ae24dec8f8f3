package ops

import (
	"github.com/roach88/weave/internal/graph"
)

// addNode appends a new node. The node must carry an explicit MUID; a MUID
// already present in the store is a DUPLICATE_ENTITY failure.
type addNode struct{}

func (addNode) Name() string { return "add_node" }

func (addNode) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	data, err := params.mapParam("node_data")
	if err != nil {
		return nil, err
	}
	node := graph.Node(graph.CloneMap(data))
	muid := node.MUID()
	if muid == "" {
		return nil, graph.NewError(graph.ErrCodeOperation, "add_node requires a MUID")
	}
	if g.FindNode(muid) >= 0 {
		return nil, graph.NewErrorf(graph.ErrCodeDuplicateEntity, "node with MUID %q already exists", muid)
	}

	g.Nodes = append(g.Nodes, node)
	return []graph.ChangeRecord{{
		Action:     "add_node",
		EntityID:   muid,
		EntityType: graph.EntityNode,
		NewState:   node.Clone(),
	}}, nil
}

// updateNode merges the given fields into an existing node.
type updateNode struct{}

func (updateNode) Name() string { return "update_node" }

func (updateNode) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	muid, err := params.stringParam("muid")
	if err != nil {
		return nil, err
	}
	updates, err := params.mapParam("updates")
	if err != nil {
		return nil, err
	}
	idx := g.FindNode(muid)
	if idx < 0 {
		return nil, graph.NewErrorf(graph.ErrCodeEntityNotFound, "node with MUID %q not found", muid)
	}

	node := g.Nodes[idx]
	oldState := node.Clone()
	for key, val := range updates {
		node[key] = val
	}
	return []graph.ChangeRecord{{
		Action:     "update_node",
		EntityID:   muid,
		EntityType: graph.EntityNode,
		OldState:   oldState,
		NewState:   node.Clone(),
	}}, nil
}

// deleteNode removes a node entirely. Relations pointing at it are left in
// place; the validation engine reports them as dangling.
type deleteNode struct{}

func (deleteNode) Name() string { return "delete_node" }

func (deleteNode) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	muid, err := params.stringParam("muid")
	if err != nil {
		return nil, err
	}
	idx := g.FindNode(muid)
	if idx < 0 {
		return nil, graph.NewErrorf(graph.ErrCodeEntityNotFound, "node with MUID %q not found", muid)
	}

	oldState := g.Nodes[idx].Clone()
	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
	return []graph.ChangeRecord{{
		Action:     "delete_node",
		EntityID:   muid,
		EntityType: graph.EntityNode,
		OldState:   oldState,
	}}, nil
}
