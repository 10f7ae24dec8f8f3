package graph

import (
	"fmt"
)

// Well-known entity fields. Everything else is passed through opaquely.
const (
	FieldMUID      = "MUID"
	FieldLID       = "LID"
	FieldLegacyLID = "legacy_LID"
	FieldAlias     = "alias"
	FieldType      = "type"
	FieldClass     = "class"
	FieldFrom      = "from_MUID"
	FieldTo        = "to_MUID"
)

// Relation classes.
const (
	ClassLink = "link"
	ClassBind = "bind"
)

// Reserved top-level properties of a graph document.
const (
	PropValidationIssues = "validation_issues"
	PropLogHistory       = "log_history"
)

// Node is a graph node: an open mapping keyed by attribute name.
type Node map[string]any

// MUID returns the node's globally unique identifier, or "" if unset.
func (n Node) MUID() string { return stringField(n, FieldMUID) }

// Type returns the node's type attribute, or "" if unset.
func (n Node) Type() string { return stringField(n, FieldType) }

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	if n == nil {
		return nil
	}
	return Node(cloneValue(map[string]any(n)).(map[string]any))
}

// Relation is a typed edge between two nodes, an open mapping like Node.
type Relation map[string]any

// Class returns the relation class ("link" or "bind"), or "" if unset.
func (r Relation) Class() string { return stringField(r, FieldClass) }

// MUID returns the relation's MUID (bind relations), or "" if unset.
func (r Relation) MUID() string { return stringField(r, FieldMUID) }

// LID returns the relation's LID (link relations), or "" if unset.
func (r Relation) LID() string { return stringField(r, FieldLID) }

// From returns the source node MUID.
func (r Relation) From() string { return stringField(r, FieldFrom) }

// To returns the target node MUID.
func (r Relation) To() string { return stringField(r, FieldTo) }

// Type returns the relation type, or "" if unset.
func (r Relation) Type() string { return stringField(r, FieldType) }

// EntityID returns the relation's identity: MUID if present, else LID.
func (r Relation) EntityID() string {
	if muid := r.MUID(); muid != "" {
		return muid
	}
	return r.LID()
}

// Clone returns a deep copy of the relation.
func (r Relation) Clone() Relation {
	if r == nil {
		return nil
	}
	return Relation(cloneValue(map[string]any(r)).(map[string]any))
}

// Graph is the in-memory representation of one SG document's data block:
// nodes, relations, and any other top-level properties.
type Graph struct {
	Nodes     []Node
	Relations []Relation
	Props     map[string]any
}

// New returns an empty graph with initialized collections.
func New() *Graph {
	return &Graph{
		Nodes:     []Node{},
		Relations: []Relation{},
		Props:     map[string]any{},
	}
}

// FindNode returns the index of the first node with the given MUID, or -1.
func (g *Graph) FindNode(muid string) int {
	for i, n := range g.Nodes {
		if n.MUID() == muid {
			return i
		}
	}
	return -1
}

// FindRelationByLID returns the index of the first relation with the given
// LID, or -1.
func (g *Graph) FindRelationByLID(lid string) int {
	for i, r := range g.Relations {
		if r.LID() == lid {
			return i
		}
	}
	return -1
}

// NodeMUIDs returns the set of all node MUIDs currently in the store.
// Nodes without a MUID are skipped.
func (g *Graph) NodeMUIDs() map[string]bool {
	set := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if muid := n.MUID(); muid != "" {
			set[muid] = true
		}
	}
	return set
}

// FromMap builds a Graph from a decoded JSON data block. The "nodes" and
// "relations" arrays become typed collections; every other key is kept in
// Props verbatim.
func FromMap(m map[string]any) (*Graph, error) {
	g := New()
	for key, val := range m {
		switch key {
		case "nodes":
			items, err := entityList(key, val)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				g.Nodes = append(g.Nodes, Node(item))
			}
		case "relations":
			items, err := entityList(key, val)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				g.Relations = append(g.Relations, Relation(item))
			}
		default:
			g.Props[key] = val
		}
	}
	return g, nil
}

// ToMap converts the graph back to the plain map shape of the JSON block.
// The inverse of FromMap.
func (g *Graph) ToMap() map[string]any {
	m := make(map[string]any, len(g.Props)+2)
	for key, val := range g.Props {
		m[key] = val
	}
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = map[string]any(n)
	}
	relations := make([]any, len(g.Relations))
	for i, r := range g.Relations {
		relations[i] = map[string]any(r)
	}
	m["nodes"] = nodes
	m["relations"] = relations
	return m
}

func entityList(key string, val any) ([]map[string]any, error) {
	raw, ok := val.([]any)
	if !ok {
		return nil, NewError(ErrCodeDocumentParse, fmt.Sprintf("%q must be a list, got %T", key, val))
	}
	items := make([]map[string]any, 0, len(raw))
	for i, elem := range raw {
		item, ok := elem.(map[string]any)
		if !ok {
			return nil, NewError(ErrCodeDocumentParse, fmt.Sprintf("%s[%d] must be an object, got %T", key, i, elem))
		}
		items = append(items, item)
	}
	return items, nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// cloneValue deep-copies the JSON-shaped value graph (maps, slices,
// scalars). Used for entity snapshots in change records.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a JSON-shaped map. Exposed for change-record
// snapshots taken outside this package.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return cloneValue(m).(map[string]any)
}
