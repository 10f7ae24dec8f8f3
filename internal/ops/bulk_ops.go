package ops

import (
	"time"

	"github.com/roach88/weave/internal/graph"
)

// Bulk schema-evolution operations. Each scans the whole store, applies a
// per-entity transform gated by an optional named condition, and emits one
// change record per entity actually modified. Skipped entities produce no
// record.

// addNodeField sets a field with a default value on every node that does
// not already carry it.
type addNodeField struct{}

func (addNodeField) Name() string { return "add_node_field" }

func (addNodeField) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	fieldName, err := params.stringParam("field_name")
	if err != nil {
		return nil, err
	}
	defaultValue := params["default_value"] // nil is a valid default

	var changes []graph.ChangeRecord
	for _, node := range g.Nodes {
		if _, exists := node[fieldName]; exists {
			continue
		}
		oldState := node.Clone()
		node[fieldName] = defaultValue
		changes = append(changes, graph.ChangeRecord{
			Action:     "add_node_field",
			EntityID:   node.MUID(),
			EntityType: graph.EntityNode,
			Details:    map[string]any{"field_name": fieldName},
			OldState:   oldState,
			NewState:   node.Clone(),
		})
	}
	return changes, nil
}

// copyField copies the value of one field into another on every node
// matching the named condition.
type copyField struct{}

func (copyField) Name() string { return "copy_field" }

func (copyField) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	sourceField, err := params.stringParam("source_field")
	if err != nil {
		return nil, err
	}
	targetField, err := params.stringParam("target_field")
	if err != nil {
		return nil, err
	}
	cond, err := params.conditionParam()
	if err != nil {
		return nil, err
	}

	var changes []graph.ChangeRecord
	for _, node := range g.Nodes {
		src, hasSource := node[sourceField]
		if !hasSource || !cond(node) {
			continue
		}
		oldState := node.Clone()
		node[targetField] = src
		changes = append(changes, graph.ChangeRecord{
			Action:     "copy_field",
			EntityID:   node.MUID(),
			EntityType: graph.EntityNode,
			Details:    map[string]any{"source": sourceField, "target": targetField},
			OldState:   oldState,
			NewState:   node.Clone(),
		})
	}
	return changes, nil
}

// setFieldFromGeneratedUUID assigns a fresh UUID to a field on every node
// matching the named condition. Used to backfill canonical identifiers
// during identifier migration.
type setFieldFromGeneratedUUID struct{}

func (setFieldFromGeneratedUUID) Name() string { return "set_field_from_generated_uuid" }

func (setFieldFromGeneratedUUID) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	targetField, err := params.stringParam("target_field")
	if err != nil {
		return nil, err
	}
	cond, err := params.conditionParam()
	if err != nil {
		return nil, err
	}

	var changes []graph.ChangeRecord
	for _, node := range g.Nodes {
		if !cond(node) {
			continue
		}
		oldState := node.Clone()
		node[targetField] = graph.NewMUID()
		changes = append(changes, graph.ChangeRecord{
			Action: "set_field_from_generated_uuid",
			// The pre-migration MUID is still the entity's identity here.
			EntityID:   graph.Node(oldState).MUID(),
			EntityType: graph.EntityNode,
			Details:    map[string]any{"target_field": targetField},
			OldState:   oldState,
			NewState:   node.Clone(),
		})
	}
	return changes, nil
}

// addLIDToAllLinks assigns a generated LID to every link relation that is
// missing one.
type addLIDToAllLinks struct{}

func (addLIDToAllLinks) Name() string { return "add_lid_to_all_links" }

func (addLIDToAllLinks) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	var changes []graph.ChangeRecord
	for _, rel := range g.Relations {
		if rel.Class() != graph.ClassLink || rel.LID() != "" {
			continue
		}
		oldState := rel.Clone()
		rel[graph.FieldLID] = graph.NewLID(time.Now())
		changes = append(changes, graph.ChangeRecord{
			Action:     "add_lid_to_all_links",
			EntityID:   rel.LID(),
			EntityType: graph.EntityRelation,
			OldState:   oldState,
			NewState:   rel.Clone(),
		})
	}
	return changes, nil
}
