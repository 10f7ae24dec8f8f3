package ops

import (
	"reflect"
	"time"

	"github.com/roach88/weave/internal/graph"
)

// addRelation appends a new relation, deriving its identity from the class:
// link relations get a generated LID when absent, bind relations must carry
// an explicit MUID (no silent ID generation for durable relations).
type addRelation struct{}

func (addRelation) Name() string { return "add_relation" }

func (addRelation) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	data, err := params.mapParam("relation_data")
	if err != nil {
		return nil, err
	}
	rel := graph.Relation(graph.CloneMap(data))

	class := rel.Class()
	if class == "" {
		class = graph.ClassLink
		rel[graph.FieldClass] = class
	}

	var entityID string
	switch class {
	case graph.ClassLink:
		if rel.LID() == "" {
			rel[graph.FieldLID] = graph.NewLID(time.Now())
		}
		entityID = rel.LID()
	case graph.ClassBind:
		if rel.MUID() == "" {
			return nil, graph.NewError(graph.ErrCodeOperation, `relations with class "bind" require an explicit MUID`)
		}
		entityID = rel.MUID()
	default:
		return nil, graph.NewErrorf(graph.ErrCodeOperation, "unknown relation class %q", class)
	}

	g.Relations = append(g.Relations, rel)
	return []graph.ChangeRecord{{
		Action:     "add_relation",
		EntityID:   entityID,
		EntityType: graph.EntityRelation,
		NewState:   rel.Clone(),
	}}, nil
}

// updateRelation merges fields into the first relation whose fields match
// all identity key/value pairs exactly.
type updateRelation struct{}

func (updateRelation) Name() string { return "update_relation" }

func (updateRelation) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	identity, err := params.mapParam("identity")
	if err != nil {
		return nil, err
	}
	updates, err := params.mapParam("updates")
	if err != nil {
		return nil, err
	}
	if len(identity) == 0 {
		return nil, graph.NewError(graph.ErrCodeOperation, "identity must not be empty")
	}

	idx := -1
	for i, rel := range g.Relations {
		if matchesFields(rel, identity) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, graph.NewErrorf(graph.ErrCodeEntityNotFound, "no relation matches identity %v", identity)
	}

	rel := g.Relations[idx]
	oldState := rel.Clone()
	for key, val := range updates {
		rel[key] = val
	}
	return []graph.ChangeRecord{{
		Action:     "update_relation",
		EntityID:   rel.EntityID(),
		EntityType: graph.EntityRelation,
		OldState:   oldState,
		NewState:   rel.Clone(),
	}}, nil
}

// updateRelationsByQuery merges fields into every relation whose fields are
// a superset of the query. Zero matches is a vacuous success, not an error;
// the caller sees an empty changeset.
type updateRelationsByQuery struct{}

func (updateRelationsByQuery) Name() string { return "update_relations_by_query" }

func (updateRelationsByQuery) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	query, err := params.mapParam("query")
	if err != nil {
		return nil, err
	}
	updates, err := params.mapParam("updates")
	if err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, graph.NewError(graph.ErrCodeOperation, "query must not be empty")
	}

	var changes []graph.ChangeRecord
	for _, rel := range g.Relations {
		if !matchesFields(rel, query) {
			continue
		}
		oldState := rel.Clone()
		for key, val := range updates {
			rel[key] = val
		}
		changes = append(changes, graph.ChangeRecord{
			Action:     "update_relations_by_query",
			EntityID:   rel.EntityID(),
			EntityType: graph.EntityRelation,
			OldState:   oldState,
			NewState:   rel.Clone(),
		})
	}
	return changes, nil
}

// promoteRelation is the link→bind state transition: the relation gains a
// fresh globally unique MUID, and the original LID moves to legacy_LID for
// provenance. There is no reverse transition.
type promoteRelation struct{}

func (promoteRelation) Name() string { return "promote_relation" }

func (promoteRelation) Apply(g *graph.Graph, params Params) ([]graph.ChangeRecord, error) {
	lid, err := params.stringParam("lid")
	if err != nil {
		return nil, err
	}
	idx := g.FindRelationByLID(lid)
	if idx < 0 {
		return nil, graph.NewErrorf(graph.ErrCodeEntityNotFound, "relation with LID %q not found", lid)
	}
	rel := g.Relations[idx]
	if rel.Class() != graph.ClassLink {
		return nil, graph.NewErrorf(graph.ErrCodeOperation, "relation with LID %q is not a link (class %q)", lid, rel.Class())
	}

	oldState := rel.Clone()
	muid := graph.NewMUID()
	rel[graph.FieldClass] = graph.ClassBind
	rel[graph.FieldMUID] = muid
	rel[graph.FieldLegacyLID] = lid
	delete(rel, graph.FieldLID)

	return []graph.ChangeRecord{{
		Action:     "promote_relation",
		EntityID:   muid,
		EntityType: graph.EntityRelation,
		Details:    map[string]any{"from_LID": lid},
		OldState:   oldState,
		NewState:   rel.Clone(),
	}}, nil
}

// matchesFields reports whether every key/value pair in fields is present
// in the relation with an equal value. DeepEqual keeps non-comparable
// values (nested mappings) from panicking.
func matchesFields(rel graph.Relation, fields map[string]any) bool {
	for key, want := range fields {
		got, ok := rel[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
