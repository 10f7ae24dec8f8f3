package graph

// Entity types recorded in change records.
const (
	EntityNode     = "node"
	EntityRelation = "relation"
	EntityGraph    = "graph"
	EntityLogFile  = "log_file"
)

// ChangeRecord captures a single entity-level mutation: what happened, to
// which entity, and full before/after snapshots where applicable.
// Snapshots are deep copies; they never alias live store data.
type ChangeRecord struct {
	Action     string         `json:"action"`
	EntityID   string         `json:"entity_id"`
	EntityType string         `json:"entity_type"`
	OldState   map[string]any `json:"old_state,omitempty"`
	NewState   map[string]any `json:"new_state,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// ToMap converts the change record to the plain map shape stored inside a
// transaction node's changeset.
func (c ChangeRecord) ToMap() map[string]any {
	m := map[string]any{
		"action":      c.Action,
		"entity_id":   c.EntityID,
		"entity_type": c.EntityType,
	}
	if c.OldState != nil {
		m["old_state"] = c.OldState
	}
	if c.NewState != nil {
		m["new_state"] = c.NewState
	}
	if c.Details != nil {
		m["details"] = c.Details
	}
	return m
}
