// Package graph implements the in-memory semantic graph store.
//
// A Graph holds nodes, relations, and top-level document properties as
// loaded from an SG document's JSON block. Nodes and relations are open
// mappings: attributes the engine does not know about survive a full
// load/mutate/save cycle untouched.
//
// Identity model:
//   - Nodes carry a MUID (globally unique). Uniqueness is NOT enforced at
//     insert time on every path; it is surfaced by the validation engine
//     (optimistic mutation, pessimistic validation).
//   - Relations come in two classes: "link" (ephemeral, identified by a
//     generated LID) and "bind" (durable, identified by an explicit MUID).
//
// Mutation happens exclusively through the operation engine (internal/ops),
// which records a ChangeRecord per touched entity. The graph package itself
// only provides lookups, snapshots, and the structural conversions used by
// the document codec.
package graph
