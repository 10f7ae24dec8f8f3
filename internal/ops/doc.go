// Package ops implements the atomic mutation operations over a graph store.
//
// Each operation implements the Operation interface: it takes the current
// store plus a params mapping (decoded from a recipe step or built by a
// command handler) and returns the change records for every entity it
// actually modified. Operations snapshot an entity before and after
// mutating it, so change records carry immutable old/new state without
// deep-copying the whole store.
//
// A failed operation leaves the store unchanged: all validation happens
// before the first write to the store.
//
// The Registry maps operation names to implementations. It is constructed
// once at startup and passed explicitly to the recipe executor and command
// handlers; there is no global dispatch table.
package ops
