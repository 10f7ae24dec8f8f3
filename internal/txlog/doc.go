// Package txlog implements the append-only transaction log and its
// lifecycle.
//
// The log is itself a graph document: transactions are nodes of type
// "Transaction", and every entity ever touched gets one synthetic
// "HistoryAnchor" node connected to each touching transaction by a link
// relation of type "includes_change". Anchors give a secondary index from
// entity to change history without mutating the entity itself.
//
// # Commit ordering
//
// The log is always written to disk before the main document. The log is
// the authoritative record of intent: if the main-document write fails
// afterwards, the log still shows the change was decided, which enables
// manual reconciliation. The ordering does NOT make the two writes atomic;
// a failed second write leaves a permanent divergence that is surfaced as
// a DivergenceError and must be reconciled by hand.
//
// # Lifecycle
//
// Relative to its parent document a log is in exactly one of three states:
// external (own file next to the parent), embedded (nested under the
// parent's log_history property), or archived (a renamed past external
// log). Archive, Bundle, and Detach move between those states; each is a
// sequence of filesystem steps with no rollback on partial failure.
package txlog
