package txlog

import (
	"fmt"
	"time"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
)

// Node and relation types used inside the log graph.
const (
	TypeTransaction    = "Transaction"
	TypeHistoryAnchor  = "HistoryAnchor"
	TypeIncludesChange = "includes_change"
)

// anchorPrefix forms HistoryAnchor MUIDs: ha_<entity_id>.
const anchorPrefix = "ha_"

// Log is the in-memory transaction log bound to its document.
type Log struct {
	Doc *document.Document
}

// OpenFor loads (or initializes) the external log for the given SG file.
// A missing log file yields an empty log whose header is derived from the
// parent; the file itself is only created on first commit.
func OpenFor(sgPath string, parent *document.Document) (*Log, error) {
	doc, err := document.LoadLog(document.LogPath(sgPath))
	if err != nil {
		return nil, err
	}
	l := &Log{Doc: doc}
	if doc.Content == "" {
		l.initHeader(parent)
	}
	return l, nil
}

// FromEmbedded builds a Log from the log_history data popped out of a
// parent document. Used by Detach.
func FromEmbedded(path string, data map[string]any, parent *document.Document) (*Log, error) {
	g, err := graph.FromMap(data)
	if err != nil {
		return nil, fmt.Errorf("embedded log: %w", err)
	}
	l := &Log{Doc: &document.Document{Path: path, Graph: g}}
	l.initHeader(parent)
	return l, nil
}

func (l *Log) initHeader(parent *document.Document) {
	title := parent.Header.Title
	if title == "" {
		title = "Semantic Graph"
	}
	l.Doc.Header = document.Header{
		Title:      title + " — Log",
		ParentMUID: parent.Header.MUID,
		Format:     document.FormatVersion,
	}
}

// RecordTransaction appends one transaction carrying the changeset and
// wires history anchors for every touched entity. An empty changeset is a
// no-op: the log is not touched and "" is returned.
func (l *Log) RecordTransaction(changeset []graph.ChangeRecord, recipeID string) string {
	if len(changeset) == 0 {
		return ""
	}

	now := time.Now()
	txnMUID := graph.NewTransactionMUID(now)

	changes := make([]any, len(changeset))
	for i, c := range changeset {
		changes[i] = c.ToMap()
	}
	l.Doc.Graph.Nodes = append(l.Doc.Graph.Nodes, graph.Node{
		graph.FieldMUID: txnMUID,
		graph.FieldType: TypeTransaction,
		"timestamp":     now.Format(time.RFC3339),
		"recipe_id":     recipeID,
		"changeset":     changes,
	})

	// One anchor per distinct touched entity, created lazily.
	linked := map[string]bool{}
	for _, change := range changeset {
		if change.EntityID == "" || change.EntityType == "" {
			continue
		}
		anchorMUID := l.ensureAnchor(change.EntityID, change.EntityType)
		if linked[anchorMUID] {
			continue
		}
		linked[anchorMUID] = true
		l.Doc.Graph.Relations = append(l.Doc.Graph.Relations, graph.Relation{
			graph.FieldClass: graph.ClassLink,
			graph.FieldLID:   fmt.Sprintf("l_ha_%s_to_%s", anchorMUID, txnMUID),
			graph.FieldFrom:  anchorMUID,
			graph.FieldTo:    txnMUID,
			graph.FieldType:  TypeIncludesChange,
		})
	}

	return txnMUID
}

// ensureAnchor finds or creates the HistoryAnchor for an entity and
// returns its MUID.
func (l *Log) ensureAnchor(entityID, entityType string) string {
	anchorMUID := anchorPrefix + entityID
	if l.Doc.Graph.FindNode(anchorMUID) >= 0 {
		return anchorMUID
	}
	l.Doc.Graph.Nodes = append(l.Doc.Graph.Nodes, graph.Node{
		graph.FieldMUID: anchorMUID,
		graph.FieldType: TypeHistoryAnchor,
		"entity_ID":     entityID,
		"entity_type":   entityType,
	})
	return anchorMUID
}

// DivergenceError reports a committed log transaction whose main-document
// write failed. The document no longer matches the log; reconciliation is
// manual (there is no automatic recovery path).
type DivergenceError struct {
	TransactionMUID string
	Err             error
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("transaction %s is committed to the log but the document write failed: %v; reconcile manually", e.TransactionMUID, e.Err)
}

func (e *DivergenceError) Unwrap() error { return e.Err }

// Commit persists the changeset: records one transaction, writes the log
// file, then writes the main document. The log write is the point of no
// return — a subsequent document-write failure returns a DivergenceError
// naming the already-committed transaction.
//
// An empty changeset commits nothing and writes nothing.
func Commit(l *Log, parent *document.Document, changeset []graph.ChangeRecord, recipeID string) (string, error) {
	txnMUID := l.RecordTransaction(changeset, recipeID)
	if txnMUID == "" {
		return "", nil
	}

	if err := document.Save(l.Doc); err != nil {
		return "", fmt.Errorf("write log: %w", err)
	}
	if err := document.Save(parent); err != nil {
		return txnMUID, &DivergenceError{TransactionMUID: txnMUID, Err: err}
	}
	return txnMUID, nil
}
