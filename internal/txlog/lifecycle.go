package txlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
)

// Breadcrumb actions recorded across lifecycle boundaries.
const (
	ActionLogArchived = "log_archived"
	ActionLogBundled  = "log_bundled"
	ActionLogDetached = "log_detached"
)

// logMetaEntity anchors lifecycle breadcrumbs in the log's history index.
const logMetaEntity = "log_meta"

// ArchiveResult reports what Archive did.
type ArchiveResult struct {
	ArchivePath     string
	LogPath         string
	TransactionMUID string
}

// Archive renames the active external log to its archive name and starts a
// fresh log containing one breadcrumb transaction that references the
// archived file, so the transaction chain stays traceable across the
// boundary.
//
// Preconditions: the log must be external (not embedded) and its file must
// exist. The parent document is not modified.
func Archive(sgPath string) (*ArchiveResult, error) {
	parent, err := document.Load(sgPath)
	if err != nil {
		return nil, err
	}
	if _, embedded := parent.Graph.Props[graph.PropLogHistory]; embedded {
		return nil, graph.NewError(graph.ErrCodePrecondition, "log is embedded in the document; run detach-log first")
	}

	logPath := document.LogPath(sgPath)
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return nil, graph.NewErrorf(graph.ErrCodePrecondition, "active log file not found: %s", logPath)
	}

	archivePath := document.ArchivePath(logPath, time.Now())
	if err := os.Rename(logPath, archivePath); err != nil {
		return nil, fmt.Errorf("archive log: %w", err)
	}

	// The rename happened, so OpenFor sees no file and starts fresh.
	l, err := OpenFor(sgPath, parent)
	if err != nil {
		return nil, err
	}
	txnMUID := l.RecordTransaction([]graph.ChangeRecord{{
		Action:     ActionLogArchived,
		EntityID:   logMetaEntity,
		EntityType: graph.EntityLogFile,
		Details: map[string]any{
			"archived_log_path": filepath.Base(archivePath),
			"message":           "Start of a new log file. Previous history is in the referenced archive.",
		},
	}}, "archive_log_operation")
	if err := document.Save(l.Doc); err != nil {
		return nil, fmt.Errorf("write new log: %w", err)
	}

	return &ArchiveResult{ArchivePath: archivePath, LogPath: logPath, TransactionMUID: txnMUID}, nil
}

// BundleResult reports what Bundle did.
type BundleResult struct {
	LogPath         string
	TransactionMUID string
}

// Bundle moves the external log inside the parent document under the
// log_history property and deletes the external file. A log_bundled
// breadcrumb is appended to the log before it is embedded.
//
// Preconditions: no log_history already embedded, the external log file
// exists, and no archive files are present (archives must be handled
// manually first).
func Bundle(sgPath string) (*BundleResult, error) {
	logPath := document.LogPath(sgPath)

	hasArchives, err := document.HasArchives(logPath)
	if err != nil {
		return nil, err
	}
	if hasArchives {
		return nil, graph.NewError(graph.ErrCodePrecondition, "archived log files present; collect them manually before bundling")
	}
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return nil, graph.NewErrorf(graph.ErrCodePrecondition, "external log file not found: %s", logPath)
	}

	parent, err := document.Load(sgPath)
	if err != nil {
		return nil, err
	}
	if _, embedded := parent.Graph.Props[graph.PropLogHistory]; embedded {
		return nil, graph.NewError(graph.ErrCodePrecondition, "document already contains an embedded log")
	}

	l, err := OpenFor(sgPath, parent)
	if err != nil {
		return nil, err
	}
	txnMUID := l.RecordTransaction([]graph.ChangeRecord{{
		Action:     ActionLogBundled,
		EntityID:   logMetaEntity,
		EntityType: graph.EntityLogFile,
		Details:    map[string]any{"message": "Log was bundled into the parent document."},
	}}, "bundle_log_operation")

	parent.Graph.Props[graph.PropLogHistory] = l.Doc.Graph.ToMap()

	if err := document.Save(parent); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	// The embedded copy is durable; the external file is now redundant.
	if err := os.Remove(logPath); err != nil {
		return nil, fmt.Errorf("remove external log: %w", err)
	}

	return &BundleResult{LogPath: logPath, TransactionMUID: txnMUID}, nil
}

// DetachResult reports what Detach did.
type DetachResult struct {
	LogPath         string
	TransactionMUID string
}

// Detach pops the embedded log_history out of the parent document, writes
// it as a new external log file with a log_detached breadcrumb, then
// persists the parent without log_history.
//
// Preconditions: log_history is present and no external log file exists.
func Detach(sgPath string) (*DetachResult, error) {
	logPath := document.LogPath(sgPath)
	if _, err := os.Stat(logPath); err == nil {
		return nil, graph.NewErrorf(graph.ErrCodePrecondition, "external log file already exists: %s", logPath)
	}

	parent, err := document.Load(sgPath)
	if err != nil {
		return nil, err
	}
	raw, embedded := parent.Graph.Props[graph.PropLogHistory]
	if !embedded {
		return nil, graph.NewError(graph.ErrCodePrecondition, "document contains no embedded log")
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, graph.NewErrorf(graph.ErrCodeDocumentParse, "log_history must be a mapping, got %T", raw)
	}
	delete(parent.Graph.Props, graph.PropLogHistory)

	l, err := FromEmbedded(logPath, data, parent)
	if err != nil {
		return nil, err
	}
	txnMUID := l.RecordTransaction([]graph.ChangeRecord{{
		Action:     ActionLogDetached,
		EntityID:   logMetaEntity,
		EntityType: graph.EntityLogFile,
		Details:    map[string]any{"message": "Log was detached into an external file."},
	}}, "detach_log_operation")

	if err := document.Save(l.Doc); err != nil {
		return nil, fmt.Errorf("write log: %w", err)
	}
	if err := document.Save(parent); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	return &DetachResult{LogPath: logPath, TransactionMUID: txnMUID}, nil
}
