// Package history replays a transaction log into a SQLite index and
// answers per-entity history queries. The index is derived data: it is
// rebuilt from the log on every run and never written back to the log or
// the document.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/weave/internal/graph"
	"github.com/roach88/weave/internal/txlog"
)

//go:embed schema.sql
var schemaSQL string

// Index is a SQLite-backed view over a replayed transaction log.
type Index struct {
	db *sql.DB
}

// Open creates or opens the index database at path. Use ":memory:" for a
// throwaway index. The connection is configured for a single writer.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect index: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY during replay.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Replay loads every transaction node of the log graph into the index.
// Idempotent: replaying the same log twice inserts nothing new
// (ON CONFLICT DO NOTHING on the transaction MUID).
func (ix *Index) Replay(ctx context.Context, logGraph *graph.Graph) (int, error) {
	replayed := 0
	for _, node := range logGraph.Nodes {
		if node.Type() != txlog.TypeTransaction {
			continue
		}
		if err := ix.insertTransaction(ctx, node); err != nil {
			return replayed, err
		}
		replayed++
	}
	return replayed, nil
}

func (ix *Index) insertTransaction(ctx context.Context, node graph.Node) error {
	muid := node.MUID()
	timestamp, _ := node["timestamp"].(string)
	recipeID, _ := node["recipe_id"].(string)

	res, err := ix.db.ExecContext(ctx, `
		INSERT INTO transactions (muid, timestamp, recipe_id)
		VALUES (?, ?, ?)
		ON CONFLICT(muid) DO NOTHING
	`, muid, timestamp, recipeID)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", muid, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already indexed; the changeset rows are too.
		return nil
	}

	changeset, _ := node["changeset"].([]any)
	for seq, raw := range changeset {
		change, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		action, _ := change["action"].(string)
		entityID, _ := change["entity_id"].(string)
		entityType, _ := change["entity_type"].(string)

		_, err := ix.db.ExecContext(ctx, `
			INSERT INTO changes (transaction_muid, seq, action, entity_id, entity_type)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(transaction_muid, seq) DO NOTHING
		`, muid, seq, action, entityID, entityType)
		if err != nil {
			return fmt.Errorf("insert change %s[%d]: %w", muid, seq, err)
		}
	}
	return nil
}

// Entry is one transaction that touched the queried entity.
type Entry struct {
	TransactionMUID string `json:"transaction_muid"`
	Timestamp       string `json:"timestamp"`
	RecipeID        string `json:"recipe_id"`
	Action          string `json:"action"`
	EntityType      string `json:"entity_type"`
}

// Entity returns the change history of an entity in timestamp order, ties
// broken by transaction MUID for deterministic output.
func (ix *Index) Entity(ctx context.Context, entityID string) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT t.muid, t.timestamp, t.recipe_id, c.action, c.entity_type
		FROM changes c
		JOIN transactions t ON t.muid = c.transaction_muid
		WHERE c.entity_id = ?
		ORDER BY t.timestamp ASC, t.muid ASC, c.seq ASC
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("query entity %s: %w", entityID, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TransactionMUID, &e.Timestamp, &e.RecipeID, &e.Action, &e.EntityType); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
