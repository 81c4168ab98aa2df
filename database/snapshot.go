// database/snapshot.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"picklist/model"
)

// SnapshotRepo keeps the last known picklist in the local SQLite file.
type SnapshotRepo struct {
	db *sqlx.DB
}

func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

type snapshotRow struct {
	Position int    `db:"position"`
	VFID     string `db:"vfid"`
	ItemJSON string `db:"item_json"`
}

// Load returns the rows in their saved order.
func (r *SnapshotRepo) Load(ctx context.Context) ([]model.InventoryItem, error) {
	var rows []snapshotRow
	const q = `SELECT position, vfid, item_json FROM picklist_snapshot ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	items := make([]model.InventoryItem, 0, len(rows))
	for _, row := range rows {
		var it model.InventoryItem
		if err := json.Unmarshal([]byte(row.ItemJSON), &it); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot row %s: %w", row.VFID, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Save replaces the stored snapshot in one transaction.
func (r *SnapshotRepo) Save(ctx context.Context, items []model.InventoryItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ReplaceSnapshotInTx(ctx, tx, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// ReplaceSnapshotInTx deletes the stored rows and inserts items in order.
func ReplaceSnapshotInTx(ctx context.Context, tx *sqlx.Tx, items []model.InventoryItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM picklist_snapshot`); err != nil {
		return fmt.Errorf("ReplaceSnapshotInTx delete failed: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO picklist_snapshot (position, vfid, item_json) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ReplaceSnapshotInTx prepare failed: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("ReplaceSnapshotInTx encode (VFID: %s) failed: %w", it.VFID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, it.VFID, string(b)); err != nil {
			return fmt.Errorf("ReplaceSnapshotInTx insert (VFID: %s) failed: %w", it.VFID, err)
		}
	}
	return nil
}

// SnapshotCount is the number of stored rows.
func SnapshotCount(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM picklist_snapshot`); err != nil {
		return 0, fmt.Errorf("SnapshotCount failed: %w", err)
	}
	return n, nil
}
