package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picklist/loader"
	"picklist/model"
)

func TestSnapshotRepoRoundTrip(t *testing.T) {
	db, err := loader.OpenDatabase(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepo(db)
	ctx := context.Background()

	items, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	saved := []model.InventoryItem{
		{VFID: "VF2", Location: "B5", Checked: true, Notes: "bag", Columns: map[string]float64{"3": 1.5}},
		{VFID: "VF1", Location: "A1", ProductName: "Mug", OrdersCount: 2},
	}
	require.NoError(t, repo.Save(ctx, saved))

	items, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, items)

	require.NoError(t, repo.Save(ctx, saved[1:]))
	n, err := SnapshotCount(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSnapshotRepoErrors(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	repo := NewSnapshotRepo(sqlx.NewDb(raw, "sqlmock"))
	ctx := context.Background()

	mock.ExpectQuery("SELECT position, vfid, item_json FROM picklist_snapshot").
		WillReturnRows(sqlmock.NewRows([]string{"position", "vfid", "item_json"}).AddRow(0, "VF1", "{not json"))
	_, err = repo.Load(ctx)
	assert.ErrorContains(t, err, "VF1")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM picklist_snapshot").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()
	err = repo.Save(ctx, []model.InventoryItem{{VFID: "VF1"}})
	assert.ErrorContains(t, err, "disk full")

	assert.NoError(t, mock.ExpectationsWereMet())
}
