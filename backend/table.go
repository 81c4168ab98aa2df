package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"picklist/model"
	"picklist/parsers"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// tableRow is the stored shape of an InventoryItem.
type tableRow struct {
	VFID        string `db:"vfid"`
	ProductName string `db:"product_name"`
	Location    string `db:"location"`
	SkuNumber   string `db:"sku_number"`
	Quantity    int    `db:"quantity"`
	OrdersCount int    `db:"orders_count"`
	Checked     bool   `db:"checked"`
	Notes       string `db:"notes"`
	ColumnsJSON string `db:"columns_json"`
}

func (r tableRow) toItem() model.InventoryItem {
	item := model.InventoryItem{
		ProductName: r.ProductName,
		Location:    r.Location,
		VFID:        r.VFID,
		Quantity:    r.Quantity,
		OrdersCount: r.OrdersCount,
		SkuNumber:   r.SkuNumber,
		Checked:     r.Checked,
		Notes:       r.Notes,
	}
	if r.ColumnsJSON != "" && r.ColumnsJSON != "{}" {
		var cols map[string]float64
		if err := json.Unmarshal([]byte(r.ColumnsJSON), &cols); err == nil && len(cols) > 0 {
			item.Columns = cols
		}
	}
	return item
}

func fromItem(it model.InventoryItem) (tableRow, error) {
	cols := "{}"
	if len(it.Columns) > 0 {
		b, err := json.Marshal(it.Columns)
		if err != nil {
			return tableRow{}, err
		}
		cols = string(b)
	}
	return tableRow{
		VFID:        it.VFID,
		ProductName: it.ProductName,
		Location:    it.Location,
		SkuNumber:   it.SkuNumber,
		Quantity:    it.Quantity,
		OrdersCount: it.OrdersCount,
		Checked:     it.Checked,
		Notes:       it.Notes,
		ColumnsJSON: cols,
	}, nil
}

// TableBackend keeps the picklist in a relational table (Postgres or SQLite).
type TableBackend struct {
	db         *sqlx.DB
	table      string
	notesTable string
	timeout    time.Duration
}

// OpenTableBackend connects with cfg.Driver and cfg.DSN and creates the tables if needed.
func OpenTableBackend(cfg Config) (*TableBackend, error) {
	if cfg.Driver == "" || cfg.DSN == "" {
		return nil, fmt.Errorf("table backend needs a driver and a DSN")
	}
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}
	tb, err := NewTableBackend(db, cfg.Table, cfg.NotesTable)
	if err != nil {
		db.Close()
		return nil, err
	}
	tb.timeout = cfg.Timeout

	ctx, cancel := tb.withTimeout(context.Background())
	defer cancel()
	if err := tb.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return tb, nil
}

// NewTableBackend wraps an open database. Empty table names fall back to
// picklist and item_notes.
func NewTableBackend(db *sqlx.DB, table, notesTable string) (*TableBackend, error) {
	if table == "" {
		table = "picklist"
	}
	if notesTable == "" {
		notesTable = "item_notes"
	}
	for _, name := range []string{table, notesTable} {
		if !identPattern.MatchString(name) {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return &TableBackend{db: db, table: table, notesTable: notesTable}, nil
}

func (t *TableBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *TableBackend) Name() string { return KindTable }

// EnsureSchema creates the picklist and item-notes tables when they are missing.
func (t *TableBackend) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			vfid TEXT PRIMARY KEY,
			product_name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			sku_number TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0,
			orders_count INTEGER NOT NULL DEFAULT 0,
			checked BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT NOT NULL DEFAULT '',
			columns_json TEXT NOT NULL DEFAULT '{}'
		)`, t.table),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			vfid TEXT NOT NULL,
			note_content TEXT NOT NULL DEFAULT '',
			box_type TEXT
		)`, t.notesTable),
	}
	for _, stmt := range stmts {
		if _, err := t.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (t *TableBackend) FetchAll(ctx context.Context) ([]model.InventoryItem, error) {
	var rows []tableRow
	q := fmt.Sprintf(`SELECT vfid, product_name, location, sku_number, quantity, orders_count,
		checked, notes, columns_json FROM %s ORDER BY vfid`, t.table)
	if err := t.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", t.table, err)
	}
	items := make([]model.InventoryItem, len(rows))
	for i, r := range rows {
		items[i] = r.toItem()
	}
	return items, nil
}

func (t *TableBackend) Apply(ctx context.Context, m model.Mutation) (string, error) {
	if err := ValidateMutation(m); err != nil {
		return "", err
	}

	var (
		q    string
		args []any
	)
	switch m.Action {
	case model.ActionTestConnection:
		return t.Ping(ctx)
	case model.ActionUpdateChecked:
		q = fmt.Sprintf("UPDATE %s SET checked = ? WHERE vfid = ?", t.table)
		args = []any{*m.Checked, m.VFID}
	case model.ActionUpdateNote:
		q = fmt.Sprintf("UPDATE %s SET notes = ? WHERE vfid = ?", t.table)
		args = []any{*m.Note, m.VFID}
	case model.ActionUpdateBoth:
		q = fmt.Sprintf("UPDATE %s SET checked = ?, notes = ? WHERE vfid = ?", t.table)
		args = []any{*m.Checked, *m.Note, m.VFID}
	}

	res, err := t.db.ExecContext(ctx, t.db.Rebind(q), args...)
	if err != nil {
		return "", fmt.Errorf("failed to %s: %w", m.Action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to %s: %w", m.Action, err)
	}
	if n == 0 {
		return "", notFound(m.VFID)
	}
	return successMessage(m), nil
}

// Upload replaces the table contents with the rows of the file in one
// transaction. A row keeps its stored note when the file leaves it blank and
// stays checked once checked.
func (t *TableBackend) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	items, err := parsers.ParsePicklistFile(filename, r)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%s contains no rows with a VFID", filename)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := t.replaceRowsInTx(ctx, tx, items); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit upload: %w", err)
	}
	return fmt.Sprintf("File uploaded successfully! %d items imported.", len(items)), nil
}

func (t *TableBackend) replaceRowsInTx(ctx context.Context, tx *sqlx.Tx, items []model.InventoryItem) error {
	vfids := make([]string, len(items))
	for i, it := range items {
		vfids[i] = it.VFID
	}
	if err := t.deleteMissingInTx(ctx, tx, vfids); err != nil {
		return fmt.Errorf("failed to remove rows missing from the file: %w", err)
	}

	upsert := tx.Rebind(fmt.Sprintf(`INSERT INTO %[1]s
		(vfid, product_name, location, sku_number, quantity, orders_count, checked, notes, columns_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (vfid) DO UPDATE SET
			product_name = excluded.product_name,
			location = excluded.location,
			sku_number = excluded.sku_number,
			quantity = excluded.quantity,
			orders_count = excluded.orders_count,
			checked = (%[1]s.checked OR excluded.checked),
			notes = CASE WHEN excluded.notes = '' THEN %[1]s.notes ELSE excluded.notes END,
			columns_json = excluded.columns_json`, t.table))
	stmt, err := tx.PreparexContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		row, err := fromItem(it)
		if err != nil {
			return fmt.Errorf("failed to encode columns of %s: %w", it.VFID, err)
		}
		if _, err := stmt.ExecContext(ctx, row.VFID, row.ProductName, row.Location, row.SkuNumber,
			row.Quantity, row.OrdersCount, row.Checked, row.Notes, row.ColumnsJSON); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", it.VFID, err)
		}
	}
	return nil
}

// deleteMissingInTx removes the rows whose VFID is not in vfids. The list is
// sent as one array on Postgres and staged in a temp table elsewhere, so the
// number of bind variables does not grow with the file.
func (t *TableBackend) deleteMissingInTx(ctx context.Context, tx *sqlx.Tx, vfids []string) error {
	if tx.DriverName() == "postgres" {
		_, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE vfid <> ALL($1)", t.table), pq.Array(vfids))
		return err
	}

	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS upload_vfids (vfid TEXT NOT NULL)"); err != nil {
		return err
	}
	// the temp table outlives the transaction on this connection
	if _, err := tx.ExecContext(ctx, "DELETE FROM upload_vfids"); err != nil {
		return err
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind("INSERT INTO upload_vfids (vfid) VALUES (?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, id := range vfids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE vfid NOT IN (SELECT vfid FROM upload_vfids)", t.table))
	return err
}

// ItemNotes reads the box notes recorded per VFID.
func (t *TableBackend) ItemNotes(ctx context.Context) ([]model.ItemNote, error) {
	var notes []model.ItemNote
	q := fmt.Sprintf(`SELECT vfid, note_content, COALESCE(box_type, '') AS box_type FROM %s`, t.notesTable)
	if err := t.db.SelectContext(ctx, &notes, q); err != nil {
		return nil, fmt.Errorf("failed to fetch item notes: %w", err)
	}
	return notes, nil
}

func (t *TableBackend) Ping(ctx context.Context) (string, error) {
	if err := t.db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("connection test failed: %w", err)
	}
	return "Connection test successful", nil
}

func (t *TableBackend) Close() error {
	return t.db.Close()
}
