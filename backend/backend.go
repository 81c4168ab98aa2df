// Package backend talks to the external store that owns the picklist: a
// spreadsheet script endpoint or a relational table.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"picklist/model"
)

// ErrNotFound is returned when a mutation names a VFID the store does not have.
var ErrNotFound = errors.New("not found")

// ErrNoNotes is returned by stores that do not keep an item-notes table.
var ErrNoNotes = errors.New("backend has no item notes")

// Backend is the remote store of record.
type Backend interface {
	Name() string
	FetchAll(ctx context.Context) ([]model.InventoryItem, error)
	// Apply writes one row edit and returns the store's confirmation message.
	Apply(ctx context.Context, m model.Mutation) (string, error)
	// Upload replaces the picklist with the rows of a .xlsx or .csv file.
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Ping(ctx context.Context) (string, error)
	Close() error
}

// NoteSource is implemented by stores that keep box notes per VFID.
type NoteSource interface {
	ItemNotes(ctx context.Context) ([]model.ItemNote, error)
}

// Kinds of backend.
const (
	KindSheets = "sheets"
	KindTable  = "table"
)

// Config selects and configures a backend.
type Config struct {
	Kind       string
	ScriptURL  string
	Driver     string
	DSN        string
	Table      string
	NotesTable string
	Timeout    time.Duration
}

// New opens the backend named by cfg.Kind.
func New(cfg Config) (Backend, error) {
	switch cfg.Kind {
	case KindSheets, "":
		if cfg.ScriptURL == "" {
			return nil, fmt.Errorf("sheets backend needs a script URL")
		}
		return NewSheetsBackend(cfg.ScriptURL, cfg.Timeout), nil
	case KindTable:
		return OpenTableBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}

// ValidateMutation checks the fields an action needs before it is queued or sent.
func ValidateMutation(m model.Mutation) error {
	switch m.Action {
	case model.ActionTestConnection:
		return nil
	case model.ActionUpdateChecked:
		if m.Checked == nil {
			return fmt.Errorf("%s needs Checked", m.Action)
		}
	case model.ActionUpdateNote:
		if m.Note == nil {
			return fmt.Errorf("%s needs Note", m.Action)
		}
	case model.ActionUpdateBoth:
		if m.Checked == nil || m.Note == nil {
			return fmt.Errorf("%s needs Checked and Note", m.Action)
		}
	default:
		return fmt.Errorf("invalid action %q", m.Action)
	}
	if m.VFID == "" {
		return fmt.Errorf("VFID is required")
	}
	return nil
}

func successMessage(m model.Mutation) string {
	switch m.Action {
	case model.ActionUpdateChecked:
		return "Successfully updated checked status for VFID: " + m.VFID
	case model.ActionUpdateNote:
		return "Successfully updated note for VFID: " + m.VFID
	case model.ActionUpdateBoth:
		return "Successfully updated both checked status and note for VFID: " + m.VFID
	default:
		return "Connection test successful"
	}
}

func notFound(vfid string) error {
	return fmt.Errorf("VFID %q %w", vfid, ErrNotFound)
}
