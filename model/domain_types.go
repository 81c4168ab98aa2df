// model/domain_types.go
package model

import "time"

// ItemNote is a row of the backend's item-notes table.
type ItemNote struct {
	VFID        string `db:"vfid" json:"vfid"`
	NoteContent string `db:"note_content" json:"noteContent"`
	BoxType     string `db:"box_type" json:"boxType"`
}

// Mutation actions understood by every backend.
const (
	ActionUpdateChecked  = "updateChecked"
	ActionUpdateNote     = "updateNote"
	ActionUpdateBoth     = "updateBoth"
	ActionTestConnection = "testConnection"
)

// Mutation is a single row edit on its way to the backend.
type Mutation struct {
	ID      string  `json:"-"`
	Action  string  `json:"action"`
	VFID    string  `json:"VFID,omitempty"`
	Checked *bool   `json:"Checked,omitempty"`
	Note    *string `json:"Note,omitempty"`
}

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// Notification replaces the browser toast: a short message about a background event.
type Notification struct {
	ID      int64     `json:"id"`
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// NoteView is one line of the notes summary.
type NoteView struct {
	VFID        string `json:"vfid"`
	Location    string `json:"location"`
	ProductName string `json:"productName"`
	Note        string `json:"note"`
}
