// mappers/view.go
package mappers

import (
	"strings"

	"picklist/model"
)

// UnassignedLocation is shown for notes on rows without a location.
const UnassignedLocation = "Unassigned"

// ToNoteView converts a row with a note to its notes-summary line.
func ToNoteView(item model.InventoryItem) model.NoteView {
	loc := strings.TrimSpace(item.Location)
	if loc == "" {
		loc = UnassignedLocation
	}
	return model.NoteView{
		VFID:        item.VFID,
		Location:    loc,
		ProductName: item.ProductName,
		Note:        strings.TrimSpace(item.Notes),
	}
}

// ToNoteViews keeps the rows whose trimmed note is non-empty.
func ToNoteViews(items []model.InventoryItem) []model.NoteView {
	var views []model.NoteView
	for _, it := range items {
		if strings.TrimSpace(it.Notes) == "" {
			continue
		}
		views = append(views, ToNoteView(it))
	}
	return views
}
