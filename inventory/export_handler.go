package inventory

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"picklist/barcode"
	"picklist/cache"
	"picklist/config"
	"picklist/export"
	"picklist/filter"
	"picklist/logger"
	"picklist/mappers"
)

// ExportNotesHandler downloads the notes summary of the requested view as
// .xlsx (default) or .csv.
func ExportNotesHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := Select(store.Items(), r.URL.Query())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		layout := export.ParseLayout(config.GetConfig().Export.Layout)
		if l := r.URL.Query().Get("layout"); l != "" {
			layout = export.ParseLayout(l)
		}

		views := mappers.ToNoteViews(v.Items)
		if len(views) == 0 {
			writeJSONError(w, export.ErrNoNotes.Error(), http.StatusNotFound)
			return
		}

		prefix := "inventory-notes"
		if v.Narrowed {
			prefix = "notes-summary"
		}

		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		err = export.WriteNotes(&buf, views, format, layout)
		if errors.Is(err, export.ErrNoNotes) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			logger.FromContext(r.Context()).Error("notes export failed", zap.Error(err))
			writeJSONError(w, "Failed to export notes", http.StatusInternalServerError)
			return
		}

		filename := export.FileName(prefix, time.Now(), format)
		w.Header().Set("Content-Type", export.ContentType(format))
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(buf.Bytes())
	}
}

// ScanHandler decodes a scanned barcode and returns the rows carrying it.
func ScanHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		res, err := barcode.Parse(code)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"gtin14":     res.Gtin14,
			"expiryDate": res.ExpiryDate,
			"lotNumber":  res.LotNumber,
			"items":      filter.Search(store.Items(), code),
		})
	}
}
