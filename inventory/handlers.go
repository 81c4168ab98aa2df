package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"picklist/aggregation"
	"picklist/backend"
	"picklist/cache"
	"picklist/filter"
	"picklist/logger"
	"picklist/model"
	"picklist/parsers"
	"picklist/render"
)

const maxUploadSize = 32 << 20

// ListItemsHandler returns the rows of the requested view with its counters.
func ListItemsHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := Select(store.Items(), r.URL.Query())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"title":    v.Title,
			"items":    v.Items,
			"stats":    aggregation.Summarize(v.Items),
			"loadedAt": store.LoadedAt(),
		})
	}
}

// ItemsTableHandler returns the rows of the requested view as an HTML table.
func ItemsTableHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := Select(store.Items(), r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(render.RenderInventoryTableHTML(v.Items, v.Highlight)))
	}
}

// LocationsHandler lists the base locations present in the picklist.
func LocationsHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bases := filter.BaseLocations(store.Items())
		if bases == nil {
			bases = []string{}
		}
		writeJSON(w, map[string]any{"locations": bases})
	}
}

type checkedRequest struct {
	VFID    string `json:"VFID"`
	Checked *bool  `json:"Checked"`
}

type noteRequest struct {
	VFID string  `json:"VFID"`
	Note *string `json:"Note"`
}

// UpdateCheckedHandler marks one row checked or unchecked.
func UpdateCheckedHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req checkedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		applyMutation(w, r, store, model.Mutation{
			Action:  model.ActionUpdateChecked,
			VFID:    req.VFID,
			Checked: req.Checked,
		})
	}
}

// UpdateNoteHandler replaces the note of one row.
func UpdateNoteHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		applyMutation(w, r, store, model.Mutation{
			Action: model.ActionUpdateNote,
			VFID:   req.VFID,
			Note:   req.Note,
		})
	}
}

// UpdateItemHandler accepts the same body the spreadsheet script does:
// {action, VFID, Checked, Note}.
func UpdateItemHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var m model.Mutation
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		applyMutation(w, r, store, m)
	}
}

func applyMutation(w http.ResponseWriter, r *http.Request, store *cache.Store, m model.Mutation) {
	if err := backend.ValidateMutation(m); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := store.Apply(r.Context(), m)
	switch {
	case errors.Is(err, cache.ErrItemNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		logger.FromContext(r.Context()).Warn("update failed",
			zap.String("action", m.Action), zap.String("vfid", m.VFID), zap.Error(err))
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	if m.Action == model.ActionTestConnection {
		writeJSON(w, map[string]string{"message": "Connection test successful"})
		return
	}
	writeJSON(w, map[string]any{"message": "Saved. Syncing in the background.", "item": item})
}

// ReloadHandler refetches every row from the backend.
func ReloadHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := store.Reload(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("reload failed", zap.Error(err))
			writeJSONError(w, err.Error(), http.StatusBadGateway)
			return
		}
		n := len(store.Items())
		writeJSON(w, map[string]any{
			"message": "Successfully loaded " + strconv.Itoa(n) + " items.",
			"count":   n,
		})
	}
}

// UploadHandler forwards a picklist file to the backend and reloads.
func UploadHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		log := logger.FromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "No file selected", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if !parsers.IsSupported(header.Filename) {
			writeJSONError(w, parsers.ErrUnsupportedFormat.Error(), http.StatusBadRequest)
			return
		}

		msg, err := store.Upload(r.Context(), header.Filename, file)
		if err != nil {
			log.Warn("upload failed", zap.String("file", header.Filename), zap.Error(err))
			if msg == "" {
				writeJSONError(w, "Upload Error: "+err.Error(), http.StatusBadGateway)
				return
			}
			// The file was accepted but the reload after it failed.
			writeJSONStatus(w, http.StatusAccepted, map[string]string{"message": msg, "warning": err.Error()})
			return
		}
		log.Info("picklist uploaded", zap.String("file", header.Filename))
		writeJSON(w, map[string]any{"message": msg, "count": len(store.Items())})
	}
}

// DashboardHandler returns the home page counters.
func DashboardHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, aggregation.BuildDashboard(store.Items()))
	}
}

// BoxesHandler counts the boxes needed for the requested view.
func BoxesHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, ok := store.Backend().(backend.NoteSource)
		if !ok {
			writeJSONError(w, backend.ErrNoNotes.Error(), http.StatusNotImplemented)
			return
		}
		v, err := Select(store.Items(), r.URL.Query())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		notes, err := src.ItemNotes(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Warn("failed to read item notes", zap.Error(err))
			writeJSONError(w, "Failed to read item notes", http.StatusBadGateway)
			return
		}
		writeJSON(w, aggregation.Boxes(v.Items, notes))
	}
}

// NotificationsHandler returns the notifications newer than ?after=.
func NotificationsHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var after int64
		if s := r.URL.Query().Get("after"); s != "" {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				writeJSONError(w, "after must be a number", http.StatusBadRequest)
				return
			}
			after = n
		}
		center := store.Notifications()
		writeJSON(w, map[string]any{
			"notifications": center.Since(after),
			"lastId":        center.LastID(),
		})
	}
}

// PingHandler sends a connection test to the backend.
func PingHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := store.Backend().Ping(r.Context())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]string{"message": msg, "backend": store.Backend().Name()})
	}
}
