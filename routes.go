// routes.go
package main

import (
	"net/http"

	"picklist/cache"
	"picklist/inventory"
	"picklist/loader"
)

// SetupRoutes registers every API route on mux.
func SetupRoutes(mux *http.ServeMux, store *cache.Store, printer inventory.PDFPrinter) {
	mux.HandleFunc("/api/items", inventory.ListItemsHandler(store))
	mux.HandleFunc("/api/items/table", inventory.ItemsTableHandler(store))
	mux.HandleFunc("/api/items/checked", inventory.UpdateCheckedHandler(store))
	mux.HandleFunc("/api/items/note", inventory.UpdateNoteHandler(store))
	mux.HandleFunc("/api/items/update", inventory.UpdateItemHandler(store))
	mux.HandleFunc("/api/locations", inventory.LocationsHandler(store))
	mux.HandleFunc("/api/scan", inventory.ScanHandler(store))

	mux.HandleFunc("/api/reload", inventory.ReloadHandler(store))
	mux.HandleFunc("/api/upload", inventory.UploadHandler(store))
	mux.HandleFunc("/api/import/scan", loader.ImportFolderHandler(store))

	mux.HandleFunc("/api/dashboard", inventory.DashboardHandler(store))
	mux.HandleFunc("/api/boxes", inventory.BoxesHandler(store))
	mux.HandleFunc("/api/notifications", inventory.NotificationsHandler(store))

	mux.HandleFunc("/api/export/notes", inventory.ExportNotesHandler(store))
	mux.HandleFunc("/print", inventory.PrintPageHandler(store))
	mux.HandleFunc("/api/print", inventory.PrintPDFHandler(store, printer))

	mux.HandleFunc("/api/backend/ping", inventory.PingHandler(store))

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}
