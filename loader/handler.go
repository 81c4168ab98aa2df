// loader/handler.go
package loader

import (
	"encoding/json"
	"net/http"

	"picklist/config"
	"picklist/logger"

	"go.uber.org/zap"
)

// ImportFolderHandler imports every file waiting in the configured import folder.
func ImportFolderHandler(up Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		dir := config.GetConfig().Import.WatchFolder
		if dir == "" {
			http.Error(w, "no import folder is configured", http.StatusBadRequest)
			return
		}

		imported, err := ImportFolder(r.Context(), up, dir)
		if err != nil {
			log.Warn("import folder scan failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if imported == nil {
			imported = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message":  "Import finished.",
			"imported": imported,
		})
	}
}
