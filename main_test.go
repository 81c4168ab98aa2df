package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picklist/config"
	"picklist/export"
	"picklist/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "picklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConfigHandlers(t *testing.T) {
	path := writeConfig(t, "app:\n  port: 8123\n")
	_, err := config.LoadConfig(path)
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetConfigHandler()(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var c config.Config
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, 8123, c.App.Port)
	})

	t.Run("save", func(t *testing.T) {
		c := config.GetConfig()
		c.Export.Layout = "location"
		c.Import.WatchFolder = t.TempDir()
		body, err := json.Marshal(c)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		SaveConfigHandler()(rec, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "location", config.GetConfig().Export.Layout)

		reloaded, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "location", reloaded.Export.Layout)
		assert.Equal(t, 8123, reloaded.App.Port)
	})

	t.Run("missing watch folder", func(t *testing.T) {
		c := config.GetConfig()
		c.Import.WatchFolder = filepath.Join(t.TempDir(), "nope")
		body, _ := json.Marshal(c)

		rec := httptest.NewRecorder()
		SaveConfigHandler()(rec, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid settings", func(t *testing.T) {
		c := config.GetConfig()
		c.Backend.Kind = "ftp"
		body, _ := json.Marshal(c)

		rec := httptest.NewRecorder()
		SaveConfigHandler()(rec, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SaveConfigHandler()(rec, httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestValidateFolderPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.NoError(t, validateFolderPath(""))
	assert.NoError(t, validateFolderPath(dir))
	assert.ErrorContains(t, validateFolderPath(file), "not a folder")
	assert.ErrorContains(t, validateFolderPath(filepath.Join(dir, "missing")), "folder not found")
}

// TestServerWithTableBackend runs the whole HTTP surface against a local
// SQLite table backend.
func TestServerWithTableBackend(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
app:
  open_browser: false
log:
  level: error
  output: stderr
backend:
  kind: table
  driver: sqlite3
  dsn: `+filepath.Join(dir, "backend.db")+`
cache:
  db_path: `+filepath.Join(dir, "snapshot.db")+`
`)

	a, err := newApp(path)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.store.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.NoError(t, a.store.Open(ctx))
	assert.Empty(t, a.store.Items())

	mux, err := newMux(a)
	require.NoError(t, err)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	// upload
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "picklist.csv")
	require.NoError(t, err)
	io.WriteString(fw, "VFID,Product Name,Location,Orders Count,Note\nVF1,Mug,A1L1,2,fragile\nVF2,Lamp,B5,1,\n")
	require.NoError(t, mw.Close())

	res, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Contains(t, string(body), "2 items imported")
	assert.Len(t, a.store.Items(), 2)

	// group view
	res, err = http.Get(srv.URL + "/api/items?group=A1-A6")
	require.NoError(t, err)
	var list struct {
		Title string `json:"title"`
		Items []struct {
			VFID string `json:"VFID"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	res.Body.Close()
	assert.Equal(t, "Locations A1-A6", list.Title)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "VF1", list.Items[0].VFID)

	// edit reaches the table
	res, err = http.Post(srv.URL+"/api/items/checked", "application/json", strings.NewReader(`{"VFID":"VF2","Checked":true}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	a.store.Drain()

	rows, err := a.backend.FetchAll(context.Background())
	require.NoError(t, err)
	for _, r := range rows {
		if r.VFID == "VF2" {
			assert.True(t, r.Checked)
		}
	}

	// notes export
	res, err = http.Get(srv.URL + "/api/export/notes?format=csv")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "VF1,A1L1,Mug,fragile")
	assert.NotContains(t, string(body), "VF2")

	// box summary works with the table backend
	res, err = http.Get(srv.URL + "/api/boxes")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// page
	res, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "Locations B/AG")
	assert.Contains(t, string(body), "backend: table")

	res, err = http.Get(srv.URL + "/static/app.css")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(srv.URL + "/nothing-here")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRootCommandFlags(t *testing.T) {
	root := newRootCmd()
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "export", "ping", "print"})

	f := root.PersistentFlags().Lookup("config")
	require.NotNil(t, f)
	assert.Equal(t, config.DefaultConfigFile, f.DefValue)
}

func TestWriteNotesFile(t *testing.T) {
	views := []model.NoteView{{VFID: "VF1", Location: "A1", ProductName: "Mug", Note: "fragile"}}
	dir := t.TempDir()

	ok := filepath.Join(dir, "notes.csv")
	require.NoError(t, writeNotesFile(ok, views, export.FormatCSV, export.ParseLayout("")))
	body, err := os.ReadFile(ok)
	require.NoError(t, err)
	assert.Contains(t, string(body), "VF1,A1,Mug,fragile")

	failed := filepath.Join(dir, "notes.pdf")
	require.Error(t, writeNotesFile(failed, views, "pdf", export.ParseLayout("")))
	_, err = os.Stat(failed)
	assert.True(t, os.IsNotExist(err), "a failed export leaves no file behind")
}
