package loader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picklist/config"
	"picklist/parsers"
)

type stubUploader struct {
	got map[string]string
	err error
}

func (s *stubUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.got == nil {
		s.got = map[string]string{}
	}
	s.got[filename] = string(b)
	return "File uploaded successfully!", nil
}

func TestOpenDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "picklist.db")
	db, err := OpenDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM picklist_snapshot`))
	assert.Zero(t, n)
	assert.FileExists(t, path)

	// schema is idempotent
	assert.NoError(t, InitDatabase(db))
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "list.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("VFID\nVF1\n"), 0644))

	up := &stubUploader{}
	msg, err := ImportFile(context.Background(), up, csvPath)
	require.NoError(t, err)
	assert.Equal(t, "File uploaded successfully!", msg)
	assert.Equal(t, "VFID\nVF1\n", up.got["list.csv"])

	_, err = ImportFile(context.Background(), up, filepath.Join(dir, "list.pdf"))
	assert.ErrorIs(t, err, parsers.ErrUnsupportedFormat)

	_, err = ImportFile(context.Background(), &stubUploader{err: errors.New("offline")}, csvPath)
	assert.ErrorContains(t, err, "offline")
}

func TestImportFolder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("VFID\nVF1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	up := &stubUploader{}
	imported, err := ImportFolder(context.Background(), up, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, imported)
	assert.FileExists(t, filepath.Join(dir, "processed", "a.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "a.csv"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	failing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(failing, "b.csv"), []byte("VFID\n"), 0644))
	imported, err = ImportFolder(context.Background(), &stubUploader{err: errors.New("offline")}, failing)
	require.NoError(t, err)
	assert.Empty(t, imported)
	assert.FileExists(t, filepath.Join(failing, "b.csv"))

	_, err = ImportFolder(context.Background(), up, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestImportFolderHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("VFID\nVF1\n"), 0644))

	prev := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(prev) })

	c := config.Default()
	config.SetConfig(c)
	rec := httptest.NewRecorder()
	ImportFolderHandler(&stubUploader{})(rec, httptest.NewRequest(http.MethodPost, "/api/import/scan", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.Import.WatchFolder = dir
	config.SetConfig(c)
	rec = httptest.NewRecorder()
	ImportFolderHandler(&stubUploader{})(rec, httptest.NewRequest(http.MethodPost, "/api/import/scan", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message  string   `json:"message"`
		Imported []string `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Import finished.", body.Message)
	assert.Equal(t, []string{"a.csv"}, body.Imported)
}
