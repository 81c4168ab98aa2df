package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingUploader struct {
	mu    sync.Mutex
	files map[string]string
}

func (u *recordingUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.files == nil {
		u.files = map[string]string{}
	}
	u.files[filename] = string(data)
	return "File uploaded successfully!", nil
}

func (u *recordingUploader) get(name string) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.files[name]
	return s, ok
}

func startWatcher(t *testing.T, dir string, up *recordingUploader) <-chan string {
	t.Helper()
	w := New(dir, up, 50*time.Millisecond, zaptest.NewLogger(t))
	imported := make(chan string, 8)
	w.imported = func(name string) { imported <- name }

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errc)
	})
	return imported
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case name := <-ch:
		return name
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for import")
		return ""
	}
}

func TestWatcherImportsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "waiting.csv"), []byte("VFID\nVF1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0644))

	up := &recordingUploader{}
	imported := startWatcher(t, dir, up)

	assert.Equal(t, "waiting.csv", waitFor(t, imported))
	body, ok := up.get("waiting.csv")
	require.True(t, ok)
	assert.Equal(t, "VFID\nVF1\n", body)
	assert.FileExists(t, filepath.Join(dir, "processed", "waiting.csv"))
	assert.FileExists(t, filepath.Join(dir, "readme.txt"))
}

func TestWatcherImportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	up := &recordingUploader{}
	imported := startWatcher(t, dir, up)

	// Give the watcher time to register the folder.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.csv"), []byte("VFID\nVF2\n"), 0644))

	assert.Equal(t, "new.csv", waitFor(t, imported))
	_, ok := up.get("new.csv")
	assert.True(t, ok)
	assert.NoFileExists(t, filepath.Join(dir, "new.csv"))
}

func TestDueRespectsDebounce(t *testing.T) {
	w := New(t.TempDir(), &recordingUploader{}, time.Second, nil)
	now := time.Now()
	w.pending["a.csv"] = now.Add(-2 * time.Second)
	w.pending["b.csv"] = now.Add(-100 * time.Millisecond)

	assert.Equal(t, []string{"a.csv"}, w.due(now))
	assert.Len(t, w.pending, 1)
}
