// Package cache holds the authoritative local copy of the picklist. Edits are
// applied to it at once and written to the backend in the background, in the
// order they were made.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"picklist/backend"
	"picklist/model"
	"picklist/notify"
)

// ErrItemNotFound is returned when an edit names a VFID that is not loaded.
var ErrItemNotFound = errors.New("item not found")

// SnapshotStore persists the last known rows so a restart does not need the backend.
type SnapshotStore interface {
	Load(ctx context.Context) ([]model.InventoryItem, error)
	Save(ctx context.Context, items []model.InventoryItem) error
}

// Options tune the write path.
type Options struct {
	WriteTimeout         time.Duration
	ReloadOnWriteFailure bool
	QueueSize            int
}

// DefaultOptions are used for zero fields.
func DefaultOptions() Options {
	return Options{WriteTimeout: 30 * time.Second, ReloadOnWriteFailure: true, QueueSize: 256}
}

type journalEntry struct {
	m     model.Mutation
	acked uint64 // ack tick, 0 while the write is outstanding
}

// Store is the in-memory picklist plus its write queue.
type Store struct {
	backend backend.Backend
	snap    SnapshotStore
	notes   *notify.Center
	log     *zap.Logger
	opts    Options

	mu       sync.RWMutex
	items    []model.InventoryItem
	index    map[string]int
	loadedAt time.Time
	version  uint64

	// journal holds edits in order until no reload can miss them: unsent
	// ones, and sent ones acknowledged after a still running reload began.
	journal   []journalEntry
	ackClock  uint64
	reloading map[uint64]int

	persistMu    sync.Mutex
	savedVersion uint64

	queue   chan model.Mutation
	pending sync.WaitGroup
}

// NewStore wires a store. snap may be nil.
func NewStore(b backend.Backend, snap SnapshotStore, notes *notify.Center, log *zap.Logger, opts Options) *Store {
	def := DefaultOptions()
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	if notes == nil {
		notes = notify.NewCenter(0, log)
	}
	return &Store{
		backend:   b,
		snap:      snap,
		notes:     notes,
		log:       log.Named("cache"),
		opts:      opts,
		index:     map[string]int{},
		reloading: map[uint64]int{},
		queue:     make(chan model.Mutation, opts.QueueSize),
	}
}

// Backend is the store of record behind the cache.
func (s *Store) Backend() backend.Backend { return s.backend }

// Notifications is the center the store reports to.
func (s *Store) Notifications() *notify.Center { return s.notes }

// Open restores the persisted snapshot, or loads from the backend when there is none.
func (s *Store) Open(ctx context.Context) error {
	if s.snap != nil {
		items, err := s.snap.Load(ctx)
		if err != nil {
			s.log.Warn("failed to load snapshot", zap.Error(err))
		} else if len(items) > 0 {
			s.replace(items)
			s.log.Info("restored snapshot", zap.Int("items", len(items)))
			return nil
		}
	}
	return s.Reload(ctx)
}

// Items returns a copy of every row.
func (s *Store) Items() []model.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.InventoryItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Lookup returns a copy of the row with the VFID.
func (s *Store) Lookup(vfid string) (model.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[vfid]
	if !ok {
		return model.InventoryItem{}, false
	}
	return s.items[i].Clone(), true
}

// LoadedAt is when the rows were last replaced from the backend or snapshot.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload fetches every row from the backend. On failure the current rows are kept.
// Edits the fetched rows may predate are applied again on top of them.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	start := s.ackClock
	s.reloading[start]++
	s.mu.Unlock()

	items, err := s.backend.FetchAll(ctx)

	s.mu.Lock()
	s.reloading[start]--
	if s.reloading[start] == 0 {
		delete(s.reloading, start)
	}
	if err != nil {
		s.pruneLocked()
		s.mu.Unlock()
		s.notes.Error("Error: " + err.Error())
		return fmt.Errorf("reload from %s: %w", s.backend.Name(), err)
	}
	for _, e := range s.journal {
		// acknowledged before the fetch started: already in items
		if e.acked != 0 && e.acked <= start {
			continue
		}
		applyTo(items, e.m)
	}
	s.setLocked(items)
	count := len(s.items)
	snapshot, version := s.copyLocked()
	s.pruneLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot, version)
	s.notes.Success(fmt.Sprintf("Successfully loaded %d items.", count))
	return nil
}

// SetChecked marks a row checked or unchecked.
func (s *Store) SetChecked(ctx context.Context, vfid string, checked bool) (model.InventoryItem, error) {
	return s.Apply(ctx, model.Mutation{Action: model.ActionUpdateChecked, VFID: vfid, Checked: &checked})
}

// SetNote replaces the note of a row.
func (s *Store) SetNote(ctx context.Context, vfid, note string) (model.InventoryItem, error) {
	return s.Apply(ctx, model.Mutation{Action: model.ActionUpdateNote, VFID: vfid, Note: &note})
}

// SetBoth sets the checked flag and the note of a row in one write.
func (s *Store) SetBoth(ctx context.Context, vfid string, checked bool, note string) (model.InventoryItem, error) {
	return s.Apply(ctx, model.Mutation{Action: model.ActionUpdateBoth, VFID: vfid, Checked: &checked, Note: &note})
}

// Apply changes the local row immediately and queues the backend write.
// testConnection is not a row edit and is sent synchronously.
func (s *Store) Apply(ctx context.Context, m model.Mutation) (model.InventoryItem, error) {
	if err := backend.ValidateMutation(m); err != nil {
		return model.InventoryItem{}, err
	}
	if m.Action == model.ActionTestConnection {
		msg, err := s.backend.Ping(ctx)
		if err != nil {
			s.notes.Error(err.Error())
			return model.InventoryItem{}, err
		}
		s.notes.Success(msg)
		return model.InventoryItem{}, nil
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	s.mu.Lock()
	i, ok := s.index[m.VFID]
	if !ok {
		s.mu.Unlock()
		return model.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, m.VFID)
	}
	applyTo(s.items[i:i+1], m)
	updated := s.items[i].Clone()
	s.journal = append(s.journal, journalEntry{m: m})
	snapshot, version := s.copyLocked()
	s.pending.Add(1)
	s.mu.Unlock()

	s.persist(ctx, snapshot, version)
	s.log.Debug("queued write",
		zap.String("mutation_id", m.ID),
		zap.String("action", m.Action),
		zap.String("vfid", m.VFID))
	s.queue <- m
	return updated, nil
}

// Upload sends a picklist file to the backend and reloads.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	msg, err := s.backend.Upload(ctx, filename, r)
	if err != nil {
		s.notes.Error("Upload Error: " + err.Error())
		return "", err
	}
	s.notes.Success(msg)
	if err := s.Reload(ctx); err != nil {
		return msg, err
	}
	return msg, nil
}

// Run drains the write queue until ctx is done, then flushes what is left.
func (s *Store) Run(ctx context.Context) error {
	for {
		select {
		case m := <-s.queue:
			s.write(m)
		case <-ctx.Done():
			for {
				select {
				case m := <-s.queue:
					s.write(m)
				default:
					return nil
				}
			}
		}
	}
}

// Drain blocks until every queued write has been sent.
func (s *Store) Drain() {
	s.pending.Wait()
}

// write sends one mutation with its own deadline, detached from the request
// that made the edit.
func (s *Store) write(m model.Mutation) {
	defer s.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
	defer cancel()

	log := s.log.With(zap.String("mutation_id", m.ID), zap.String("action", m.Action), zap.String("vfid", m.VFID))
	msg, err := s.backend.Apply(ctx, m)
	if err == nil {
		s.ack(m.ID)
		log.Info("write applied")
		s.notes.Success(msg)
		return
	}

	// a failed edit is not replayed; the reload below restores the backend's value
	s.forget(m.ID)
	log.Warn("write failed", zap.Error(err))
	s.notes.Error(err.Error())
	if !s.opts.ReloadOnWriteFailure {
		return
	}
	rctx, rcancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
	defer rcancel()
	if err := s.Reload(rctx); err != nil {
		log.Warn("reload after failed write", zap.Error(err))
	}
}

// ack marks a mutation as stored by the backend.
func (s *Store) ack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ackClock++
	for i := range s.journal {
		if s.journal[i].m.ID == id {
			s.journal[i].acked = s.ackClock
			break
		}
	}
	s.pruneLocked()
}

func (s *Store) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.journal {
		if e.m.ID == id {
			s.journal = append(s.journal[:i], s.journal[i+1:]...)
			return
		}
	}
}

// pruneLocked drops acknowledged edits that every running reload already sees.
func (s *Store) pruneLocked() {
	oldest, running := uint64(0), false
	for start := range s.reloading {
		if !running || start < oldest {
			oldest, running = start, true
		}
	}
	kept := s.journal[:0]
	for _, e := range s.journal {
		if e.acked != 0 && (!running || e.acked <= oldest) {
			continue
		}
		kept = append(kept, e)
	}
	s.journal = kept
}

func (s *Store) replace(items []model.InventoryItem) {
	s.mu.Lock()
	s.setLocked(items)
	s.mu.Unlock()
}

func (s *Store) setLocked(items []model.InventoryItem) {
	index := make(map[string]int, len(items))
	kept := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if _, dup := index[it.VFID]; dup {
			s.log.Warn("duplicate VFID ignored", zap.String("vfid", it.VFID))
			continue
		}
		index[it.VFID] = len(kept)
		kept = append(kept, it)
	}
	s.items = kept
	s.index = index
	s.loadedAt = time.Now()
}

// copyLocked copies the rows and bumps the snapshot version.
func (s *Store) copyLocked() ([]model.InventoryItem, uint64) {
	out := make([]model.InventoryItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	s.version++
	return out, s.version
}

// persist saves the snapshot unless a newer one was saved already.
// A failure only costs the restart shortcut.
func (s *Store) persist(ctx context.Context, items []model.InventoryItem, version uint64) {
	if s.snap == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if version <= s.savedVersion {
		return
	}
	if err := s.snap.Save(context.WithoutCancel(ctx), items); err != nil {
		s.log.Warn("failed to save snapshot", zap.Error(err))
		return
	}
	s.savedVersion = version
}

// applyTo changes the row with the mutation's VFID, if present.
func applyTo(items []model.InventoryItem, m model.Mutation) {
	for i := range items {
		if items[i].VFID != m.VFID {
			continue
		}
		if m.Checked != nil {
			items[i].Checked = *m.Checked
		}
		if m.Note != nil {
			items[i].Notes = *m.Note
		}
		return
	}
}
