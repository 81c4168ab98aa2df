package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"picklist/backend"
	"picklist/cache"
	"picklist/config"
	"picklist/database"
	"picklist/loader"
	"picklist/logger"
	"picklist/notify"
)

// app is everything a command needs, built from the loaded configuration.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	backend backend.Backend
	store   *cache.Store

	closers []func() error
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(log)

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error {
		log.Sync()
		return nil
	})

	a.backend, err = backend.New(backend.Config{
		Kind:       cfg.Backend.Kind,
		ScriptURL:  cfg.Backend.ScriptURL,
		Driver:     cfg.Backend.Driver,
		DSN:        cfg.Backend.DSN,
		Table:      cfg.Backend.Table,
		NotesTable: cfg.Backend.NotesTable,
		Timeout:    cfg.Backend.Timeout,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Kind, err)
	}
	a.closers = append(a.closers, a.backend.Close)
	log.Info("backend ready", zap.String("backend", a.backend.Name()))

	snap, err := a.openSnapshot()
	if err != nil {
		a.Close()
		return nil, err
	}

	notes := notify.NewCenter(cfg.Cache.NotificationLimit, log)
	a.store = cache.NewStore(a.backend, snap, notes, log, cache.Options{
		WriteTimeout:         cfg.Cache.WriteTimeout,
		ReloadOnWriteFailure: cfg.Cache.ReloadOnWriteFailure,
	})
	return a, nil
}

// openSnapshot uses Redis when an address is configured, the local SQLite file otherwise.
func (a *app) openSnapshot() (cache.SnapshotStore, error) {
	c := a.cfg.Cache
	if c.RedisAddr != "" {
		rs, err := cache.NewRedisSnapshot(c.RedisAddr, c.RedisPassword, c.RedisDB, c.SnapshotKey, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", c.RedisAddr, err)
		}
		a.closers = append(a.closers, rs.Close)
		a.log.Info("using redis snapshot", zap.String("addr", c.RedisAddr), zap.String("key", c.SnapshotKey))
		return rs, nil
	}

	db, err := loader.OpenDatabase(c.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	a.log.Info("using local snapshot", zap.String("path", c.DBPath))
	return database.NewSnapshotRepo(db), nil
}

// Close releases resources in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
