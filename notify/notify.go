// Package notify keeps the short-lived messages the browser polls for after a
// background load or write finishes.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"picklist/model"
)

// DefaultLimit is the number of notifications kept when none is configured.
const DefaultLimit = 100

// Center is a bounded, concurrency-safe ring of notifications.
type Center struct {
	mu     sync.Mutex
	limit  int
	nextID int64
	ring   []model.Notification
	now    func() time.Time
	log    *zap.Logger
}

// NewCenter keeps at most limit notifications.
func NewCenter(limit int, log *zap.Logger) *Center {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Center{limit: limit, now: time.Now, log: log}
}

// Notify records a message and returns it with its assigned ID.
func (c *Center) Notify(level, message string) model.Notification {
	c.mu.Lock()
	c.nextID++
	n := model.Notification{ID: c.nextID, Time: c.now(), Level: level, Message: message}
	c.ring = append(c.ring, n)
	if len(c.ring) > c.limit {
		c.ring = append(c.ring[:0], c.ring[len(c.ring)-c.limit:]...)
	}
	c.mu.Unlock()

	if level == model.LevelError {
		c.log.Warn("notification", zap.String("message", message))
	} else {
		c.log.Info("notification", zap.String("level", level), zap.String("message", message))
	}
	return n
}

// Success, Error and Info are shorthands for Notify.
func (c *Center) Success(message string) model.Notification {
	return c.Notify(model.LevelSuccess, message)
}

func (c *Center) Error(message string) model.Notification {
	return c.Notify(model.LevelError, message)
}

func (c *Center) Info(message string) model.Notification {
	return c.Notify(model.LevelInfo, message)
}

// Since returns the retained notifications with an ID greater than id, oldest first.
func (c *Center) Since(id int64) []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Notification, 0)
	for _, n := range c.ring {
		if n.ID > id {
			out = append(out, n)
		}
	}
	return out
}

// LastID is the ID of the newest notification, 0 when none was sent.
func (c *Center) LastID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextID
}
