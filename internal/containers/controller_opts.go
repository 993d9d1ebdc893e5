package containers

import (
	"time"

	"github.com/pixil98/go-realm/internal/storage"
)

type ControllerOpt func(*Controller)

// WithStore persists storage contents through s.
func WithStore(s storage.Storer[*StorageRecord]) ControllerOpt {
	return func(c *Controller) {
		c.store = s
	}
}

// WithSweepInterval sets how often open storages are range checked.
func WithSweepInterval(d time.Duration) ControllerOpt {
	return func(c *Controller) {
		c.sweepInterval = d
	}
}

func withClock(now func() time.Time) ControllerOpt {
	return func(c *Controller) {
		c.now = now
	}
}
