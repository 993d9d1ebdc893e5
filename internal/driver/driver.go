package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultTickLength = time.Millisecond * 100
)

// Manager is ticked once per simulation tick.
type Manager interface {
	Tick(context.Context) error
}

// RealmDriver runs the single simulation tick loop. A manager that fails or
// panics is logged and the remaining managers still run.
type RealmDriver struct {
	tickLength time.Duration
	managers   []Manager

	mu   sync.Mutex
	next chan struct{}
}

func NewRealmDriver(managers []Manager, opts ...RealmDriverOpt) *RealmDriver {
	d := &RealmDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
		next:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *RealmDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	slog.InfoContext(ctx, "realm driver started", "tick", d.tickLength)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs every manager once, then releases everyone waiting on WaitTick.
func (d *RealmDriver) Tick(ctx context.Context) {
	for _, m := range d.managers {
		if err := d.tickManager(ctx, m); err != nil {
			slog.ErrorContext(ctx, "tick failed", "manager", fmt.Sprintf("%T", m), "error", err)
		}
	}

	d.mu.Lock()
	close(d.next)
	d.next = make(chan struct{})
	d.mu.Unlock()
}

func (d *RealmDriver) tickManager(ctx context.Context, m Manager) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m.Tick(ctx)
}

// WaitTick blocks until the current tick has completed.
func (d *RealmDriver) WaitTick(ctx context.Context) error {
	d.mu.Lock()
	next := d.next
	d.mu.Unlock()

	select {
	case <-next:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
