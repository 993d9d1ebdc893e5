// Package gametest provides in-memory collaborators for tests.
package gametest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pixil98/go-realm/internal/game"
)

// Sent is one notification captured by RecordingPublisher.
type Sent struct {
	Conn         game.ConnectionId
	Notification game.Notification
}

// RecordingPublisher captures every notification sent through it.
type RecordingPublisher struct {
	mu   sync.Mutex
	sent []Sent
}

func (p *RecordingPublisher) Send(conn game.ConnectionId, n game.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, Sent{Conn: conn, Notification: n})
	return nil
}

// To returns the notifications sent to conn, in order.
func (p *RecordingPublisher) To(conn game.ConnectionId) []game.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []game.Notification
	for _, s := range p.sent {
		if s.Conn == conn {
			out = append(out, s.Notification)
		}
	}
	return out
}

// Kinds returns the kinds of the notifications sent to conn, in order.
func (p *RecordingPublisher) Kinds(conn game.ConnectionId) []game.NotificationKind {
	var kinds []game.NotificationKind
	for _, n := range p.To(conn) {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// Last returns the most recent notification of kind sent to conn.
func (p *RecordingPublisher) Last(conn game.ConnectionId, kind game.NotificationKind) (game.Notification, bool) {
	sent := p.To(conn)
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Kind == kind {
			return sent[i], true
		}
	}
	return game.Notification{}, false
}

// Reset forgets everything captured so far.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = nil
}

// Entities is an in-memory EntityService.
type Entities struct {
	mu sync.Mutex

	IsReady   bool
	Prefabs   map[int]bool
	Locked    map[game.EntityHandle]bool
	Positions map[game.EntityHandle]game.Vector3
	Storages  map[game.EntityHandle]game.StorageEntity
	Spawned   map[game.EntityHandle]game.SpawnRequest

	// Events records Spawn, Destroy and Teleport calls in order.
	Events []string

	next game.EntityHandle
}

// NewEntities creates a ready service that resolves every prefab.
func NewEntities() *Entities {
	return &Entities{
		IsReady:   true,
		Locked:    map[game.EntityHandle]bool{},
		Positions: map[game.EntityHandle]game.Vector3{},
		Storages:  map[game.EntityHandle]game.StorageEntity{},
		Spawned:   map[game.EntityHandle]game.SpawnRequest{},
		next:      100,
	}
}

func (e *Entities) SetReady(ready bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.IsReady = ready
}

func (e *Entities) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.IsReady
}

func (e *Entities) TryGetEntityPrefab(entityId int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Prefabs == nil {
		return true
	}
	return e.Prefabs[entityId]
}

func (e *Entities) Spawn(_ context.Context, req game.SpawnRequest) (game.EntityHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.Spawned[e.next] = req
	e.Positions[e.next] = req.Position
	e.Events = append(e.Events, fmt.Sprintf("spawn:%s", req.Character.Id))
	return e.next, nil
}

func (e *Entities) Destroy(_ context.Context, h game.EntityHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	req, ok := e.Spawned[h]
	if !ok {
		return fmt.Errorf("entity %d not found", h)
	}
	delete(e.Spawned, h)
	delete(e.Positions, h)
	e.Events = append(e.Events, fmt.Sprintf("destroy:%s", req.Character.Id))
	return nil
}

func (e *Entities) Teleport(_ context.Context, h game.EntityHandle, pos, _ game.Vector3) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Positions[h] = pos
	e.Events = append(e.Events, fmt.Sprintf("teleport:%d", h))
	return nil
}

func (e *Entities) Position(h game.EntityHandle) (game.Vector3, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.Positions[h]
	return p, ok
}

// Move places an entity, e.g. a test character walking away from a chest.
func (e *Entities) Move(h game.EntityHandle, pos game.Vector3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Positions[h] = pos
}

func (e *Entities) StorageEntity(h game.EntityHandle) (game.StorageEntity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.Storages[h]
	return s, ok
}

func (e *Entities) CanWarp(h game.EntityHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Locked[h]
}

// SpawnedCount is the number of live entities.
func (e *Entities) SpawnedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Spawned)
}

// EventLog returns a copy of the recorded events.
func (e *Entities) EventLog() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Events...)
}
