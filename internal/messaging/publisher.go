package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-realm/internal/game"
)

// NatsPublisher publishes notifications to individual connection channels.
type NatsPublisher struct {
	server *NatsServer
}

// NewNatsPublisher wraps a NatsServer for per-connection message delivery.
func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

func (p *NatsPublisher) Send(conn game.ConnectionId, n game.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding %s notification: %w", n.Kind, err)
	}
	return p.server.Publish(ConnSubject(conn), data)
}

// Disconnect asks the gateway holding conn to close it.
func (p *NatsPublisher) Disconnect(_ context.Context, conn game.ConnectionId) error {
	return p.server.Publish(KickSubject(conn), nil)
}
