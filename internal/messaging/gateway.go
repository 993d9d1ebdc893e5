package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-realm/internal/dispatch"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/session"
)

// Dispatcher serves decoded requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Response
}

// Lifecycle receives connection and scene events.
type Lifecycle interface {
	OnClientReady(ctx context.Context, conn game.ConnectionId, data session.ReadyData) error
	OnDisconnect(ctx context.Context, conn game.ConnectionId) error
	OnSceneChange(ctx context.Context, mapName string)
	Warp(ctx context.Context, conn game.ConnectionId, targetMap string, position, rotation *game.Vector3) error
}

// RequestEnvelope is the body of a realm.req.<Kind> message.
type RequestEnvelope struct {
	Conn    game.ConnectionId `json:"conn"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// ReadyEvent is published on realm.evt.ready.
type ReadyEvent struct {
	Conn game.ConnectionId `json:"conn"`
	session.ReadyData
}

// DisconnectEvent is published on realm.evt.disconnect.
type DisconnectEvent struct {
	Conn game.ConnectionId `json:"conn"`
}

// SceneEvent is published on realm.evt.scene.
type SceneEvent struct {
	MapName string `json:"map_name"`
}

// WarpEvent is published on realm.evt.warp by the map host, e.g. when a
// character steps on a portal. Nil position and rotation use the target
// map's entry point.
type WarpEvent struct {
	Conn     game.ConnectionId `json:"conn"`
	MapName  string            `json:"map_name"`
	Position *game.Vector3     `json:"position,omitempty"`
	Rotation *game.Vector3     `json:"rotation,omitempty"`
}

// Gateway bridges the bus to the dispatcher and the session lifecycle.
type Gateway struct {
	server     *NatsServer
	dispatcher Dispatcher
	lifecycle  Lifecycle
}

func NewGateway(server *NatsServer, dispatcher Dispatcher, lifecycle Lifecycle) *Gateway {
	return &Gateway{
		server:     server,
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
	}
}

func (g *Gateway) Start(ctx context.Context) error {
	if err := g.server.WaitReady(ctx); err != nil {
		return nil
	}

	var unsubs []func()
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	unsub, err := g.server.Respond(SubjectRequests, func(subject string, data []byte) []byte {
		return g.serve(ctx, subject, data)
	})
	if err != nil {
		return fmt.Errorf("subscribing to requests: %w", err)
	}
	unsubs = append(unsubs, unsub)

	// Lifecycle events share one subscription so a disconnect is never
	// handled before the ready event it follows.
	unsub, err = g.server.Subscribe("realm.evt.*", func(subject string, data []byte) {
		if err := g.event(ctx, subject, data); err != nil {
			slog.ErrorContext(ctx, "handling event", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	unsubs = append(unsubs, unsub)

	slog.InfoContext(ctx, "gateway started")
	<-ctx.Done()
	return nil
}

func (g *Gateway) serve(ctx context.Context, subject string, data []byte) []byte {
	var resp dispatch.Response

	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.WarnContext(ctx, "malformed request", "subject", subject, "error", err)
		resp = dispatch.Response{Code: game.UIErrorInvalidData}
	} else {
		resp = g.dispatcher.Dispatch(ctx, dispatch.Request{
			Conn:    env.Conn,
			Kind:    requestKind(subject),
			Payload: env.Payload,
		})
	}

	out, err := json.Marshal(resp)
	if err != nil {
		slog.ErrorContext(ctx, "encoding response", "subject", subject, "error", err)
		out, _ = json.Marshal(dispatch.Response{})
	}
	return out
}

func (g *Gateway) event(ctx context.Context, subject string, data []byte) error {
	switch subject {
	case SubjectReady:
		var ev ReadyEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decoding ready event: %w", err)
		}
		return g.lifecycle.OnClientReady(ctx, ev.Conn, ev.ReadyData)
	case SubjectDisconnect:
		var ev DisconnectEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decoding disconnect event: %w", err)
		}
		return g.lifecycle.OnDisconnect(ctx, ev.Conn)
	case SubjectScene:
		var ev SceneEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decoding scene event: %w", err)
		}
		g.lifecycle.OnSceneChange(ctx, ev.MapName)
		return nil
	case SubjectWarp:
		var ev WarpEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decoding warp event: %w", err)
		}
		return g.lifecycle.Warp(ctx, ev.Conn, ev.MapName, ev.Position, ev.Rotation)
	default:
		return fmt.Errorf("unknown event subject %q", subject)
	}
}
