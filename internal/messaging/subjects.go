package messaging

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-realm/internal/dispatch"
	"github.com/pixil98/go-realm/internal/game"
)

const (
	requestPrefix = "realm.req."

	SubjectRequests   = requestPrefix + "*"
	SubjectReady      = "realm.evt.ready"
	SubjectDisconnect = "realm.evt.disconnect"
	SubjectScene      = "realm.evt.scene"
	SubjectWarp       = "realm.evt.warp"

	SubjectHostReady    = "realm.host.ready"
	SubjectHostEntity   = "realm.host.entity"
	SubjectHostSpawn    = "realm.host.spawn"
	SubjectHostDestroy  = "realm.host.destroy"
	SubjectHostTeleport = "realm.host.teleport"
	SubjectHostServe    = "realm.host.serve"
	SubjectHostWorld    = "realm.host.world"
)

// RequestSubject is where requests of kind are sent.
func RequestSubject(kind dispatch.Kind) string {
	return requestPrefix + string(kind)
}

func requestKind(subject string) dispatch.Kind {
	return dispatch.Kind(strings.TrimPrefix(subject, requestPrefix))
}

// ConnSubject carries notifications for one connection.
func ConnSubject(conn game.ConnectionId) string {
	return fmt.Sprintf("realm.conn.%d", conn)
}

// KickSubject tells the gateway to close a connection.
func KickSubject(conn game.ConnectionId) string {
	return ConnSubject(conn) + ".kick"
}
