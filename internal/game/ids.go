package game

import (
	"fmt"
	"math"
)

// ConnectionId identifies one network peer for the lifetime of its connection.
type ConnectionId uint64

func (c ConnectionId) String() string {
	return fmt.Sprintf("%d", uint64(c))
}

// EntityHandle identifies a spawned world entity on the map host.
type EntityHandle uint32

// Vector3 is a world-space position or euler rotation.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the euclidean distance between v and o.
func (v Vector3) Distance(o Vector3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
