// Package realtime implements the presence directory and the event fan-out
// layer: which connections are live, who they are, which rooms they joined,
// and how a committed order change reaches exactly the right set of them.
//
// The hub owns all connection and room state behind one mutex; the dispatcher
// only reads membership to deliver events. Delivery is fire-and-forget and
// never feeds back into ledger correctness.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/ports"
)

// Sink is the outbound half of one connection: the gateway hands the hub a
// sink per socket, and the hub pushes events into it. Deliver must not block
// on a slow peer; a full outbound buffer returns an error and the event is
// dropped for that connection.
type Sink interface {
	Deliver(event Event) error
}

// connection is one live socket: its sink, the identity attached after
// authentication (nil until then), and the rooms it belongs to.
type connection struct {
	id       string
	sink     Sink
	identity *actor.Actor
	rooms    map[RoomKey]struct{}
}

// Stats is a point-in-time snapshot of the directory, broadcast periodically
// to administrators.
type Stats struct {
	Connections    int `json:"connections"`
	Authenticated  int `json:"authenticated"`
	Rooms          int `json:"rooms"`
	OnlineShippers int `json:"onlineShippers"`
}

// Hub is the presence and room directory. All mutations (register,
// authenticate, join, leave, disconnect) and membership reads go through one
// RWMutex, so concurrent connections never lose or duplicate membership
// entries.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*connection
	rooms map[RoomKey]map[string]*connection

	presence ports.ShipperPresence
	logger   *slog.Logger
}

// NewHub creates an empty directory. The presence port is signalled when
// shipper connections come and go.
func NewHub(presence ports.ShipperPresence, logger *slog.Logger) *Hub {
	return &Hub{
		conns:    make(map[string]*connection),
		rooms:    make(map[RoomKey]map[string]*connection),
		presence: presence,
		logger:   logger.With("component", "realtime-hub"),
	}
}

// Register records a new connection and returns its id. The connection joins
// no rooms until it authenticates or asks to track an order.
func (h *Hub) Register(sink Sink) string {
	conn := &connection{
		id:    uuid.NewString(),
		sink:  sink,
		rooms: make(map[RoomKey]struct{}),
	}

	h.mu.Lock()
	h.conns[conn.id] = conn
	h.mu.Unlock()

	h.logger.Debug("connection registered", "connId", conn.id)
	return conn.id
}

// Authenticate attaches a verified identity to a connection and auto-joins
// its user and role rooms. A shipper identity flips the shipper online.
func (h *Hub) Authenticate(ctx context.Context, connID string, a actor.Actor) error {
	if err := a.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	conn, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	conn.identity = &a
	h.joinLocked(conn, UserRoom(a.UserID()))
	h.joinLocked(conn, RoleRoom(a.Role()))
	h.mu.Unlock()

	if a.Role() == actor.RoleShipper {
		if err := h.presence.SetOnline(ctx, a.UserID()); err != nil {
			h.logger.Error("failed to flip shipper online", "shipperId", a.UserID(), "error", err)
		}
	}

	h.logger.Info("connection authenticated",
		"connId", connID, "userId", a.UserID(), "role", a.Role().String())
	return nil
}

// JoinRoom adds the connection to a room. Idempotent.
func (h *Hub) JoinRoom(connID string, room RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	h.joinLocked(conn, room)
}

// LeaveRoom removes the connection from a room. Idempotent; the room
// disappears when its last member leaves.
func (h *Hub) LeaveRoom(connID string, room RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	h.leaveLocked(conn, room)
}

// Disconnect removes the connection from every room and forgets it. When the
// identity was a shipper and no other connection of that shipper remains, the
// shipper flips offline.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	h.mu.Lock()
	conn, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}

	for room := range conn.rooms {
		h.leaveLocked(conn, room)
	}
	delete(h.conns, connID)

	var departedShipper *actor.Actor
	if conn.identity != nil && conn.identity.Role() == actor.RoleShipper {
		if !h.hasUserConnectionLocked(conn.identity.UserID().String()) {
			departedShipper = conn.identity
		}
	}
	h.mu.Unlock()

	if departedShipper != nil {
		if err := h.presence.SetOffline(ctx, departedShipper.UserID()); err != nil {
			h.logger.Error("failed to flip shipper offline",
				"shipperId", departedShipper.UserID(), "error", err)
		}
	}

	h.logger.Debug("connection closed", "connId", connID)
}

// MembersOf returns a snapshot of the room's current member connection ids.
func (h *Hub) MembersOf(room RoomKey) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]string, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		members = append(members, id)
	}
	return members
}

// Identity returns the verified identity attached to a connection, or false
// when the connection is unknown or unauthenticated.
func (h *Hub) Identity(connID string) (actor.Actor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[connID]
	if !ok || conn.identity == nil {
		return actor.Actor{}, false
	}
	return *conn.identity, true
}

// Broadcast delivers one event to every current member of the given rooms.
// A connection in several target rooms receives the event once. Delivery to
// an empty room is a silent no-op, and a failed send is logged and dropped,
// never retried.
func (h *Hub) Broadcast(event Event, rooms ...RoomKey) {
	h.mu.RLock()
	targets := make(map[string]*connection)
	for _, room := range rooms {
		for id, conn := range h.rooms[room] {
			targets[id] = conn
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.sink.Deliver(event); err != nil {
			h.logger.Warn("dropping event for connection",
				"connId", conn.id, "event", event.Name, "error", err)
		}
	}
}

// Stats returns a snapshot of directory counters.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{
		Connections: len(h.conns),
		Rooms:       len(h.rooms),
	}

	onlineShippers := make(map[string]struct{})
	for _, conn := range h.conns {
		if conn.identity == nil {
			continue
		}
		stats.Authenticated++
		if conn.identity.Role() == actor.RoleShipper {
			onlineShippers[conn.identity.UserID().String()] = struct{}{}
		}
	}
	stats.OnlineShippers = len(onlineShippers)

	return stats
}

func (h *Hub) joinLocked(conn *connection, room RoomKey) {
	if _, ok := conn.rooms[room]; ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*connection)
	}
	h.rooms[room][conn.id] = conn
	conn.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(conn *connection, room RoomKey) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, conn.id)
	delete(conn.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) hasUserConnectionLocked(userID string) bool {
	for _, conn := range h.conns {
		if conn.identity != nil && conn.identity.UserID().String() == userID {
			return true
		}
	}
	return false
}
