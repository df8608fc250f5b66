// Package ws is the socket gateway: it upgrades HTTP connections, speaks the
// client message protocol (authenticate, join-room, leave-room,
// location-update), and bridges sockets into the realtime hub.
package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"crabor/internal/core/application/usecases/commands"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/ports"
	"crabor/internal/realtime"
)

const (
	// outboundBuffer is the per-connection event queue. A peer that cannot
	// drain this many events starts losing them.
	outboundBuffer = 64

	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 45 * time.Second
)

// errBufferFull is returned by the sink when a peer is too slow to drain its
// outbound queue.
var errBufferFull = errors.New("outbound buffer full")

// clientMessage is the envelope every inbound frame must carry.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type authenticateData struct {
	Token string `json:"token"`
}

type roomData struct {
	Room string `json:"room"`
}

type locationData struct {
	OrderID string  `json:"orderId"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Gateway handles websocket connections. Each connection runs a read loop on
// the handler goroutine and a write pump on its own goroutine; the hub never
// writes to a socket directly, only into the connection's buffered sink.
type Gateway struct {
	hub             *realtime.Hub
	verifier        ports.CredentialVerifier
	locationHandler commands.ReportLocationCommandHandler
	upgrader        websocket.Upgrader
	logger          *slog.Logger
}

// NewGateway creates a socket gateway bridging into the given hub.
func NewGateway(
	hub *realtime.Hub,
	verifier ports.CredentialVerifier,
	locationHandler commands.ReportLocationCommandHandler,
	allowedOrigins []string,
	logger *slog.Logger,
) *Gateway {
	originAllowed := func(r *http.Request) bool {
		if len(allowedOrigins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}

	return &Gateway{
		hub:             hub,
		verifier:        verifier,
		locationHandler: locationHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originAllowed,
		},
		logger: logger.With("component", "ws-gateway"),
	}
}

// wsSink queues outbound events for one socket. Deliver never blocks: a full
// queue means the peer is slow or dead, and the event is dropped.
type wsSink struct {
	out chan realtime.Event
}

func (s *wsSink) Deliver(event realtime.Event) error {
	select {
	case s.out <- event:
		return nil
	default:
		return errBufferFull
	}
}

// Handle is the echo route handler for GET /ws.
func (g *Gateway) Handle(c echo.Context) error {
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sink := &wsSink{out: make(chan realtime.Event, outboundBuffer)}
	connID := g.hub.Register(sink)

	done := make(chan struct{})
	go g.writePump(conn, sink, done)

	g.readLoop(c, conn, connID)

	g.hub.Disconnect(c.Request().Context(), connID)
	close(done)
	_ = conn.Close()
	return nil
}

// writePump drains the sink onto the socket and keeps the connection alive
// with pings. A write failure ends the pump; the read loop notices the dead
// socket and tears the connection down.
func (g *Gateway) writePump(conn *websocket.Conn, sink *wsSink, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-sink.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (g *Gateway) readLoop(c echo.Context, conn *websocket.Conn, connID string) {
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("connection read failed", "connId", connID, "error", err)
			}
			return
		}

		switch msg.Event {
		case "authenticate":
			g.handleAuthenticate(c, connID, msg.Data)
		case "join-room":
			g.handleJoinRoom(connID, msg.Data)
		case "leave-room":
			g.handleLeaveRoom(connID, msg.Data)
		case "location-update":
			g.handleLocationUpdate(c, connID, msg.Data)
		default:
			g.logger.Debug("unknown client event", "connId", connID, "event", msg.Event)
		}
	}
}

func (g *Gateway) handleAuthenticate(c echo.Context, connID string, raw json.RawMessage) {
	var data authenticateData
	if err := json.Unmarshal(raw, &data); err != nil || data.Token == "" {
		g.deliverTo(connID, realtime.Event{
			Name: realtime.EventAuthenticationError,
			Data: map[string]string{"message": "token is required"},
		})
		return
	}

	verified, err := g.verifier.Verify(data.Token)
	if err != nil {
		g.deliverTo(connID, realtime.Event{
			Name: realtime.EventAuthenticationError,
			Data: map[string]string{"message": "credential verification failed"},
		})
		return
	}

	if err = g.hub.Authenticate(c.Request().Context(), connID, verified); err != nil {
		g.deliverTo(connID, realtime.Event{
			Name: realtime.EventAuthenticationError,
			Data: map[string]string{"message": "authentication failed"},
		})
		return
	}

	g.deliverTo(connID, realtime.Event{
		Name: realtime.EventAuthenticated,
		Data: map[string]string{
			"userId": verified.UserID().String(),
			"role":   verified.Role().String(),
		},
	})
}

// handleJoinRoom lets any connection track an order room. Identity-scoped
// rooms (user:, role:) are joined only through authentication, never by
// request.
func (g *Gateway) handleJoinRoom(connID string, raw json.RawMessage) {
	room, ok := parseOrderRoom(raw)
	if !ok {
		return
	}
	g.hub.JoinRoom(connID, room)
}

func (g *Gateway) handleLeaveRoom(connID string, raw json.RawMessage) {
	room, ok := parseOrderRoom(raw)
	if !ok {
		return
	}
	g.hub.LeaveRoom(connID, room)
}

func (g *Gateway) handleLocationUpdate(c echo.Context, connID string, raw json.RawMessage) {
	identity, ok := g.hub.Identity(connID)
	if !ok {
		g.deliverTo(connID, realtime.Event{
			Name: realtime.EventAuthenticationError,
			Data: map[string]string{"message": "authenticate before reporting positions"},
		})
		return
	}

	var data locationData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	orderID, err := kernel.UUIDFromString(data.OrderID)
	if err != nil {
		return
	}
	position, err := kernel.NewGeoPoint(data.Lat, data.Lng)
	if err != nil {
		return
	}

	cmd, err := commands.NewReportLocationCommand(orderID, identity, position)
	if err != nil {
		return
	}

	if err = g.locationHandler.Handle(c.Request().Context(), cmd); err != nil {
		g.logger.Debug("position report rejected",
			"connId", connID, "orderId", data.OrderID, "error", err)
	}
}

// deliverTo sends a direct event to one connection via a transient room.
func (g *Gateway) deliverTo(connID string, event realtime.Event) {
	room := realtime.RoomKey("conn:" + connID)
	g.hub.JoinRoom(connID, room)
	g.hub.Broadcast(event, room)
	g.hub.LeaveRoom(connID, room)
}

// parseOrderRoom accepts only "order:<uuid>" shaped room keys from clients.
func parseOrderRoom(raw json.RawMessage) (realtime.RoomKey, bool) {
	var data roomData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", false
	}

	const prefix = "order:"
	if len(data.Room) <= len(prefix) || data.Room[:len(prefix)] != prefix {
		return "", false
	}

	orderID, err := kernel.UUIDFromString(data.Room[len(prefix):])
	if err != nil {
		return "", false
	}

	return realtime.OrderRoom(orderID), true
}
