// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/sirupsen/logrus"
)

// EngineFactory builds a fresh engine for the table, e.g. on reset.
type EngineFactory func() *game.GameEngine

// StateMessage is pushed to every connected client after an engine event.
type StateMessage struct {
	Type  string        `json:"type"`
	Event *game.Event   `json:"event,omitempty"`
	State game.Snapshot `json:"state"`
}

// GameServer serves one hot-seat table to any number of WebSocket clients.
// Mutex serializes every engine call; event handlers run with it held.
type GameServer struct {
	Mutex  sync.Mutex
	engine *game.GameEngine
	build  EngineFactory

	connMu sync.Mutex
	conns  map[*client]struct{}

	logger *logrus.Logger
}

func NewGameServer(logger *logrus.Logger, build EngineFactory) *GameServer {
	gs := &GameServer{
		build:  build,
		conns:  make(map[*client]struct{}),
		logger: logger,
	}
	gs.engine = gs.newEngine()
	return gs
}

// newEngine builds an engine and forwards each of its events to the clients.
func (gs *GameServer) newEngine() *game.GameEngine {
	e := gs.build()
	for _, name := range []game.EventName{
		game.EventAfterJoin,
		game.EventAfterGameStart,
		game.EventAfterPlayCard,
		game.EventAfterTakeCard,
		game.EventAfterDeckRegenerated,
		game.EventAfterGameEnd,
	} {
		e.On(name, func(ev game.Event) {
			// the lock is held here, so the snapshot is consistent
			gs.broadcast(StateMessage{Type: string(ev.Name), Event: &ev, State: e.Snapshot()})
		})
	}
	return e
}

// Do runs fn against the engine with the table locked.
func (gs *GameServer) Do(fn func(e *game.GameEngine) error) error {
	gs.Mutex.Lock()
	defer gs.Mutex.Unlock()
	return fn(gs.engine)
}

// Snapshot returns the current table state.
func (gs *GameServer) Snapshot() game.Snapshot {
	gs.Mutex.Lock()
	defer gs.Mutex.Unlock()
	return gs.engine.Snapshot()
}

// Reset throws the current engine away and seats a new, empty table.
func (gs *GameServer) Reset() game.Snapshot {
	gs.Mutex.Lock()
	defer gs.Mutex.Unlock()
	old := gs.engine.ID
	gs.engine = gs.newEngine()
	snap := gs.engine.Snapshot()
	gs.logger.WithFields(logrus.Fields{"old": old, "game": gs.engine.ID}).Info("table reset")
	gs.broadcast(StateMessage{Type: "reset", State: snap})
	return snap
}

func (gs *GameServer) addConn(c *client) {
	gs.connMu.Lock()
	defer gs.connMu.Unlock()
	gs.conns[c] = struct{}{}
}

func (gs *GameServer) removeConn(c *client) {
	gs.connMu.Lock()
	defer gs.connMu.Unlock()
	delete(gs.conns, c)
}

// ConnCount is the number of connected clients.
func (gs *GameServer) ConnCount() int {
	gs.connMu.Lock()
	defer gs.connMu.Unlock()
	return len(gs.conns)
}

// broadcast marshals msg once and queues it for every client.
func (gs *GameServer) broadcast(msg StateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		gs.logger.WithError(err).Errorf("failed to marshal %s broadcast", msg.Type)
		return
	}

	gs.connMu.Lock()
	defer gs.connMu.Unlock()
	for c := range gs.conns {
		c.send(data)
	}
}

// sendBuffer is how many messages a slow client may fall behind before it is dropped.
const sendBuffer = 64

// client owns the write side of one connection. Messages are written in queue order.
type client struct {
	conn   *websocket.Conn
	out    chan []byte
	done   chan struct{}
	once   sync.Once
	logger logrus.FieldLogger
}

func newClient(conn *websocket.Conn, logger logrus.FieldLogger) *client {
	return &client{
		conn:   conn,
		out:    make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// send queues data without blocking. A client whose queue is full is closed.
func (c *client) send(data []byte) {
	select {
	case <-c.done:
	case c.out <- data:
	default:
		c.logger.Warn("client send queue full, closing connection")
		c.close()
		go c.conn.Close(websocket.StatusPolicyViolation, "client too slow")
	}
}

// sendJSON marshals v and queues it.
func (c *client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).Error("failed to marshal websocket message")
		return
	}
	c.send(data)
}

func (c *client) sendError(msg string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// writeLoop drains the queue until the client is closed.
func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.logger.WithError(err).Warn("failed to write websocket message")
				c.close()
				return
			}
		}
	}
}
