// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// PlayerInfo is a seat as sent by the client in a join message.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// GameMessage is an incoming WebSocket message. Only the fields of its Type are read.
type GameMessage struct {
	Type string `json:"type"`

	// join
	Players []PlayerInfo `json:"players,omitempty"`

	// play_card; Color names the next color after a wild
	PlayerID string `json:"playerId,omitempty"`
	CardID   string `json:"cardId,omitempty"`
	Color    string `json:"color,omitempty"`

	// house_rules
	Rules map[string]interface{} `json:"rules,omitempty"`
}

// GameWSHandler upgrades the connection, sends the current table and then routes
// client messages to the engine until the connection closes.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

		if c.Subprotocol() != "game" {
			logger.Warnf("client connected with invalid subprotocol: %q", c.Subprotocol())
			c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		cl := newClient(c, logger.WithField("remote", r.RemoteAddr))
		go cl.writeLoop()

		// register under the table lock so no event slips in before the first state
		gs.Mutex.Lock()
		gs.addConn(cl)
		cl.sendJSON(StateMessage{Type: "state", State: gs.engine.Snapshot()})
		gs.Mutex.Unlock()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		err = readGameMessages(ctx, c, gs, cl, logger)

		gs.removeConn(cl)
		cl.close()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readGameMessages reads until the connection fails or ctx ends. It returns the read
// error unless the client closed normally.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, cl *client, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			logger.Warnf("ignoring non-text message type %d", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.WithError(err).Warn("invalid JSON received")
			cl.sendError("invalid JSON format")
			continue
		}
		logger.WithField("type", msg.Type).Debug("received game message")

		if err := handleGameMessage(gs, cl, msg); err != nil {
			entry := logger.WithError(err).WithField("type", msg.Type)
			if errors.Is(err, game.ErrPlayRejected) {
				entry.Debug("action rejected")
			} else {
				entry.Warn("action failed")
			}
			cl.sendError(err.Error())
		}
	}
}

// handleGameMessage routes one message. Successful engine calls answer through the
// event broadcast, so only failures and queries reply directly.
func handleGameMessage(gs *GameServer, cl *client, msg GameMessage) error {
	switch msg.Type {
	case "join":
		players := make([]*models.Player, 0, len(msg.Players))
		for _, p := range msg.Players {
			players = append(players, models.NewPlayer(p.ID, p.Name, p.AvatarURL))
		}
		return gs.Do(func(e *game.GameEngine) error {
			return e.Join(players)
		})

	case "start":
		return gs.Do(func(e *game.GameEngine) error {
			return e.Start()
		})

	case "play_card":
		var opts []game.PlayOption
		if msg.Color != "" {
			color, err := models.ParseColor(msg.Color)
			if err != nil {
				return err
			}
			opts = append(opts, game.WithColor(color))
		}
		return gs.Do(func(e *game.GameEngine) error {
			_, err := e.PlayCard(msg.PlayerID, msg.CardID, opts...)
			return err
		})

	case "take_card":
		return gs.Do(func(e *game.GameEngine) error {
			_, err := e.TakeCard()
			return err
		})

	case "house_rules":
		var rules game.HouseRules
		err := gs.Do(func(e *game.GameEngine) error {
			var err error
			rules, err = game.ParseRules(msg.Rules, e.HouseRules())
			if err != nil {
				return err
			}
			return e.SetHouseRules(rules)
		})
		if err != nil {
			return err
		}
		cl.sendJSON(map[string]interface{}{"type": "house_rules", "rules": rules})
		return nil

	case "state":
		// queued under the lock so it cannot overtake a later event
		return gs.Do(func(e *game.GameEngine) error {
			cl.sendJSON(StateMessage{Type: "state", State: e.Snapshot()})
			return nil
		})

	case "reset":
		gs.Reset()
		return nil

	case "ping":
		cl.sendJSON(map[string]string{"type": "pong"})
		return nil
	}
	return fmt.Errorf("unknown message type: %s", msg.Type)
}
