// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
)

// CardView is a card as shown to the presentation layer.
type CardView struct {
	ID     string       `json:"id"`
	Sprite string       `json:"sprite"`
	Color  models.Color `json:"color"`
	Value  models.Value `json:"value"`
}

// PlayerView represents one seat. The table is hot-seat, so every hand is revealed.
type PlayerView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	AvatarURL     string     `json:"avatarUrl"`
	HandSize      int        `json:"handSize"`
	Hand          []CardView `json:"hand"`
	IsCurrentTurn bool       `json:"isCurrentTurn"`
}

// Snapshot is a read-only copy of the table, safe to marshal after the engine moves on.
type Snapshot struct {
	GameID          uuid.UUID    `json:"gameId"`
	Started         bool         `json:"started"`
	GameOver        bool         `json:"gameOver"`
	WinnerID        string       `json:"winnerId,omitempty"`
	CurrentPlayerID string       `json:"currentPlayerId,omitempty"`
	Direction       int          `json:"direction"`
	DeckSize        int          `json:"deckSize"`
	StackSize       int          `json:"stackSize"`
	StackTop        *CardView    `json:"stackTop,omitempty"`
	ActiveColor     models.Color `json:"activeColor,omitempty"`
	Players         []PlayerView `json:"players"`
}

func cardView(c *models.Card) CardView {
	return CardView{ID: c.ID, Sprite: c.Sprite, Color: c.Color, Value: c.Value}
}

// Snapshot captures the current table.
func (e *GameEngine) Snapshot() Snapshot {
	s := e.state
	snap := Snapshot{
		GameID:      e.ID,
		Started:     s.Started(),
		GameOver:    s.GameOver(),
		Direction:   s.Turn.Direction(),
		DeckSize:    s.Deck.Len(),
		StackSize:   s.Stack.Len(),
		ActiveColor: s.Stack.ActiveColor(),
		Players:     []PlayerView{},
	}
	if w := s.Winner(); w != nil {
		snap.WinnerID = w.ID
	}
	current := s.TurnPlayer()
	if current != nil {
		snap.CurrentPlayerID = current.ID
	}
	if top := s.Stack.CardOnTop(); top != nil {
		v := cardView(top)
		snap.StackTop = &v
	}

	for _, p := range s.PlayersGroup.Players() {
		cards := p.Hand.Cards()
		pv := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			AvatarURL:     p.AvatarURL,
			HandSize:      len(cards),
			Hand:          make([]CardView, len(cards)),
			IsCurrentTurn: current != nil && current.ID == p.ID,
		}
		for i, c := range cards {
			pv.Hand[i] = cardView(c)
		}
		snap.Players = append(snap.Players, pv)
	}
	return snap
}
