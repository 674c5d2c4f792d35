// internal/game/state.go
package game

import (
	"github.com/jason-s-yu/uno/internal/models"
)

// PlayersGroup holds the seated players. Join order is turn order.
type PlayersGroup struct {
	players []*models.Player
}

// Players returns the seated players in turn order.
func (pg *PlayersGroup) Players() []*models.Player {
	out := make([]*models.Player, len(pg.players))
	copy(out, pg.players)
	return out
}

func (pg *PlayersGroup) Len() int {
	return len(pg.players)
}

// At returns the player seated at index i, or nil when out of range.
func (pg *PlayersGroup) At(i int) *models.Player {
	if i < 0 || i >= len(pg.players) {
		return nil
	}
	return pg.players[i]
}

// IndexOf returns the seat index of the player with the given ID, or -1.
func (pg *PlayersGroup) IndexOf(playerID string) int {
	for i, p := range pg.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Get returns the player with the given ID, or nil.
func (pg *PlayersGroup) Get(playerID string) *models.Player {
	return pg.At(pg.IndexOf(playerID))
}

// Deck is the face-down draw pile. The top of the deck is the end of the slice.
type Deck struct {
	cards []*models.Card
}

func (d *Deck) Len() int {
	return len(d.cards)
}

func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the pile, bottom first.
func (d *Deck) Cards() []*models.Card {
	out := make([]*models.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// draw removes and returns the top card.
func (d *Deck) draw() (*models.Card, error) {
	if len(d.cards) == 0 {
		return nil, ErrDeckEmpty
	}
	idx := len(d.cards) - 1
	c := d.cards[idx]
	d.cards = d.cards[:idx]
	return c, nil
}

func (d *Deck) reset(cards []*models.Card) {
	d.cards = cards
}

// Stack is the face-up discard pile. It also tracks the color the next play must follow,
// which differs from the top card's color after a wild.
type Stack struct {
	cards       []*models.Card
	activeColor models.Color
}

// CardOnTop returns the last card pushed, or nil before the game starts.
func (s *Stack) CardOnTop() *models.Card {
	if len(s.cards) == 0 {
		return nil
	}
	return s.cards[len(s.cards)-1]
}

// ActiveColor is the color the next play must match. ColorWild means any color matches.
func (s *Stack) ActiveColor() models.Color {
	return s.activeColor
}

func (s *Stack) Len() int {
	return len(s.cards)
}

// Cards returns a copy of the pile, bottom first.
func (s *Stack) Cards() []*models.Card {
	out := make([]*models.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

func (s *Stack) push(c *models.Card, activeColor models.Color) {
	s.cards = append(s.cards, c)
	s.activeColor = activeColor
}

// takeBelowTop removes every card under the top card and returns them.
func (s *Stack) takeBelowTop() []*models.Card {
	if len(s.cards) <= 1 {
		return nil
	}
	top := s.cards[len(s.cards)-1]
	below := make([]*models.Card, len(s.cards)-1)
	copy(below, s.cards[:len(s.cards)-1])
	s.cards = []*models.Card{top}
	return below
}

func (s *Stack) reset() {
	s.cards = []*models.Card{}
	s.activeColor = ""
}

// Turn points at the seat whose move is currently legal.
type Turn struct {
	index     int
	direction int
	skipNext  bool
}

// Index is the seat index of the current player.
func (t *Turn) Index() int {
	return t.index
}

// Direction is +1 for join order and -1 after an odd number of reverses.
func (t *Turn) Direction() int {
	return t.direction
}

// SkipPending reports whether the next finalize will pass over one player.
func (t *Turn) SkipPending() bool {
	return t.skipNext
}

// next returns the seat index steps positions away from the current one in the play direction.
func (t *Turn) next(playerCount, steps int) int {
	i := (t.index + t.direction*steps) % playerCount
	if i < 0 {
		i += playerCount
	}
	return i
}

// GameState is the single source of truth for one game.
// Only the command functions in this package mutate it.
type GameState struct {
	PlayersGroup *PlayersGroup
	Deck         *Deck
	Stack        *Stack
	Turn         *Turn

	started bool
	winner  *models.Player
}

// NewGameState returns an empty state: no players, no cards, turn unset.
func NewGameState() *GameState {
	return &GameState{
		PlayersGroup: &PlayersGroup{players: []*models.Player{}},
		Deck:         &Deck{cards: []*models.Card{}},
		Stack:        &Stack{cards: []*models.Card{}},
		Turn:         &Turn{direction: 1},
	}
}

// Started reports whether StartGame has dealt the hands.
func (s *GameState) Started() bool {
	return s.started
}

// Winner is the player who emptied their hand, or nil while the game is running.
func (s *GameState) Winner() *models.Player {
	return s.winner
}

// GameOver reports whether a winner has been declared.
func (s *GameState) GameOver() bool {
	return s.winner != nil
}

// TurnPlayer returns the player whose move is legal, or nil before the game starts.
func (s *GameState) TurnPlayer() *models.Player {
	if !s.started {
		return nil
	}
	return s.PlayersGroup.At(s.Turn.index)
}

// CardCount is the number of cards across deck, stack and every hand.
func (s *GameState) CardCount() int {
	n := s.Deck.Len() + s.Stack.Len()
	for _, p := range s.PlayersGroup.players {
		n += p.Hand.Len()
	}
	return n
}
