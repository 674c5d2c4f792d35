package game

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// noShuffle keeps card order so tests can predict draws.
type noShuffle struct{}

func (noShuffle) Shuffle([]*models.Card) {}

func card(color models.Color, value models.Value) *models.Card {
	return models.NewCard(color, value)
}

func num(color models.Color, n int) *models.Card {
	return models.NewCard(color, models.NumberValue(n))
}

func cards(cs ...*models.Card) []*models.Card {
	return cs
}

// newTable builds a started state with players p0..pN holding hands,
// the stack (bottom first, active color from the last card) and the deck (top last).
func newTable(hands [][]*models.Card, stack, deck []*models.Card) *GameState {
	s := NewGameState()
	for i, h := range hands {
		p := models.NewPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), "")
		p.Hand.Add(h...)
		s.PlayersGroup.players = append(s.PlayersGroup.players, p)
	}
	for _, c := range stack {
		s.Stack.push(c, c.Color)
	}
	s.Deck.reset(append([]*models.Card{}, deck...))
	s.started = true
	return s
}

// fingerprint summarizes everything a command may mutate.
func fingerprint(s *GameState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "deck=%d stack=%d color=%s turn=%d dir=%d skip=%v started=%v",
		s.Deck.Len(), s.Stack.Len(), s.Stack.ActiveColor(), s.Turn.index, s.Turn.direction, s.Turn.skipNext, s.started)
	if top := s.Stack.CardOnTop(); top != nil {
		fmt.Fprintf(&sb, " top=%s", top.ID)
	}
	for _, p := range s.PlayersGroup.players {
		fmt.Fprintf(&sb, " %s=%d", p.ID, p.Hand.Len())
	}
	return sb.String()
}

func fourPlayers() []*models.Player {
	return []*models.Player{
		models.NewPlayer("jorge1234", "Jorge", "https://example.com/jorge.jpg"),
		models.NewPlayer("calel1234", "Calel", "https://example.com/calel.jpg"),
		models.NewPlayer("facu1234", "Facu", "https://example.com/facu.jpg"),
		models.NewPlayer("nikomendo", "Nicolas", "https://example.com/nicolas.jpg"),
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*GameEngine, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts = append([]Option{WithLogger(logger), WithShuffler(NewShuffler(42))}, opts...)
	return NewEngine(opts...), hook
}

// startedEngine joins four players and starts the game.
func startedEngine(t *testing.T, opts ...Option) (*GameEngine, *test.Hook) {
	t.Helper()
	e, hook := newTestEngine(t, opts...)
	require.NoError(t, e.Join(fourPlayers()))
	require.NoError(t, e.Start())
	return e, hook
}

// givePlayableNumber moves a number card that can be played right now from the deck
// into p's hand and returns it.
func givePlayableNumber(t *testing.T, e *GameEngine, p *models.Player) *models.Card {
	t.Helper()
	deck := e.state.Deck
	for i, c := range deck.cards {
		if c.Value.IsNumber() && e.rules.CanPlay(c, e.state.Stack.CardOnTop(), e.state.Stack.ActiveColor()) {
			deck.cards = append(deck.cards[:i], deck.cards[i+1:]...)
			p.Hand.Add(c)
			return c
		}
	}
	t.Fatal("no playable number card left in the deck")
	return nil
}

// allCardIDs lists every card ID across deck, stack and hands.
func allCardIDs(s *GameState) []string {
	var ids []string
	for _, c := range s.Deck.cards {
		ids = append(ids, c.ID)
	}
	for _, c := range s.Stack.cards {
		ids = append(ids, c.ID)
	}
	for _, p := range s.PlayersGroup.players {
		for _, c := range p.Hand.Cards() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
