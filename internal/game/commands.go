// internal/game/commands.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

// Every command validates first and mutates second, so a returned error always means
// the state was left untouched.

// AddPlayers seats players after the ones already present, preserving order.
// The whole batch is refused if any player is invalid or already seated.
func AddPlayers(s *GameState, maxPlayers int, players []*models.Player) error {
	if s.started {
		return ErrAlreadyStarted
	}

	seen := make(map[string]bool, s.PlayersGroup.Len()+len(players))
	for _, p := range s.PlayersGroup.players {
		seen[p.ID] = true
	}
	for _, p := range players {
		if p == nil || p.ID == "" {
			return ErrInvalidPlayer
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = true
	}
	if maxPlayers > 0 && len(seen) > maxPlayers {
		return fmt.Errorf("%w: %d seats, %d requested", ErrTooManyPlayers, maxPlayers, len(seen))
	}

	for _, p := range players {
		if p.Hand == nil {
			p.Hand = models.NewHand()
		}
		s.PlayersGroup.players = append(s.PlayersGroup.players, p)
	}
	return nil
}

// BuildDeck replaces every card in play with a fresh, shuffled full set from rules.
// Hands and stack are emptied and the turn is reset, so it also serves to begin a new round.
func BuildDeck(s *GameState, rules RuleSet, shuffler Shuffler) int {
	for _, p := range s.PlayersGroup.players {
		p.Hand.Clear()
	}
	s.Stack.reset()

	cards := rules.Cards()
	shuffler.Shuffle(cards)
	s.Deck.reset(cards)

	s.Turn = &Turn{direction: 1}
	s.started = false
	s.winner = nil
	return len(cards)
}

// StartGame deals handSize cards to each player round-robin from the top of the deck,
// flips one card onto the stack and gives the turn to the first player who joined.
func StartGame(s *GameState, handSize int) error {
	if s.started {
		return ErrAlreadyStarted
	}
	n := s.PlayersGroup.Len()
	if n == 0 {
		return ErrNoPlayers
	}
	if handSize < 1 {
		return fmt.Errorf("invalid hand size %d", handSize)
	}
	if need := n*handSize + 1; s.Deck.Len() < need {
		return fmt.Errorf("%w: dealing needs %d cards, deck has %d", ErrDeckExhausted, need, s.Deck.Len())
	}

	for round := 0; round < handSize; round++ {
		for _, p := range s.PlayersGroup.players {
			c, _ := s.Deck.draw()
			p.Hand.Add(c)
		}
	}

	// a wild flipped at start carries ColorWild, which lets any card follow it
	top, _ := s.Deck.draw()
	s.Stack.push(top, top.Color)

	s.Turn = &Turn{index: 0, direction: 1}
	s.started = true
	return nil
}

// PlayOption customizes a single card play.
type PlayOption func(*playOptions)

type playOptions struct {
	color models.Color
}

// WithColor names the active color after a wild card. It is ignored for other cards.
func WithColor(c models.Color) PlayOption {
	return func(o *playOptions) {
		o.color = c
	}
}

// PlayOutcome reports what an accepted play did.
type PlayOutcome struct {
	Accepted    bool
	Card        *models.Card
	Effect      Effect
	ActiveColor models.Color
	// Target is the player hit by a draw penalty, if any.
	Target      *models.Player
	Drawn       int
	Regenerated bool
	Winner      *models.Player
}

// PlayCard moves cardID from the hand of playerID onto the stack and resolves the card's effect.
// Rejections return an error matching ErrPlayRejected and leave the state as it was.
func PlayCard(s *GameState, rules RuleSet, shuffler Shuffler, playerID, cardID string, opts ...PlayOption) (PlayOutcome, error) {
	if !s.started {
		return PlayOutcome{}, ErrNotStarted
	}
	if s.GameOver() {
		return PlayOutcome{}, ErrGameOver
	}

	var o playOptions
	for _, opt := range opts {
		opt(&o)
	}

	player := s.PlayersGroup.Get(playerID)
	if player == nil {
		return PlayOutcome{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if s.PlayersGroup.IndexOf(playerID) != s.Turn.index {
		return PlayOutcome{}, fmt.Errorf("%w: %s", ErrNotPlayersTurn, playerID)
	}
	card, _ := player.Hand.Find(cardID)
	if card == nil {
		return PlayOutcome{}, fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	if o.color != "" && card.IsWild() && !o.color.Valid() {
		return PlayOutcome{}, fmt.Errorf("%w: color %q", ErrIllegalPlay, o.color)
	}
	if !rules.CanPlay(card, s.Stack.CardOnTop(), s.Stack.ActiveColor()) {
		return PlayOutcome{}, fmt.Errorf("%w: %s on %s", ErrIllegalPlay, card, s.Stack.CardOnTop())
	}

	player.Hand.Remove(cardID)
	effect := rules.Effect(card)

	color := card.Color
	if effect.Wild {
		color = o.color
		if color == "" {
			color = mostHeldColor(player.Hand)
		}
	}
	s.Stack.push(card, color)

	out := PlayOutcome{
		Accepted:    true,
		Card:        card,
		Effect:      effect,
		ActiveColor: color,
	}

	if player.Hand.Len() == 0 {
		s.winner = player
		out.Winner = player
		return out, nil
	}

	n := s.PlayersGroup.Len()
	if effect.Reverse {
		if n == 2 {
			// heads-up, a reverse hands the turn straight back
			s.Turn.skipNext = true
		} else {
			s.Turn.direction = -s.Turn.direction
		}
	}
	if effect.Skip {
		s.Turn.skipNext = true
	}
	if effect.Draw > 0 && n > 1 {
		target := s.PlayersGroup.At(s.Turn.next(n, 1))
		out.Target = target
		out.Drawn, out.Regenerated = drawInto(s, shuffler, target, effect.Draw)
	}
	return out, nil
}

// drawInto gives up to count cards to p, recycling the stack when the deck runs dry.
// It stops early when the supply is exhausted.
func drawInto(s *GameState, shuffler Shuffler, p *models.Player, count int) (drawn int, regenerated bool) {
	for drawn < count {
		if s.Deck.IsEmpty() {
			if _, err := RegenerateDeck(s, shuffler); err != nil {
				return drawn, regenerated
			}
			regenerated = true
		}
		c, err := s.Deck.draw()
		if err != nil {
			return drawn, regenerated
		}
		p.Hand.Add(c)
		drawn++
	}
	return drawn, regenerated
}

// mostHeldColor picks the color h holds the most of, ties going to the earlier color
// in models.Colors. An empty or all-wild hand yields red.
func mostHeldColor(h *models.Hand) models.Color {
	counts := make(map[models.Color]int, len(models.Colors))
	for _, c := range h.Cards() {
		counts[c.Color]++
	}
	best := models.Colors[0]
	for _, c := range models.Colors[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// TakeDeckCard moves the top card of the deck into the current player's hand.
func TakeDeckCard(s *GameState) (*models.Card, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.GameOver() {
		return nil, ErrGameOver
	}
	player := s.TurnPlayer()
	c, err := s.Deck.draw()
	if err != nil {
		return nil, err
	}
	player.Hand.Add(c)
	return c, nil
}

// FinalizeTurn hands the turn to the next player in the play direction, wrapping around.
// A pending skip passes over one player and is consumed.
func FinalizeTurn(s *GameState) error {
	if !s.started {
		return ErrNotStarted
	}
	steps := 1
	if s.Turn.skipNext {
		steps = 2
		s.Turn.skipNext = false
	}
	s.Turn.index = s.Turn.next(s.PlayersGroup.Len(), steps)
	return nil
}

// RegenerateDeck shuffles every stack card except the top back under the deck.
// The top card and the active color stay as they are.
func RegenerateDeck(s *GameState, shuffler Shuffler) (int, error) {
	if s.Stack.Len() <= 1 {
		return 0, ErrDeckExhausted
	}
	recycled := s.Stack.takeBelowTop()
	shuffler.Shuffle(recycled)
	s.Deck.reset(append(recycled, s.Deck.cards...))
	return len(recycled), nil
}
