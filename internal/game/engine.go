// internal/game/engine.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Recorder receives every committed engine operation, e.g. to feed the action journal.
// RecordAction is called synchronously and must not block.
type Recorder interface {
	RecordAction(rec models.ActionRecord)
}

// Option configures a GameEngine at construction.
type Option func(*GameEngine)

// WithLogger sets the base logger. Entries carry a "game" field with the engine ID.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *GameEngine) {
		e.baseLogger = logger
	}
}

// WithRules replaces the standard card set and matching rule.
func WithRules(rules RuleSet) Option {
	return func(e *GameEngine) {
		e.rules = rules
	}
}

// WithHouseRules sets hand size and seat limit.
func WithHouseRules(h HouseRules) Option {
	return func(e *GameEngine) {
		e.houseRules = h
	}
}

// WithShuffler sets the shuffler used to build and regenerate the deck.
func WithShuffler(s Shuffler) Option {
	return func(e *GameEngine) {
		e.shuffler = s
	}
}

// WithRecorder attaches an action journal.
func WithRecorder(r Recorder) Option {
	return func(e *GameEngine) {
		e.recorder = r
	}
}

// WithGameID fixes the engine ID instead of generating one.
func WithGameID(id uuid.UUID) Option {
	return func(e *GameEngine) {
		e.ID = id
	}
}

// GameEngine is the façade for one game. It is the only mutator of its GameState:
// each method runs the commands of one operation, then dispatches the matching events.
//
// A GameEngine is not safe for concurrent use. Callers serving several goroutines
// must serialize calls themselves.
type GameEngine struct {
	ID uuid.UUID

	state      *GameState
	events     *EventBus
	rules      RuleSet
	houseRules HouseRules
	shuffler   Shuffler
	recorder   Recorder

	baseLogger  logrus.FieldLogger
	logger      *logrus.Entry
	actionIndex int // increments for each journaled action
}

// NewEngine builds an engine with an empty state.
func NewEngine(opts ...Option) *GameEngine {
	id, _ := uuid.NewRandom()
	e := &GameEngine{
		ID:         id,
		state:      NewGameState(),
		rules:      StandardRules{},
		houseRules: DefaultHouseRules(),
		baseLogger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shuffler == nil {
		e.shuffler = NewShuffler(0)
	}
	e.logger = e.baseLogger.WithField("game", e.ID)
	e.events = NewEventBus(e.logger)
	return e
}

// Players returns the seated players in turn order.
func (e *GameEngine) Players() []*models.Player {
	return e.state.PlayersGroup.Players()
}

// PlayerTurn returns the player whose move is legal, or nil before start.
func (e *GameEngine) PlayerTurn() *models.Player {
	return e.state.TurnPlayer()
}

// StackCard returns the top of the discard pile, or nil before start.
func (e *GameEngine) StackCard() *models.Card {
	return e.state.Stack.CardOnTop()
}

// ActiveColor is the color the next play must follow.
func (e *GameEngine) ActiveColor() models.Color {
	return e.state.Stack.ActiveColor()
}

func (e *GameEngine) DeckSize() int {
	return e.state.Deck.Len()
}

func (e *GameEngine) StackSize() int {
	return e.state.Stack.Len()
}

// Direction is +1 in join order, -1 when reversed.
func (e *GameEngine) Direction() int {
	return e.state.Turn.Direction()
}

func (e *GameEngine) Started() bool {
	return e.state.Started()
}

func (e *GameEngine) GameOver() bool {
	return e.state.GameOver()
}

// Winner returns the player who emptied their hand, or nil.
func (e *GameEngine) Winner() *models.Player {
	return e.state.Winner()
}

func (e *GameEngine) HouseRules() HouseRules {
	return e.houseRules
}

// SetHouseRules changes the table settings. Not allowed while a game is running,
// nor with a seat limit below the players already seated.
func (e *GameEngine) SetHouseRules(h HouseRules) error {
	if e.state.Started() && !e.state.GameOver() {
		return ErrAlreadyStarted
	}
	if seated := e.state.PlayersGroup.Len(); h.MaxPlayers > 0 && seated > h.MaxPlayers {
		return fmt.Errorf("%w: %d players seated, limit %d", ErrTooManyPlayers, seated, h.MaxPlayers)
	}
	e.houseRules = h
	return nil
}

// On subscribes handler to a lifecycle event.
func (e *GameEngine) On(event EventName, handler EventHandler) Subscription {
	return e.events.On(event, handler)
}

// Off removes a subscription made with On.
func (e *GameEngine) Off(sub Subscription) bool {
	return e.events.Off(sub)
}

// Join seats players in the given order. The batch is all-or-nothing.
func (e *GameEngine) Join(players []*models.Player) error {
	if err := AddPlayers(e.state, e.houseRules.MaxPlayers, players); err != nil {
		e.logger.WithError(err).Warn("join refused")
		return fmt.Errorf("join: %w", err)
	}

	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	e.logger.WithField("players", ids).Info("players joined")
	e.logAction("", models.ActionPlayerJoin, map[string]interface{}{"players": ids})

	e.events.Dispatch(Event{Name: EventAfterJoin})
	return nil
}

// Start builds a fresh deck, deals the hands and gives the turn to the first player.
// Once a game is over, Start begins a new round with the same players.
func (e *GameEngine) Start() error {
	if e.state.Started() && !e.state.GameOver() {
		return fmt.Errorf("start: %w", ErrAlreadyStarted)
	}
	n := e.state.PlayersGroup.Len()
	if n == 0 {
		return fmt.Errorf("start: %w", ErrNoPlayers)
	}
	// refuse before BuildDeck touches the table
	if need, have := n*e.houseRules.HandSize+1, len(e.rules.Cards()); need > have || e.houseRules.HandSize < 1 {
		return fmt.Errorf("start: %w: dealing %d cards to %d players needs %d, the set has %d",
			ErrDeckExhausted, e.houseRules.HandSize, n, need, have)
	}

	size := BuildDeck(e.state, e.rules, e.shuffler)
	if err := StartGame(e.state, e.houseRules.HandSize); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	top := e.state.Stack.CardOnTop()
	e.logger.WithFields(logrus.Fields{
		"players":  n,
		"deckSize": e.state.Deck.Len(),
		"top":      top.Sprite,
	}).Info("game started")
	e.logAction("", models.ActionGameStart, map[string]interface{}{
		"cards":    size,
		"handSize": e.houseRules.HandSize,
		"top":      top.ID,
	})

	e.events.Dispatch(Event{Name: EventAfterGameStart, CardID: top.ID})
	return nil
}

// PlayCard plays cardID for playerID. On acceptance the turn advances and
// EventAfterPlayCard fires; a play that empties the hand ends the game instead.
// A rejected play returns an error matching ErrPlayRejected and dispatches nothing.
func (e *GameEngine) PlayCard(playerID, cardID string, opts ...PlayOption) (PlayOutcome, error) {
	log := e.logger.WithFields(logrus.Fields{"player": playerID, "card": cardID})

	out, err := PlayCard(e.state, e.rules, e.shuffler, playerID, cardID, opts...)
	if err != nil {
		log.WithError(err).Debug("play rejected")
		return out, err
	}

	payload := map[string]interface{}{
		"cardId":      out.Card.ID,
		"sprite":      out.Card.Sprite,
		"activeColor": string(out.ActiveColor),
	}
	if out.Target != nil {
		payload["target"] = out.Target.ID
		payload["drawn"] = out.Drawn
		if out.Drawn < out.Effect.Draw {
			log.Warnf("draw penalty short: %d of %d cards available", out.Drawn, out.Effect.Draw)
		}
	}
	log.WithField("sprite", out.Card.Sprite).Debug("card played")
	e.logAction(playerID, models.ActionPlayCard, payload)

	if out.Regenerated {
		e.logAction("", models.ActionDeckRegenerated, map[string]interface{}{"deckSize": e.state.Deck.Len()})
		e.events.Dispatch(Event{Name: EventAfterDeckRegenerated})
	}

	if out.Winner != nil {
		log.Info("player emptied their hand, game over")
		e.logAction(playerID, models.ActionGameEnd, map[string]interface{}{"winner": playerID})
		e.events.Dispatch(Event{Name: EventAfterPlayCard, PlayerID: playerID, CardID: cardID})
		e.events.Dispatch(Event{Name: EventAfterGameEnd, PlayerID: playerID})
		return out, nil
	}

	if err := FinalizeTurn(e.state); err != nil {
		return out, fmt.Errorf("finalize turn: %w", err)
	}
	e.events.Dispatch(Event{Name: EventAfterPlayCard, PlayerID: playerID, CardID: cardID})
	return out, nil
}

// TakeCard draws the top card for the current player and passes the turn.
// The deck is replenished from the stack first if it is empty, and again right after
// the draw if the draw emptied it. When nothing can be recycled ErrDeckExhausted is
// returned and the turn stays with the player.
func (e *GameEngine) TakeCard() (*models.Card, error) {
	if !e.state.Started() {
		return nil, fmt.Errorf("take card: %w", ErrNotStarted)
	}
	if e.state.GameOver() {
		return nil, fmt.Errorf("take card: %w", ErrGameOver)
	}

	regenerated := false
	if e.state.Deck.IsEmpty() {
		if err := e.regenerate(); err != nil {
			e.logger.WithError(err).Warn("cannot draw: deck and stack exhausted")
			return nil, fmt.Errorf("take card: %w", err)
		}
		regenerated = true
	}

	player := e.state.TurnPlayer()
	card, err := TakeDeckCard(e.state)
	if err != nil {
		return nil, fmt.Errorf("take card: %w", err)
	}

	if e.state.Deck.IsEmpty() {
		if err := e.regenerate(); err == nil {
			regenerated = true
		} else {
			e.logger.Debug("deck emptied and stack has nothing to recycle")
		}
	}

	if err := FinalizeTurn(e.state); err != nil {
		return card, fmt.Errorf("finalize turn: %w", err)
	}

	e.logger.WithFields(logrus.Fields{"player": player.ID, "card": card.ID}).Debug("card taken")
	e.logAction(player.ID, models.ActionTakeCard, map[string]interface{}{
		"cardId":   card.ID,
		"deckSize": e.state.Deck.Len(),
	})

	if regenerated {
		e.events.Dispatch(Event{Name: EventAfterDeckRegenerated})
	}
	e.events.Dispatch(Event{Name: EventAfterTakeCard, PlayerID: player.ID, CardID: card.ID})
	return card, nil
}

// regenerate recycles the stack into the deck and journals it.
func (e *GameEngine) regenerate() error {
	moved, err := RegenerateDeck(e.state, e.shuffler)
	if err != nil {
		return err
	}
	e.logger.WithField("moved", moved).Info("deck regenerated from stack")
	e.logAction("", models.ActionDeckRegenerated, map[string]interface{}{"deckSize": e.state.Deck.Len()})
	return nil
}

// logAction hands the action to the recorder, if any.
func (e *GameEngine) logAction(actorID, actionType string, payload map[string]interface{}) {
	e.actionIndex++
	if e.recorder == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	e.recorder.RecordAction(models.ActionRecord{
		GameID:        e.ID,
		ActionIndex:   e.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	})
}
