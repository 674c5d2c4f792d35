// internal/game/rules.go
package game

import (
	"fmt"
	"math"

	"github.com/jason-s-yu/uno/internal/models"
)

// Effect describes what a played card does beyond landing on the stack.
type Effect struct {
	Skip    bool // the next player loses their turn
	Reverse bool // play direction flips
	Draw    int  // cards the next player must take; implies Skip
	Wild    bool // the player names the next active color
}

// None reports whether the effect changes nothing.
func (e Effect) None() bool {
	return !e.Skip && !e.Reverse && e.Draw == 0 && !e.Wild
}

// RuleSet is the pluggable table of cards, matching rule and special-card effects.
type RuleSet interface {
	// Cards returns a fresh instance of every card in the full set.
	Cards() []*models.Card
	// CanPlay reports whether card may be played on top given the active color.
	CanPlay(card, top *models.Card, activeColor models.Color) bool
	// Effect returns the side effects of playing card.
	Effect(card *models.Card) Effect
}

// StandardRules is the classic 108 card set: per color one 0, two of 1-9, two each of
// skip, reverse and draw two; plus four wild and four wild draw four.
type StandardRules struct{}

func (StandardRules) Cards() []*models.Card {
	cards := make([]*models.Card, 0, 108)
	for _, color := range models.Colors {
		cards = append(cards, models.NewCard(color, models.ValueZero))
		for copies := 0; copies < 2; copies++ {
			for n := 1; n <= 9; n++ {
				cards = append(cards, models.NewCard(color, models.NumberValue(n)))
			}
			cards = append(cards,
				models.NewCard(color, models.ValueSkip),
				models.NewCard(color, models.ValueReverse),
				models.NewCard(color, models.ValueDrawTwo),
			)
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards,
			models.NewCard(models.ColorWild, models.ValueWild),
			models.NewCard(models.ColorWild, models.ValueWildDrawFour),
		)
	}
	return cards
}

// CanPlay: wilds always match; otherwise the color must equal the active color or the
// value must equal the top card's value. An active color of wild accepts anything.
func (StandardRules) CanPlay(card, top *models.Card, activeColor models.Color) bool {
	if card.IsWild() || top == nil || activeColor == models.ColorWild {
		return true
	}
	return card.Color == activeColor || card.Value == top.Value
}

func (StandardRules) Effect(card *models.Card) Effect {
	switch card.Value {
	case models.ValueSkip:
		return Effect{Skip: true}
	case models.ValueReverse:
		return Effect{Reverse: true}
	case models.ValueDrawTwo:
		return Effect{Draw: 2, Skip: true}
	case models.ValueWild:
		return Effect{Wild: true}
	case models.ValueWildDrawFour:
		return Effect{Wild: true, Draw: 4, Skip: true}
	}
	return Effect{}
}

// HouseRules are the table settings a game is configured with before it starts.
type HouseRules struct {
	HandSize   int `json:"handSize"`   // cards dealt to each player at start
	MaxPlayers int `json:"maxPlayers"` // seats available; 0 means unlimited
}

// DefaultHouseRules deals seven cards and seats up to ten players.
func DefaultHouseRules() HouseRules {
	return HouseRules{HandSize: 7, MaxPlayers: 10}
}

// Update will update the house rules with the new rules provided.
// Keys that are absent keep their current value.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string, minVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		var n int
		switch v := val.(type) {
		case float64: // JSON numbers decode as float64
			if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
				return fmt.Errorf("%s must be a whole number", key)
			}
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		*field = n
		return nil
	}

	if err := assignInt(&rules.HandSize, "handSize", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.MaxPlayers, "maxPlayers", 0); err != nil {
		return err
	}
	return nil
}

// ParseRules applies the map on top of current and returns the result.
// current is left untouched on error.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(rules)
	if err != nil {
		return current, err
	}
	return houseRules, nil
}
