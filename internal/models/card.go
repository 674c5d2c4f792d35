// internal/models/card.go
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Color is the suit-like facet of a card used by the matching rule.
type Color string

const (
	ColorWild   Color = "wild"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

// Colors lists the playable colors in their canonical order. Wild is not a playable color.
var Colors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Valid reports whether c is one of the four playable colors.
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor converts client input into a playable Color.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if !c.Valid() {
		return "", fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// Value is the face of a card: a digit or an action symbol.
type Value string

const (
	ValueZero         Value = "0"
	ValueSkip         Value = "skip"
	ValueReverse      Value = "reverse"
	ValueDrawTwo      Value = "draw2"
	ValueWild         Value = "wild"
	ValueWildDrawFour Value = "wild_draw4"
)

// NumberValue returns the Value for a digit 0-9.
func NumberValue(n int) Value {
	return Value(fmt.Sprintf("%d", n))
}

// IsNumber reports whether v is one of the digit faces.
func (v Value) IsNumber() bool {
	return len(v) == 1 && v[0] >= '0' && v[0] <= '9'
}

// Card is a single card instance. Cards are created once per game and never mutated.
type Card struct {
	ID     string `json:"id"`
	Sprite string `json:"sprite"` // visual tag consumed by the presentation layer
	Color  Color  `json:"color"`
	Value  Value  `json:"value"`
}

// NewCard builds a card with a fresh unique ID and the sprite tag derived from its faces.
func NewCard(color Color, value Value) *Card {
	return &Card{
		ID:     uuid.NewString(),
		Sprite: SpriteFor(color, value),
		Color:  color,
		Value:  value,
	}
}

// SpriteFor returns the visual tag for a card face, e.g. "red-7", "blue-skip", "wild-draw4".
func SpriteFor(color Color, value Value) string {
	switch value {
	case ValueWild:
		return "wild"
	case ValueWildDrawFour:
		return "wild-draw4"
	}
	return fmt.Sprintf("%s-%s", color, value)
}

// IsWild reports whether the card lets its player name the next color.
func (c *Card) IsWild() bool {
	return c.Value == ValueWild || c.Value == ValueWildDrawFour
}

func (c *Card) String() string {
	return c.Sprite
}
