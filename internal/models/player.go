package models

import "encoding/json"

// Hand is the ordered set of cards a single player holds.
type Hand struct {
	cards []*Card
}

func NewHand() *Hand {
	return &Hand{cards: []*Card{}}
}

// Add appends cards at the end of the hand.
func (h *Hand) Add(cards ...*Card) {
	h.cards = append(h.cards, cards...)
}

// Find returns the card with the given ID and its index, or nil and -1.
func (h *Hand) Find(cardID string) (*Card, int) {
	for i, c := range h.cards {
		if c.ID == cardID {
			return c, i
		}
	}
	return nil, -1
}

// Remove takes the card with the given ID out of the hand.
func (h *Hand) Remove(cardID string) (*Card, bool) {
	c, idx := h.Find(cardID)
	if c == nil {
		return nil, false
	}
	h.cards = append(h.cards[:idx], h.cards[idx+1:]...)
	return c, true
}

// Cards returns a copy of the hand in order.
func (h *Hand) Cards() []*Card {
	out := make([]*Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *Hand) Len() int {
	return len(h.cards)
}

// Clear empties the hand and returns what it held.
func (h *Hand) Clear() []*Card {
	out := h.cards
	h.cards = []*Card{}
	return out
}

// MarshalJSON renders the hand as a plain card array.
func (h *Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.cards)
}

// Player is a seat at the table. The ID is supplied by the caller and must be unique per game.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Hand      *Hand  `json:"hand"`
}

func NewPlayer(id, name, avatarURL string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		AvatarURL: avatarURL,
		Hand:      NewHand(),
	}
}
