package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandAddFindRemove(t *testing.T) {
	h := NewHand()
	a := NewCard(ColorRed, NumberValue(1))
	b := NewCard(ColorBlue, ValueSkip)
	c := NewCard(ColorWild, ValueWild)
	h.Add(a, b, c)
	require.Equal(t, 3, h.Len())

	found, idx := h.Find(b.ID)
	assert.Equal(t, b, found)
	assert.Equal(t, 1, idx)

	removed, ok := h.Remove(b.ID)
	assert.True(t, ok)
	assert.Equal(t, b, removed)
	assert.Equal(t, []*Card{a, c}, h.Cards())

	_, ok = h.Remove(b.ID)
	assert.False(t, ok)
	found, idx = h.Find("missing")
	assert.Nil(t, found)
	assert.Equal(t, -1, idx)
}

func TestHandCardsIsACopy(t *testing.T) {
	h := NewHand()
	h.Add(NewCard(ColorRed, NumberValue(1)))
	cards := h.Cards()
	cards[0] = nil
	assert.NotNil(t, h.Cards()[0])
}

func TestHandClear(t *testing.T) {
	h := NewHand()
	a := NewCard(ColorRed, NumberValue(1))
	h.Add(a)
	assert.Equal(t, []*Card{a}, h.Clear())
	assert.Zero(t, h.Len())
}

func TestPlayerJSON(t *testing.T) {
	p := NewPlayer("jorge1234", "Jorge", "https://example.com/jorge.jpg")
	p.Hand.Add(NewCard(ColorGreen, ValueReverse))

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "jorge1234", got["id"])
	assert.Equal(t, "https://example.com/jorge.jpg", got["avatarUrl"])
	hand, ok := got["hand"].([]interface{})
	require.True(t, ok)
	require.Len(t, hand, 1)
	assert.Equal(t, "green-reverse", hand[0].(map[string]interface{})["sprite"])
}
