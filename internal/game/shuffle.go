package game

import (
	"math/rand"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
)

// Shuffler reorders cards in place.
type Shuffler interface {
	Shuffle(cards []*models.Card)
}

type randShuffler struct {
	r *rand.Rand
}

// NewShuffler returns a shuffler seeded with seed, or with the current time when seed is 0.
func NewShuffler(seed int64) Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randShuffler{r: rand.New(rand.NewSource(seed))}
}

func (s *randShuffler) Shuffle(cards []*models.Card) {
	s.r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
