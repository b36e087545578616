package solitaire

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// NewRand returns a random source for dealing. A zero seed draws one from crypto/rand.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = randomSeed()
	}
	return rand.New(rand.NewSource(seed))
}

func randomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63))
}

// ShuffleCards returns the 52 cards of a standard deck in random order.
// Klondike is played without jokers, so includeJokers does not change the deck.
//
// Cards are drawn one at a time uniformly from the ones not yet drawn.
func ShuffleCards(rng *rand.Rand, includeJokers bool) []Card {
	cards := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, v := range Values {
			cards = append(cards, Card{Suit: s, Value: v})
		}
	}

	deck := make([]Card, 0, len(cards))
	for len(cards) > 0 {
		i := rng.Intn(len(cards))
		deck = append(deck, cards[i])
		cards = append(cards[:i], cards[i+1:]...)
	}
	return deck
}

// InitialState deals a new game from a freshly shuffled deck.
//
// Pile i receives its face-up card on round i; piles to its right get one
// face-down card each on the same round. The 24 leftover cards form the stock.
func InitialState(rng *rand.Rand) State {
	deck := ShuffleCards(rng, false)
	st := NewState()

	next := 0
	for i, pile := range Piles {
		c := deck[next]
		next++
		c.Up = true
		st.Put(pile, c)
		for _, right := range Piles[i+1:] {
			c := deck[next]
			next++
			c.Up = false
			st.Put(right, c)
		}
	}

	draw := make([]Card, 0, len(deck)-next)
	for _, c := range deck[next:] {
		c.Up = false
		draw = append(draw, c)
	}
	st.zones[Draw] = draw
	return st
}

// Dealer hands out initial states from one shared random source.
// It is safe for concurrent use.
type Dealer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewDealer(seed int64) *Dealer {
	return &Dealer{rng: NewRand(seed)}
}

func (d *Dealer) Deal() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return InitialState(d.rng)
}
