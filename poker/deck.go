package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrEndOfDeck is returned when more cards are requested than remain.
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck represents a standard 52-card deck. The card order is owned by the deck
// and Next is the cursor of the first undealt card, so a Deck is a plain value
// that can be copied and serialized without losing its position.
type Deck struct {
	Cards [DeckSize]Card
	Next  int
}

// NewDeck returns an unshuffled deck in suit-major order.
func NewDeck() Deck {
	var d Deck
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.Cards[i] = NewCard(rank, suit)
			i++
		}
	}
	return d
}

// NewShuffledDeck builds a fresh deck and shuffles it with rng.
func NewShuffledDeck(rng *rand.Rand) Deck {
	d := NewDeck()
	d.Shuffle(rng)
	return d
}

// Shuffle shuffles the deck using Fisher-Yates and rewinds the cursor.
func (d *Deck) Shuffle(rng *rand.Rand) {
	d.Next = 0
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Deal deals n cards from the deck
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.Next < 0 || d.Next+n > len(d.Cards) {
		return nil, ErrEndOfDeck
	}
	cards := make([]Card, n)
	copy(cards, d.Cards[d.Next:d.Next+n])
	d.Next += n
	return cards, nil
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() (Card, error) {
	if d.Next < 0 || d.Next >= len(d.Cards) {
		return 0, ErrEndOfDeck
	}
	card := d.Cards[d.Next]
	d.Next++
	return card, nil
}

// Burn discards the top card.
func (d *Deck) Burn() error {
	_, err := d.DealOne()
	return err
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	if d.Next < 0 || d.Next > len(d.Cards) {
		return 0
	}
	return len(d.Cards) - d.Next
}

// Remaining returns a copy of the undealt cards in deal order.
func (d *Deck) Remaining() []Card {
	out := make([]Card, d.CardsRemaining())
	copy(out, d.Cards[len(d.Cards)-len(out):])
	return out
}

// Validate reports whether the cursor is in range and the deck holds each of
// the 52 cards exactly once.
func (d *Deck) Validate() error {
	if d.Next < 0 || d.Next > len(d.Cards) {
		return fmt.Errorf("deck cursor %d out of range", d.Next)
	}
	var seen [DeckSize]bool
	for i, c := range d.Cards {
		if !c.Valid() {
			return fmt.Errorf("invalid card %d at position %d", uint8(c), i)
		}
		if seen[c] {
			return fmt.Errorf("card %s appears more than once", c)
		}
		seen[c] = true
	}
	return nil
}
