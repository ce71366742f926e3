package flashcard

import (
	"math/rand"

	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/vocab"
)

// Marker records a card as difficult.
type Marker interface {
	Add(key string) error
}

// Deck walks a list of cards, showing the front or back of the current one.
type Deck struct {
	cards   []vocab.Entry
	index   int
	flipped bool
}

// NewDeck returns a deck positioned on the first card, front side up.
func NewDeck(cards []vocab.Entry) *Deck {
	c := make([]vocab.Entry, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Len returns the number of cards.
func (d *Deck) Len() int { return len(d.cards) }

// Index returns the position of the current card.
func (d *Deck) Index() int { return d.index }

// Flipped reports whether the back side is showing.
func (d *Deck) Flipped() bool { return d.flipped }

// Current returns the current card; ok is false for an empty deck.
func (d *Deck) Current() (vocab.Entry, bool) {
	if len(d.cards) == 0 {
		return vocab.Entry{}, false
	}
	return d.cards[d.index], true
}

// Flip toggles between front and back.
func (d *Deck) Flip() {
	d.flipped = !d.flipped
}

// Next moves forward one card, stopping at the last, and shows the front.
func (d *Deck) Next() {
	if d.index < len(d.cards)-1 {
		d.index++
	}
	d.flipped = false
}

// Previous moves back one card, stopping at the first, and shows the front.
func (d *Deck) Previous() {
	if d.index > 0 {
		d.index--
	}
	d.flipped = false
}

// Shuffle reorders the cards and returns to the first one.
func (d *Deck) Shuffle(r *rand.Rand) {
	quiz.Shuffle(r, d.cards)
	d.index = 0
	d.flipped = false
}

// MarkDifficult flags the current card. Position and side are unchanged.
func (d *Deck) MarkDifficult(m Marker) error {
	e, ok := d.Current()
	if !ok {
		return nil
	}
	return m.Add(e.Key())
}

// RemoveCurrent drops the current card and shows the front of the one that
// took its place, or of the new last card when the last one was removed.
func (d *Deck) RemoveCurrent() {
	if len(d.cards) == 0 {
		return
	}
	d.cards = append(d.cards[:d.index], d.cards[d.index+1:]...)
	if d.index >= len(d.cards) && d.index > 0 {
		d.index--
	}
	d.flipped = false
}
