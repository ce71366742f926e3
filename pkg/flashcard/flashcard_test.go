package flashcard

import (
	"math/rand"
	"testing"

	"github.com/japaniel/shengci/pkg/vocab"
)

type recorder struct{ keys []string }

func (r *recorder) Add(key string) error {
	r.keys = append(r.keys, key)
	return nil
}

func threeCards() []vocab.Entry {
	return []vocab.Entry{
		{LessonCode: "1-1", Chinese: "一", Pinyin: "yī"},
		{LessonCode: "1-1", Chinese: "二", Pinyin: "èr"},
		{LessonCode: "1-1", Chinese: "三", Pinyin: "sān"},
	}
}

func TestFlipToggles(t *testing.T) {
	d := NewDeck(threeCards())
	if d.Flipped() {
		t.Fatalf("new deck should show the front")
	}
	d.Flip()
	if !d.Flipped() {
		t.Fatalf("expected back side after flip")
	}
	d.Flip()
	if d.Flipped() {
		t.Fatalf("expected front side after second flip")
	}
}

func TestNavigationClampsAndResetsSide(t *testing.T) {
	d := NewDeck(threeCards())
	d.Previous()
	if d.Index() != 0 {
		t.Fatalf("previous at start should stay at 0, got %d", d.Index())
	}
	d.Flip()
	d.Next()
	if d.Index() != 1 || d.Flipped() {
		t.Fatalf("expected index 1 front side, got %d flipped=%v", d.Index(), d.Flipped())
	}
	d.Next()
	d.Next()
	d.Next()
	if d.Index() != 2 {
		t.Fatalf("next at end should clamp to 2, got %d", d.Index())
	}
	d.Flip()
	d.Previous()
	if d.Index() != 1 || d.Flipped() {
		t.Fatalf("expected index 1 front side, got %d flipped=%v", d.Index(), d.Flipped())
	}
}

func TestMarkDifficultKeepsPosition(t *testing.T) {
	d := NewDeck(threeCards())
	d.Next()
	d.Flip()
	r := &recorder{}
	if err := d.MarkDifficult(r); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if len(r.keys) != 1 || r.keys[0] != "二|èr|1-1" {
		t.Fatalf("unexpected keys %v", r.keys)
	}
	if d.Index() != 1 || !d.Flipped() {
		t.Fatalf("navigation state changed: %d flipped=%v", d.Index(), d.Flipped())
	}
}

func TestEmptyDeck(t *testing.T) {
	d := NewDeck(nil)
	if _, ok := d.Current(); ok {
		t.Fatalf("expected no current card")
	}
	d.Next()
	d.Previous()
	if d.Index() != 0 {
		t.Fatalf("empty deck index moved to %d", d.Index())
	}
	r := &recorder{}
	if err := d.MarkDifficult(r); err != nil || len(r.keys) != 0 {
		t.Fatalf("marking an empty deck should be a no-op")
	}
}

func TestShuffleResets(t *testing.T) {
	d := NewDeck(threeCards())
	d.Next()
	d.Flip()
	d.Shuffle(rand.New(rand.NewSource(1)))
	if d.Index() != 0 || d.Flipped() || d.Len() != 3 {
		t.Fatalf("shuffle should reset to the first card front side")
	}
}

func TestRemoveCurrent(t *testing.T) {
	d := NewDeck(threeCards())
	d.Next()
	d.Flip()
	d.RemoveCurrent()
	if e, _ := d.Current(); d.Len() != 2 || e.Chinese != "三" || d.Flipped() {
		t.Fatalf("expected card 三 front side up in a 2-card deck, got %+v", e)
	}
	d.RemoveCurrent()
	if e, _ := d.Current(); d.Len() != 1 || d.Index() != 0 || e.Chinese != "一" {
		t.Fatalf("removing the last card should step back, got %+v at %d", e, d.Index())
	}
	d.RemoveCurrent()
	if _, ok := d.Current(); ok || d.Len() != 0 {
		t.Fatalf("expected an empty deck")
	}
	d.RemoveCurrent()
}
