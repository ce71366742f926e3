// Package gloss adds kana readings to the Japanese translations of entries so
// learners who read Japanese can check unfamiliar kanji in a gloss.
package gloss

import (
	"context"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/japaniel/shengci/pkg/vocab"
)

// Annotator converts Japanese text to a hiragana reading.
type Annotator struct {
	t *tokenizer.Tokenizer
}

// NewAnnotator creates a tokenizer backed by the IPA dictionary.
func NewAnnotator() (*Annotator, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Annotator{t: t}, nil
}

// Reading returns the hiragana reading of text. Tokens the dictionary has no
// reading for (punctuation, latin, unknown words) are kept as written.
func (a *Annotator) Reading(text string) string {
	var b strings.Builder
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		// IPA features: index 7 is the katakana reading.
		features := token.Features()
		if len(features) > 7 && features[7] != "*" {
			b.WriteString(ToHiragana(features[7]))
			continue
		}
		b.WriteString(token.Surface)
	}
	return b.String()
}

// AnnotateAll computes readings for every entry with a Japanese translation,
// keyed by composite key. Work is spread over workers goroutines.
func (a *Annotator) AnnotateAll(ctx context.Context, entries []vocab.Entry, workers int) (map[string]string, error) {
	out := make(map[string]string)
	var mu sync.Mutex

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp := NewWorkerPool(workers, workers*2)
	wp.Start(ctx)

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Japanese == "" || e.Japanese == vocab.MissingTranslation || seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		key, text := e.Key(), e.Japanese
		job := func(ctx context.Context) error {
			reading := a.Reading(text)
			mu.Lock()
			out[key] = reading
			mu.Unlock()
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			wp.Close()
			return nil, err
		}
	}
	wp.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
