package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/japaniel/shengci/pkg/vocab"
)

// Type selects what a question shows and what the learner picks.
type Type string

const (
	ChineseToMeaning Type = "chinese-to-meaning"
	MeaningToChinese Type = "meaning-to-chinese"
	ChineseToPinyin  Type = "chinese-to-pinyin"
	PinyinToChinese  Type = "pinyin-to-chinese"
)

// Types lists the supported quiz types.
var Types = []Type{ChineseToMeaning, MeaningToChinese, ChineseToPinyin, PinyinToChinese}

// ErrUnknownType is returned for a quiz type outside Types.
var ErrUnknownType = errors.New("unknown quiz type")

// ParseType validates a quiz type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Question is one multiple-choice item.
type Question struct {
	Prompt  string
	Answer  vocab.Entry
	Choices []vocab.Entry // Answer plus decoys, shuffled
}

// Generator builds quizzes from lesson entries.
type Generator struct {
	// Options is the desired number of choices per question, answer included.
	Options int
	// Limit caps the number of questions; 0 means one per usable entry.
	Limit    int
	Language vocab.Language
	Rand     *rand.Rand
}

// NewGenerator returns a generator with four options, English meanings and a
// time-seeded random source.
func NewGenerator() *Generator {
	return &Generator{
		Options:  4,
		Language: vocab.English,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Shuffle permutes s in place with Fisher-Yates.
func Shuffle[T any](r *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// PromptText returns what a question of type t shows for e.
func PromptText(t Type, lang vocab.Language, e vocab.Entry) string {
	switch t {
	case ChineseToMeaning, ChineseToPinyin:
		return e.Chinese
	case MeaningToChinese:
		return e.Translation(lang)
	case PinyinToChinese:
		return e.Pinyin
	}
	return ""
}

// ChoiceText returns how e is rendered as a choice for type t.
func ChoiceText(t Type, lang vocab.Language, e vocab.Entry) string {
	switch t {
	case ChineseToMeaning:
		return e.Translation(lang)
	case ChineseToPinyin:
		return e.Pinyin
	case MeaningToChinese, PinyinToChinese:
		return e.Chinese
	}
	return ""
}

// Generate builds one question per usable lesson entry in random order.
// Decoys come from the lesson first; when it has too few distinct wrong
// answers the rest are drawn from all.
func (g *Generator) Generate(lesson, all []vocab.Entry, t Type) ([]Question, error) {
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}
	r := g.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	lang := g.Language
	if lang == "" {
		lang = vocab.English
	}

	var usable []vocab.Entry
	for _, e := range lesson {
		if PromptText(t, lang, e) != "" && ChoiceText(t, lang, e) != "" {
			usable = append(usable, e)
		}
	}
	order := make([]vocab.Entry, len(usable))
	copy(order, usable)
	Shuffle(r, order)
	if g.Limit > 0 && len(order) > g.Limit {
		order = order[:g.Limit]
	}

	questions := make([]Question, 0, len(order))
	for _, answer := range order {
		decoys := g.pickDecoys(r, answer, usable, all, t, lang)
		choices := append([]vocab.Entry{answer}, decoys...)
		Shuffle(r, choices)
		questions = append(questions, Question{
			Prompt:  PromptText(t, lang, answer),
			Answer:  answer,
			Choices: choices,
		})
	}
	return questions, nil
}

func (g *Generator) pickDecoys(r *rand.Rand, answer vocab.Entry, lesson, all []vocab.Entry, t Type, lang vocab.Language) []vocab.Entry {
	want := g.Options - 1
	if want <= 0 {
		return nil
	}
	// Two choices must never render the same text.
	seen := map[string]bool{ChoiceText(t, lang, answer): true}
	var picked []vocab.Entry

	draw := func(pool []vocab.Entry) {
		candidates := make([]vocab.Entry, len(pool))
		copy(candidates, pool)
		Shuffle(r, candidates)
		for _, c := range candidates {
			if len(picked) >= want {
				return
			}
			text := ChoiceText(t, lang, c)
			if text == "" || seen[text] || c.Key() == answer.Key() {
				continue
			}
			seen[text] = true
			picked = append(picked, c)
		}
	}

	draw(lesson)
	if len(picked) < want {
		draw(all)
	}
	return picked
}

// Scorer tallies answers for one quiz run.
type Scorer struct {
	Total   int
	Correct int
}

// NewScorer returns a scorer for a quiz of total questions.
func NewScorer(total int) *Scorer {
	return &Scorer{Total: total}
}

// Answer records the learner's choice and reports whether it was right.
func (s *Scorer) Answer(q Question, choice vocab.Entry) bool {
	ok := choice.Key() == q.Answer.Key()
	if ok {
		s.Correct++
	}
	return ok
}

// Score returns Correct/Total, or 0 for an empty quiz.
func (s *Scorer) Score() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}
