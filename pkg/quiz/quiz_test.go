package quiz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/japaniel/shengci/pkg/vocab"
)

func lessonEntries(lesson string, n int) []vocab.Entry {
	var out []vocab.Entry
	for i := 0; i < n; i++ {
		out = append(out, vocab.Entry{
			LessonCode: lesson,
			Chinese:    fmt.Sprintf("字%s-%d", lesson, i),
			Pinyin:     fmt.Sprintf("zi%s-%d", lesson, i),
			English:    fmt.Sprintf("word %s-%d", lesson, i),
		})
	}
	return out
}

func testGenerator() *Generator {
	g := NewGenerator()
	g.Rand = rand.New(rand.NewSource(42))
	return g
}

func TestShuffleIsPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	in := []int{1, 2, 2, 3, 4, 5, 6, 7, 8, 9}
	out := make([]int, len(in))
	copy(out, in)
	Shuffle(r, out)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d vs %d", len(out), len(in))
	}
	a := append([]int(nil), in...)
	b := append([]int(nil), out...)
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("multiset changed: %v vs %v", in, out)
		}
	}
}

func TestGenerateOneQuestionPerEntry(t *testing.T) {
	lesson := lessonEntries("1-1", 6)
	qs, err := testGenerator().Generate(lesson, lesson, ChineseToMeaning)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(qs) != len(lesson) {
		t.Fatalf("expected %d questions, got %d", len(lesson), len(qs))
	}
	seen := map[string]bool{}
	for _, q := range qs {
		if seen[q.Answer.Key()] {
			t.Fatalf("answer %q asked twice", q.Answer.Key())
		}
		seen[q.Answer.Key()] = true
		if q.Prompt != q.Answer.Chinese {
			t.Fatalf("prompt %q does not match answer %q", q.Prompt, q.Answer.Chinese)
		}
		if len(q.Choices) != 4 {
			t.Fatalf("expected 4 choices, got %d", len(q.Choices))
		}
		found := 0
		for _, c := range q.Choices {
			if c.Key() == q.Answer.Key() {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("answer should appear exactly once among choices, got %d", found)
		}
	}
}

func TestGenerateFallsBackToFullVocabulary(t *testing.T) {
	lesson := lessonEntries("1-1", 2)
	all := append(append([]vocab.Entry{}, lesson...), lessonEntries("2-1", 5)...)
	qs, err := testGenerator().Generate(lesson, all, MeaningToChinese)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, q := range qs {
		if len(q.Choices) != 4 {
			t.Fatalf("expected decoys from the full vocabulary, got %d choices", len(q.Choices))
		}
	}
}

func TestGenerateSmallPoolGivesFewerOptions(t *testing.T) {
	lesson := lessonEntries("1-1", 2)
	qs, err := testGenerator().Generate(lesson, lesson, ChineseToPinyin)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, q := range qs {
		if len(q.Choices) != 2 {
			t.Fatalf("expected 2 choices, got %d", len(q.Choices))
		}
	}
}

func TestGenerateSkipsDuplicateChoiceText(t *testing.T) {
	lesson := []vocab.Entry{
		{LessonCode: "1-1", Chinese: "好", Pinyin: "hǎo", English: "good"},
		{LessonCode: "1-1", Chinese: "棒", Pinyin: "bàng", English: "good"},
		{LessonCode: "1-1", Chinese: "壞", Pinyin: "huài", English: "bad"},
	}
	qs, err := testGenerator().Generate(lesson, lesson, ChineseToMeaning)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, q := range qs {
		texts := map[string]bool{}
		for _, c := range q.Choices {
			if texts[c.English] {
				t.Fatalf("duplicate choice text %q in %+v", c.English, q.Choices)
			}
			texts[c.English] = true
		}
	}
}

func TestGenerateSkipsEntriesWithoutAnswerText(t *testing.T) {
	lesson := lessonEntries("1-1", 3)
	lesson[1].Vietnamese = "chào"
	g := testGenerator()
	g.Language = vocab.Vietnamese
	qs, err := g.Generate(lesson, lesson, ChineseToMeaning)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(qs) != 1 || qs[0].Answer.Vietnamese != "chào" {
		t.Fatalf("expected a single vietnamese question, got %+v", qs)
	}
}

func TestGenerateLimit(t *testing.T) {
	lesson := lessonEntries("1-1", 10)
	g := testGenerator()
	g.Limit = 3
	qs, err := g.Generate(lesson, lesson, PinyinToChinese)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := testGenerator().Generate(nil, nil, Type("essay"))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestScorer(t *testing.T) {
	lesson := lessonEntries("1-1", 5)
	qs, err := testGenerator().Generate(lesson, lesson, ChineseToMeaning)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := NewScorer(len(qs))
	for i, q := range qs {
		choice := q.Answer
		if i >= 3 {
			for _, c := range q.Choices {
				if c.Key() != q.Answer.Key() {
					choice = c
					break
				}
			}
		}
		s.Answer(q, choice)
	}
	if s.Correct != 3 {
		t.Fatalf("expected 3 correct, got %d", s.Correct)
	}
	if math.Abs(s.Score()-0.6) > 1e-9 {
		t.Fatalf("expected score 0.6, got %v", s.Score())
	}
	if NewScorer(0).Score() != 0 {
		t.Fatalf("empty quiz should score 0")
	}
}
