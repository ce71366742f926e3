// Package session holds the study state as a plain value: every transition
// returns a new State instead of mutating shared globals.
package session

import (
	"errors"
	"fmt"

	"github.com/japaniel/shengci/pkg/review"
	"github.com/japaniel/shengci/pkg/vocab"
)

// Mode is a study modality.
type Mode string

const (
	ModeList      Mode = "list"
	ModeFlashcard Mode = "flashcard"
	ModeQuiz      Mode = "quiz"
	ModeReview    Mode = "review"
)

// Modes lists the supported study modes.
var Modes = []Mode{ModeList, ModeFlashcard, ModeQuiz, ModeReview}

var (
	ErrUnknownLesson = errors.New("unknown lesson")
	ErrUnknownMode   = errors.New("unknown mode")
	ErrNoBook        = errors.New("no book loaded")
)

// State is the current book, lesson, mode and vocabulary.
type State struct {
	BookID     string
	Lesson     string
	Mode       Mode
	Vocabulary []vocab.Entry
	Lessons    []string
}

// New returns an empty state in list mode.
func New() State {
	return State{Mode: ModeList}
}

// WithBook replaces the vocabulary wholesale and selects the first lesson.
func (s State) WithBook(bookID string, entries []vocab.Entry) State {
	s.BookID = bookID
	s.Vocabulary = entries
	s.Lessons = vocab.Lessons(entries)
	s.Lesson = ""
	if len(s.Lessons) > 0 {
		s.Lesson = s.Lessons[0]
	}
	return s
}

// WithLesson selects a lesson of the loaded book.
func (s State) WithLesson(lesson string) (State, error) {
	if s.BookID == "" {
		return s, ErrNoBook
	}
	for _, l := range s.Lessons {
		if l == lesson {
			s.Lesson = lesson
			return s, nil
		}
	}
	return s, fmt.Errorf("%w: %q in book %s", ErrUnknownLesson, lesson, s.BookID)
}

// WithMode switches the study mode.
func (s State) WithMode(m Mode) (State, error) {
	mode, err := ParseMode(string(m))
	if err != nil {
		return s, err
	}
	s.Mode = mode
	return s, nil
}

// ParseMode validates a mode name.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes {
		if Mode(name) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Entries returns what the current mode studies: the difficult words in
// review mode, the selected lesson otherwise.
func (s State) Entries(difficult *review.Store) []vocab.Entry {
	if s.Mode == ModeReview {
		if difficult == nil {
			return nil
		}
		return review.Resolve(difficult.Keys(), s.Vocabulary)
	}
	return vocab.FilterByLesson(s.Vocabulary, s.Lesson)
}
