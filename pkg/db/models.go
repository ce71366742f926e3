package db

import "time"

// QuizResult is the outcome of one finished quiz.
type QuizResult struct {
	ID       string
	BookID   string
	Lesson   string
	QuizType string
	Correct  int
	Total    int
	TakenAt  time.Time
}

// Answer is a single recorded quiz answer.
type Answer struct {
	QuizID     string
	Position   int
	WordKey    string
	ChosenKey  string
	Correct    bool
	AnsweredAt time.Time
}

// MissCount is how often a word was answered wrongly.
type MissCount struct {
	WordKey string
	Misses  int
}
