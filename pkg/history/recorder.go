package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/shengci/pkg/db"
	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/vocab"
)

// Recorder logs the answers of one quiz run and its final result.
type Recorder struct {
	ID       string
	BookID   string
	Lesson   string
	QuizType quiz.Type

	conn     *sql.DB
	bw       *BatchWriter
	position int
	finished bool

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// NewRecorder starts recording a quiz run with a fresh ID.
func NewRecorder(conn *sql.DB, bookID, lesson string, t quiz.Type) *Recorder {
	return &Recorder{
		ID:       uuid.NewString(),
		BookID:   bookID,
		Lesson:   lesson,
		QuizType: t,
		conn:     conn,
		bw:       NewBatchWriter(conn, 10, 500*time.Millisecond),
		Now:      time.Now,
	}
}

// Record queues the learner's answer to q.
func (r *Recorder) Record(q quiz.Question, choice vocab.Entry, correct bool) error {
	a := db.Answer{
		QuizID:     r.ID,
		Position:   r.position,
		WordKey:    q.Answer.Key(),
		ChosenKey:  choice.Key(),
		Correct:    correct,
		AnsweredAt: r.Now(),
	}
	r.position++
	return r.bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		return db.InsertAnswer(tx, a)
	})
}

// Finish flushes the answer log and stores the quiz result.
func (r *Recorder) Finish(correct, total int) (db.QuizResult, error) {
	if r.finished {
		return db.QuizResult{}, fmt.Errorf("quiz %s already finished", r.ID)
	}
	r.finished = true
	if err := r.bw.Close(); err != nil {
		return db.QuizResult{}, fmt.Errorf("flush answers: %w", err)
	}
	res := db.QuizResult{
		ID:       r.ID,
		BookID:   r.BookID,
		Lesson:   r.Lesson,
		QuizType: string(r.QuizType),
		Correct:  correct,
		Total:    total,
		TakenAt:  r.Now(),
	}
	if err := db.SaveQuizResult(r.conn, res); err != nil {
		return db.QuizResult{}, err
	}
	return res, nil
}

// Abandon flushes answers recorded so far without storing a result.
func (r *Recorder) Abandon() error {
	if r.finished {
		return nil
	}
	r.finished = true
	return r.bw.Close()
}
