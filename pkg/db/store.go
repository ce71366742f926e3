package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// KV is a string key-value store backed by the kv_store table.
type KV struct {
	conn *sql.DB
}

// NewKV wraps an initialized connection.
func NewKV(conn *sql.DB) *KV {
	return &KV{conn: conn}
}

// Get returns the value for key; ok is false when the key is absent.
func (kv *KV) Get(key string) (string, bool, error) {
	var value string
	err := kv.conn.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key inside its own transaction so a failed write
// leaves the previous value intact.
func (kv *KV) Set(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key must be non-empty")
	}
	tx, err := kv.conn.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin set %q: %w", key, err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	_, err = tx.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set %q: %w", key, err)
	}
	return nil
}

// SaveQuizResult inserts a finished quiz.
func SaveQuizResult(db DBExecutor, r QuizResult) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("quiz id must be non-empty")
	}
	if r.Total < 0 || r.Correct < 0 || r.Correct > r.Total {
		return fmt.Errorf("invalid quiz score %d/%d", r.Correct, r.Total)
	}
	_, err := db.Exec(`INSERT INTO quiz_results (id, book_id, lesson, quiz_type, correct, total, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BookID, r.Lesson, r.QuizType, r.Correct, r.Total, r.TakenAt)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// InsertAnswer records one answer. Re-recording the same position overwrites it.
func InsertAnswer(db DBExecutor, a Answer) error {
	if a.QuizID == "" {
		return fmt.Errorf("quiz id must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO quiz_answers (quiz_id, position, word_key, chosen_key, correct, answered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(quiz_id, position) DO UPDATE SET
		  chosen_key = excluded.chosen_key,
		  correct = excluded.correct,
		  answered_at = excluded.answered_at`,
		a.QuizID, a.Position, a.WordKey, a.ChosenKey, a.Correct, a.AnsweredAt)
	return err
}

// RecentResults returns up to limit quiz results, newest first.
func RecentResults(db DBExecutor, limit int) ([]QuizResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`SELECT id, book_id, lesson, quiz_type, correct, total, taken_at
		FROM quiz_results ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QuizResult
	for rows.Next() {
		var r QuizResult
		if err := rows.Scan(&r.ID, &r.BookID, &r.Lesson, &r.QuizType, &r.Correct, &r.Total, &r.TakenAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MostMissed returns words with at least one wrong answer, most misses first.
func MostMissed(db DBExecutor, limit int) ([]MissCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`SELECT word_key, COUNT(*) AS misses FROM quiz_answers
		WHERE correct = 0 GROUP BY word_key ORDER BY misses DESC, word_key ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MissCount
	for rows.Next() {
		var m MissCount
		if err := rows.Scan(&m.WordKey, &m.Misses); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
