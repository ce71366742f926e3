package history

import (
	"testing"
	"time"

	"github.com/japaniel/shengci/pkg/db"
	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/vocab"
)

func TestRecorderStoresAnswersAndResult(t *testing.T) {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	good := vocab.Entry{LessonCode: "1-1", Chinese: "好", Pinyin: "hǎo", English: "good"}
	bad := vocab.Entry{LessonCode: "1-1", Chinese: "壞", Pinyin: "huài", English: "bad"}
	q1 := quiz.Question{Prompt: "好", Answer: good, Choices: []vocab.Entry{good, bad}}
	q2 := quiz.Question{Prompt: "壞", Answer: bad, Choices: []vocab.Entry{good, bad}}

	rec := NewRecorder(conn, "book1", "1-1", quiz.ChineseToMeaning)
	fixed := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	rec.Now = func() time.Time { return fixed }

	if err := rec.Record(q1, good, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.Record(q2, good, false); err != nil {
		t.Fatalf("record: %v", err)
	}
	res, err := rec.Finish(1, 2)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if res.ID == "" || res.Correct != 1 || res.Total != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	var answers int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM quiz_answers WHERE quiz_id = ?`, rec.ID).Scan(&answers); err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answers != 2 {
		t.Fatalf("expected 2 answers, got %d", answers)
	}

	missed, err := db.MostMissed(conn, 5)
	if err != nil {
		t.Fatalf("most missed: %v", err)
	}
	if len(missed) != 1 || missed[0].WordKey != bad.Key() {
		t.Fatalf("unexpected misses %+v", missed)
	}

	results, err := db.RecentResults(conn, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(results) != 1 || results[0].ID != rec.ID {
		t.Fatalf("unexpected results %+v", results)
	}

	if _, err := rec.Finish(1, 2); err == nil {
		t.Fatalf("expected second Finish to fail")
	}
}

func TestRecorderAbandon(t *testing.T) {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	e := vocab.Entry{LessonCode: "1-1", Chinese: "山", Pinyin: "shān"}
	rec := NewRecorder(conn, "book1", "1-1", quiz.ChineseToPinyin)
	_ = rec.Record(quiz.Question{Answer: e, Choices: []vocab.Entry{e}}, e, true)
	if err := rec.Abandon(); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	results, err := db.RecentResults(conn, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("abandoned quiz should not store a result")
	}
}
