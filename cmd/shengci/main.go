package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/japaniel/shengci/pkg/books"
	"github.com/japaniel/shengci/pkg/config"
	"github.com/japaniel/shengci/pkg/db"
	"github.com/japaniel/shengci/pkg/gloss"
	"github.com/japaniel/shengci/pkg/history"
	"github.com/japaniel/shengci/pkg/kvfile"
	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/review"
	"github.com/japaniel/shengci/pkg/session"
	"github.com/japaniel/shengci/pkg/tui"
	"github.com/japaniel/shengci/pkg/vocab"
)

func main() {
	configFlag := flag.String("config", "shengci.yaml", "Path to YAML configuration file")
	bookFlag := flag.String("book", "", "Book id to load (file <book>.<ext> under the base URL)")
	lessonFlag := flag.String("lesson", "", "Lesson code, e.g. 1-1 (defaults to the first lesson)")
	modeFlag := flag.String("mode", string(session.ModeList), "Study mode: list, flashcard, quiz or review")
	baseFlag := flag.String("base", "", "Base URL or directory holding the word lists")
	dbFlag := flag.String("db", "", "Path to SQLite database")
	quizTypeFlag := flag.String("quiz-type", "", "Quiz type: "+joinTypes())
	langFlag := flag.String("lang", "", "Translation language for quizzes and lists")
	furiganaFlag := flag.Bool("furigana", false, "Show kana readings for Japanese translations")
	plainFlag := flag.Bool("plain", false, "Print the lesson (or review set) and exit instead of starting the UI")
	historyFlag := flag.Bool("history", false, "Print recent quiz results and most missed words, then exit")
	clearFlag := flag.Bool("clear-difficult", false, "Clear the difficult word set and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *baseFlag != "" {
		cfg.BaseURL = *baseFlag
	}
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *quizTypeFlag != "" {
		cfg.Quiz.Type = *quizTypeFlag
	}
	if *langFlag != "" {
		cfg.Quiz.Language = *langFlag
	}
	if *furiganaFlag {
		cfg.Furigana = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	mode, err := session.ParseMode(*modeFlag)
	if err != nil {
		log.Fatalf("%v", err)
	}
	quizType, _ := quiz.ParseType(cfg.Quiz.Type)
	lang, _ := vocab.ParseLanguage(cfg.Quiz.Language)

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	store, err := openStore(cfg, conn)
	if err != nil {
		log.Fatalf("Failed to open word store: %v", err)
	}

	if *historyFlag {
		if err := printHistory(os.Stdout, conn); err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		return
	}
	if *clearFlag {
		if err := store.Clear(); err != nil {
			log.Fatalf("Failed to clear difficult words: %v", err)
		}
		fmt.Println("Difficult words cleared.")
		return
	}

	if *bookFlag == "" {
		log.Fatal("Please provide a -book, -history or -clear-difficult")
	}

	loader := books.NewLoader(cfg.BaseURL)
	loader.Extensions = cfg.Extensions

	gen := quiz.NewGenerator()
	gen.Options = cfg.Quiz.Options
	gen.Limit = cfg.Quiz.Limit
	gen.Language = lang

	var annotator *gloss.Annotator
	if cfg.Furigana {
		if annotator, err = gloss.NewAnnotator(); err != nil {
			log.Printf("Warning: Failed to create annotator: %v. Continuing without readings.", err)
			annotator = nil
		}
	}

	if *plainFlag {
		entries, err := loader.Load(ctx, *bookFlag)
		if err != nil {
			log.Fatalf("Failed to load book %s: %v", *bookFlag, err)
		}
		if err := printPlain(ctx, os.Stdout, *bookFlag, *lessonFlag, mode, entries, store, lang, annotator); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	deps := tui.Deps{
		Loader:    loader,
		Store:     store,
		Generator: gen,
		QuizType:  quizType,
		NewRecorder: func(bookID, lesson string, t quiz.Type) tui.QuizRecorder {
			return history.NewRecorder(conn, bookID, lesson, t)
		},
	}
	if annotator != nil {
		deps.Annotator = annotator
	}

	f, err := tea.LogToFile("shengci-debug.log", "shengci")
	if err != nil {
		log.Fatalf("could not create log file: %v", err)
	}
	defer f.Close()

	p := tea.NewProgram(tui.New(deps, *bookFlag, mode), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config, conn *sql.DB) (*review.Store, error) {
	logger := log.New(os.Stderr, "store: ", log.LstdFlags)
	if cfg.Store == config.StoreJSON {
		kv, err := kvfile.Open(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		return review.Open(kv, logger)
	}
	return review.Open(db.NewKV(conn), logger)
}

func printPlain(ctx context.Context, w io.Writer, bookID, lesson string, mode session.Mode, entries []vocab.Entry, store *review.Store, lang vocab.Language, annotator *gloss.Annotator) error {
	sess := session.New().WithBook(bookID, entries)
	if lesson != "" {
		var err error
		if sess, err = sess.WithLesson(lesson); err != nil {
			return err
		}
	}
	if mode == session.ModeReview {
		sess, _ = sess.WithMode(session.ModeReview)
	}
	rows := sess.Entries(store)

	var readings map[string]string
	if annotator != nil && lang == vocab.Japanese {
		var err error
		if readings, err = annotator.AnnotateAll(ctx, rows, 4); err != nil {
			log.Printf("Warning: readings unavailable: %v", err)
		}
	}

	if mode == session.ModeReview {
		fmt.Fprintf(w, "%s · difficult words (%d)\n", bookID, len(rows))
	} else {
		fmt.Fprintf(w, "%s · lesson %s (%d words; lessons: %s)\n", bookID, sess.Lesson, len(rows), strings.Join(sess.Lessons, ", "))
	}
	for _, e := range rows {
		mark := " "
		if store.Contains(e.Key()) {
			mark = "*"
		}
		t := e.Translation(lang)
		if r := readings[e.Key()]; r != "" {
			t += " (" + r + ")"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", mark, e.Chinese, e.Pinyin, t)
	}
	return nil
}

func printHistory(w io.Writer, conn *sql.DB) error {
	results, err := db.RecentResults(conn, 10)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Recent quizzes (%d):\n", len(results))
	for _, r := range results {
		fmt.Fprintf(w, "  %s  %s %s %-20s %d/%d\n", r.TakenAt.Format("2006-01-02 15:04"), r.BookID, r.Lesson, r.QuizType, r.Correct, r.Total)
	}
	missed, err := db.MostMissed(conn, 10)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Most missed words (%d):\n", len(missed))
	for _, m := range missed {
		fmt.Fprintf(w, "  %-30s %d\n", m.WordKey, m.Misses)
	}
	return nil
}

func joinTypes() string {
	names := make([]string, len(quiz.Types))
	for i, t := range quiz.Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
