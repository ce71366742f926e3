package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/japaniel/shengci/pkg/books"
	"github.com/japaniel/shengci/pkg/db"
	"github.com/japaniel/shengci/pkg/flashcard"
	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/review"
	"github.com/japaniel/shengci/pkg/session"
	"github.com/japaniel/shengci/pkg/vocab"
)

// --- Collaborators ---

// BookLoader fetches a book's entries.
type BookLoader interface {
	Load(ctx context.Context, bookID string) ([]vocab.Entry, error)
}

// QuizRecorder stores the answers and result of one quiz run.
type QuizRecorder interface {
	Record(q quiz.Question, choice vocab.Entry, correct bool) error
	Finish(correct, total int) (db.QuizResult, error)
	Abandon() error
}

// Annotator computes kana readings for Japanese translations.
type Annotator interface {
	AnnotateAll(ctx context.Context, entries []vocab.Entry, workers int) (map[string]string, error)
}

// Deps wires the UI to the rest of the application. Annotator and
// NewRecorder may be nil.
type Deps struct {
	Loader      BookLoader
	Store       *review.Store
	Generator   *quiz.Generator
	QuizType    quiz.Type
	Annotator   Annotator
	NewRecorder func(bookID, lesson string, t quiz.Type) QuizRecorder
}

// --- Enums & Types ---

type viewState int

const (
	stateLoading viewState = iota
	stateLessons
	stateBookInput
	stateList
	stateFlashcard
	stateQuiz
	stateQuizDone
)

type (
	bookLoadedMsg struct {
		bookID  string
		entries []vocab.Entry
		err     error
	}
	readingsMsg    struct{ readings map[string]string }
	resetStatusMsg struct{}
)

// --- Commands ---

func loadBookCmd(loader BookLoader, bookID string) tea.Cmd {
	return func() tea.Msg {
		entries, err := loader.Load(context.Background(), bookID)
		return bookLoadedMsg{bookID: bookID, entries: entries, err: err}
	}
}

func annotateCmd(a Annotator, entries []vocab.Entry) tea.Cmd {
	return func() tea.Msg {
		readings, err := a.AnnotateAll(context.Background(), entries, 4)
		if err != nil {
			log.Printf("annotate: %v", err)
			return nil
		}
		return readingsMsg{readings: readings}
	}
}

func resetStatusCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return resetStatusMsg{}
	})
}

// --- Styles ---
var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 4).Width(48).Align(lipgloss.Center)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	markStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	rightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	readingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// --- Model ---

// Model is the bubbletea model for a study session.
type Model struct {
	deps  Deps
	state viewState
	prev  viewState
	sess  session.State

	status        string
	defaultStatus string
	loadingBook   string

	lessons   list.Model
	bookInput textinput.Model

	readings map[string]string

	// list mode
	rows   []vocab.Entry
	cursor int

	// flashcard mode
	deck      *flashcard.Deck
	reviewing bool

	// quiz mode
	questions []quiz.Question
	qIndex    int
	scorer    *quiz.Scorer
	answered  bool
	lastRight bool
	lastPick  int
	recorder  QuizRecorder
	result    db.QuizResult

	rnd *rand.Rand
}

// New returns a model that starts by loading bookID in the given mode.
func New(deps Deps, bookID string, mode session.Mode) Model {
	defaultStatus := "Enter: study | Tab: switch mode | b: change book | q: quit"
	sess, err := session.New().WithMode(mode)
	if err != nil {
		sess = session.New()
	}
	if deps.QuizType == "" {
		deps.QuizType = quiz.ChineseToMeaning
	}
	if deps.Generator == nil {
		deps.Generator = quiz.NewGenerator()
	}

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Lessons"
	l.SetShowHelp(false)

	ti := textinput.New()
	ti.Placeholder = "book id"
	ti.CharLimit = 64
	ti.Width = 40

	return Model{
		deps:          deps,
		state:         stateLoading,
		sess:          sess,
		status:        defaultStatus,
		defaultStatus: defaultStatus,
		loadingBook:   bookID,
		lessons:       l,
		bookInput:     ti,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Session returns the current study state.
func (m Model) Session() session.State { return m.sess }

func (m Model) Init() tea.Cmd {
	if m.loadingBook == "" {
		return nil
	}
	return loadBookCmd(m.deps.Loader, m.loadingBook)
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.lessons.SetSize(msg.Width-h, msg.Height-v-3)
		return m, nil

	case bookLoadedMsg:
		return m.onBookLoaded(msg)

	case readingsMsg:
		m.readings = msg.readings
		return m, nil

	case resetStatusMsg:
		m.status = m.defaultStatus
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.abandonQuiz()
			return m, tea.Quit
		}
		switch m.state {
		case stateLoading:
			return m, nil
		case stateBookInput:
			return updateBookInput(msg, m)
		case stateLessons:
			return updateLessons(msg, m)
		case stateList:
			return updateList(msg, m)
		case stateFlashcard:
			return updateFlashcard(msg, m)
		case stateQuiz:
			return updateQuiz(msg, m)
		case stateQuizDone:
			return updateQuizDone(msg, m)
		}
	}

	if m.state == stateLessons {
		var cmd tea.Cmd
		m.lessons, cmd = m.lessons.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) onBookLoaded(msg bookLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, books.ErrSuperseded) {
		return m, nil
	}
	if msg.bookID != m.loadingBook {
		// A response for a book the learner has since moved away from.
		return m, nil
	}
	m.loadingBook = ""
	if msg.err != nil {
		log.Printf("load book %s: %v", msg.bookID, msg.err)
		m.status = fmt.Sprintf("Could not load book %q: %v", msg.bookID, msg.err)
		if m.state == stateLoading {
			m.state = stateLessons
		}
		return m, nil
	}

	m.sess = m.sess.WithBook(msg.bookID, msg.entries)
	m.readings = nil
	m.state = stateLessons
	cmd := m.refreshLessons()
	m.status = fmt.Sprintf("Loaded %s: %d words in %d lessons", msg.bookID, len(msg.entries), len(m.sess.Lessons))
	cmds := []tea.Cmd{cmd, resetStatusCmd()}
	if m.deps.Annotator != nil {
		cmds = append(cmds, annotateCmd(m.deps.Annotator, msg.entries))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshLessons() tea.Cmd {
	items := make([]list.Item, 0, len(m.sess.Lessons)+1)
	counts := map[string]int{}
	for _, e := range m.sess.Vocabulary {
		counts[e.LessonCode]++
	}
	for _, l := range m.sess.Lessons {
		items = append(items, lessonItem{code: l, count: counts[l]})
	}
	if m.deps.Store != nil {
		items = append(items, lessonItem{difficult: true, count: m.deps.Store.Len()})
	}
	m.lessons.Title = fmt.Sprintf("%s · mode: %s", m.sess.BookID, m.sess.Mode)
	return m.lessons.SetItems(items)
}

func (m *Model) abandonQuiz() {
	if m.recorder != nil {
		if err := m.recorder.Abandon(); err != nil {
			log.Printf("abandon quiz: %v", err)
		}
		m.recorder = nil
	}
}

func updateBookInput(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "enter":
		bookID := m.bookInput.Value()
		if bookID == "" {
			return m, nil
		}
		m.bookInput.Blur()
		m.loadingBook = bookID
		m.state = m.prev
		m.status = fmt.Sprintf("Loading %s...", bookID)
		return m, loadBookCmd(m.deps.Loader, bookID)
	case "esc":
		m.bookInput.Blur()
		m.state = m.prev
		m.status = "Cancelled."
		return m, resetStatusCmd()
	}
	m.bookInput, cmd = m.bookInput.Update(msg)
	return m, cmd
}

func updateLessons(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	if m.lessons.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.lessons, cmd = m.lessons.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "b":
		m.prev = m.state
		m.state = stateBookInput
		m.bookInput.SetValue("")
		return m, m.bookInput.Focus()
	case "tab":
		next := nextMode(m.sess.Mode)
		m.sess, _ = m.sess.WithMode(next)
		return m, m.refreshLessons()
	case "x":
		if m.deps.Store == nil {
			return m, nil
		}
		if err := m.deps.Store.Clear(); err != nil {
			m.status = fmt.Sprintf("Clear failed: %v", err)
			return m, resetStatusCmd()
		}
		m.status = "Difficult words cleared."
		return m, tea.Batch(m.refreshLessons(), resetStatusCmd())
	case "enter":
		it, ok := m.lessons.SelectedItem().(lessonItem)
		if !ok {
			return m, nil
		}
		return m.start(it)
	}
	var cmd tea.Cmd
	m.lessons, cmd = m.lessons.Update(msg)
	return m, cmd
}

// start opens the current mode on the chosen lesson. The difficult-words item
// always studies the review set as flashcards.
func (m Model) start(it lessonItem) (tea.Model, tea.Cmd) {
	mode := m.sess.Mode
	study := m.sess
	if it.difficult {
		mode = session.ModeFlashcard
		study, _ = study.WithMode(session.ModeReview)
	} else {
		var err error
		if m.sess, err = m.sess.WithLesson(it.code); err != nil {
			m.status = err.Error()
			return m, resetStatusCmd()
		}
		if mode == session.ModeReview {
			mode = session.ModeFlashcard
		}
		study, _ = m.sess.WithMode(mode)
	}
	entries := study.Entries(m.deps.Store)
	if len(entries) == 0 {
		m.status = "Nothing to study here."
		return m, resetStatusCmd()
	}

	m.reviewing = it.difficult
	switch mode {
	case session.ModeList:
		m.rows = entries
		m.cursor = 0
		m.state = stateList
	case session.ModeQuiz:
		return m.startQuiz(entries)
	default:
		m.deck = flashcard.NewDeck(entries)
		m.state = stateFlashcard
	}
	return m, nil
}

func (m Model) startQuiz(entries []vocab.Entry) (tea.Model, tea.Cmd) {
	qs, err := m.deps.Generator.Generate(entries, m.sess.Vocabulary, m.deps.QuizType)
	if err != nil {
		m.status = fmt.Sprintf("Cannot build quiz: %v", err)
		return m, resetStatusCmd()
	}
	if len(qs) == 0 {
		m.status = "No words in this lesson have the fields this quiz needs."
		return m, resetStatusCmd()
	}
	m.questions = qs
	m.qIndex = 0
	m.answered = false
	m.scorer = quiz.NewScorer(len(qs))
	m.recorder = nil
	if m.deps.NewRecorder != nil {
		m.recorder = m.deps.NewRecorder(m.sess.BookID, m.sess.Lesson, m.deps.QuizType)
	}
	m.state = stateQuiz
	return m, nil
}

func updateList(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateLessons
		return m, m.refreshLessons()
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "d":
		return m.toggleDifficult(m.rows[m.cursor])
	}
	return m, nil
}

func (m Model) toggleDifficult(e vocab.Entry) (tea.Model, tea.Cmd) {
	if m.deps.Store == nil {
		return m, nil
	}
	var err error
	if m.deps.Store.Contains(e.Key()) {
		err = m.deps.Store.Remove(e.Key())
		m.status = fmt.Sprintf("Removed %s from difficult words.", e.Chinese)
	} else {
		err = m.deps.Store.Add(e.Key())
		m.status = fmt.Sprintf("Marked %s as difficult.", e.Chinese)
	}
	if err != nil {
		m.status = fmt.Sprintf("Saving failed: %v", err)
	}
	return m, resetStatusCmd()
}

func updateFlashcard(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateLessons
		return m, m.refreshLessons()
	case "q":
		return m, tea.Quit
	case "enter", " ":
		m.deck.Flip()
	case "right", "l", "n":
		m.deck.Next()
	case "left", "h", "p":
		m.deck.Previous()
	case "s":
		m.deck.Shuffle(m.rnd)
	case "d":
		if m.deps.Store == nil {
			return m, nil
		}
		if err := m.deck.MarkDifficult(m.deps.Store); err != nil {
			m.status = fmt.Sprintf("Saving failed: %v", err)
		} else {
			m.status = "Marked as difficult."
		}
		return m, resetStatusCmd()
	case "m":
		e, ok := m.deck.Current()
		if !ok || m.deps.Store == nil {
			return m, nil
		}
		if err := m.deps.Store.MarkMastered(e.Key()); err != nil {
			m.status = fmt.Sprintf("Saving failed: %v", err)
			return m, resetStatusCmd()
		}
		m.status = fmt.Sprintf("%s mastered.", e.Chinese)
		if m.reviewing {
			m.deck.RemoveCurrent()
			if m.deck.Len() == 0 {
				m.state = stateLessons
				m.status = "All difficult words mastered."
				return m, tea.Batch(m.refreshLessons(), resetStatusCmd())
			}
		}
		return m, resetStatusCmd()
	}
	return m, nil
}

func updateQuiz(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		m.abandonQuiz()
		m.state = stateLessons
		return m, m.refreshLessons()
	}
	q := m.questions[m.qIndex]

	if m.answered {
		if key != "enter" && key != " " {
			return m, nil
		}
		m.answered = false
		m.qIndex++
		if m.qIndex >= len(m.questions) {
			return m.finishQuiz()
		}
		return m, nil
	}

	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return m, nil
	}
	pick := int(key[0] - '1')
	if pick >= len(q.Choices) {
		return m, nil
	}
	choice := q.Choices[pick]
	m.lastRight = m.scorer.Answer(q, choice)
	m.lastPick = pick
	m.answered = true
	if m.recorder != nil {
		if err := m.recorder.Record(q, choice, m.lastRight); err != nil {
			log.Printf("record answer: %v", err)
		}
	}
	return m, nil
}

func (m Model) finishQuiz() (tea.Model, tea.Cmd) {
	m.state = stateQuizDone
	m.result = db.QuizResult{Correct: m.scorer.Correct, Total: m.scorer.Total}
	if m.recorder != nil {
		res, err := m.recorder.Finish(m.scorer.Correct, m.scorer.Total)
		if err != nil {
			log.Printf("save quiz result: %v", err)
			m.status = fmt.Sprintf("Could not save result: %v", err)
		} else {
			m.result = res
		}
		m.recorder = nil
	}
	return m, nil
}

func updateQuizDone(msg tea.KeyMsg, m Model) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		entries := vocab.FilterByLesson(m.sess.Vocabulary, m.sess.Lesson)
		return m.startQuiz(entries)
	case "enter", "esc":
		m.state = stateLessons
		return m, m.refreshLessons()
	}
	return m, nil
}

func nextMode(cur session.Mode) session.Mode {
	for i, mode := range session.Modes {
		if mode == cur {
			return session.Modes[(i+1)%len(session.Modes)]
		}
	}
	return session.ModeList
}

// --- List Items ---

type lessonItem struct {
	code      string
	count     int
	difficult bool
}

func (i lessonItem) Title() string {
	if i.difficult {
		return "Difficult words"
	}
	return "Lesson " + i.code
}

func (i lessonItem) Description() string { return fmt.Sprintf("%d words", i.count) }

func (i lessonItem) FilterValue() string {
	if i.difficult {
		return "difficult"
	}
	return i.code
}
