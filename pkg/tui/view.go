package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/vocab"
)

const listPageSize = 15

func (m Model) View() string {
	var body string
	switch m.state {
	case stateLoading:
		body = fmt.Sprintf("Loading %s...", m.loadingBook)
	case stateBookInput:
		body = fmt.Sprintf("Load book:\n\n%s", m.bookInput.View()) + "\n\nEnter: confirm | Esc: cancel"
	case stateLessons:
		body = m.lessons.View()
	case stateList:
		body = m.listView()
	case stateFlashcard:
		body = m.flashcardView()
	case stateQuiz:
		body = m.quizView()
	case stateQuizDone:
		body = m.quizDoneView()
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body, "", helpStyle.Render(m.status)))
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s · lesson %s", m.sess.BookID, m.sess.Lesson)))
	b.WriteString("\n\n")

	lang := m.deps.Generator.Language
	if lang == "" {
		lang = vocab.English
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-10s %-16s %s", "漢字", "pinyin", lang)))
	b.WriteString("\n")

	start := 0
	if m.cursor >= listPageSize {
		start = m.cursor - listPageSize + 1
	}
	end := start + listPageSize
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := start; i < end; i++ {
		e := m.rows[i]
		line := fmt.Sprintf("%-10s %-16s %s", e.Chinese, e.Pinyin, e.Translation(lang))
		if r := m.readings[e.Key()]; r != "" && lang == vocab.Japanese {
			line += " " + readingStyle.Render("("+r+")")
		}
		mark := "  "
		if m.deps.Store != nil && m.deps.Store.Contains(e.Key()) {
			mark = markStyle.Render("★ ")
		}
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(mark + line + "\n")
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("\n%d/%d · ↑/↓: move | d: toggle difficult | Esc: back", m.cursor+1, len(m.rows))))
	return b.String()
}

func (m Model) flashcardView() string {
	e, ok := m.deck.Current()
	if !ok {
		return "No cards."
	}
	var face string
	if !m.deck.Flipped() {
		face = lipgloss.NewStyle().Bold(true).Render(e.Chinese)
	} else {
		lines := []string{e.Chinese, e.Pinyin, ""}
		for _, lang := range vocab.Languages {
			t := e.Translation(lang)
			if t == "" {
				continue
			}
			if lang == vocab.Japanese {
				if r := m.readings[e.Key()]; r != "" {
					t += " " + readingStyle.Render("("+r+")")
				}
			}
			lines = append(lines, fmt.Sprintf("%s: %s", lang, t))
		}
		face = strings.Join(lines, "\n")
	}

	mark := ""
	if m.deps.Store != nil && m.deps.Store.Contains(e.Key()) {
		mark = markStyle.Render(" ★ difficult")
	}
	header := titleStyle.Render(fmt.Sprintf("Card %d/%d · lesson %s", m.deck.Index()+1, m.deck.Len(), e.LessonCode)) + mark
	help := helpStyle.Render("Enter/Space: flip | ←/→: prev/next | d: difficult | m: mastered | s: shuffle | Esc: back")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", cardStyle.Render(face), "", help)
}

func (m Model) quizView() string {
	q := m.questions[m.qIndex]
	lang := m.deps.Generator.Language
	if lang == "" {
		lang = vocab.English
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Question %d/%d · score %d", m.qIndex+1, len(m.questions), m.scorer.Correct)))
	b.WriteString("\n\n")
	b.WriteString(cardStyle.Render(q.Prompt))
	b.WriteString("\n\n")
	for i, c := range q.Choices {
		line := fmt.Sprintf("%d. %s", i+1, quiz.ChoiceText(m.deps.QuizType, lang, c))
		if m.answered {
			switch {
			case c.Key() == q.Answer.Key():
				line = rightStyle.Render(line + " ✓")
			case i == m.lastPick:
				line = wrongStyle.Render(line + " ✗")
			}
		}
		b.WriteString(line + "\n")
	}
	if m.answered {
		if m.lastRight {
			b.WriteString(rightStyle.Render("\nCorrect!"))
		} else {
			b.WriteString(wrongStyle.Render(fmt.Sprintf("\nThe answer is %s (%s).", q.Answer.Chinese, q.Answer.Pinyin)))
		}
		b.WriteString(helpStyle.Render("\nEnter: next question"))
	} else {
		b.WriteString(helpStyle.Render("\n1-9: answer | Esc: abandon"))
	}
	return b.String()
}

func (m Model) quizDoneView() string {
	pct := 0.0
	if m.result.Total > 0 {
		pct = 100 * float64(m.result.Correct) / float64(m.result.Total)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Quiz finished"),
		"",
		fmt.Sprintf("Score: %d/%d (%.0f%%)", m.result.Correct, m.result.Total, pct),
		"",
		helpStyle.Render("r: retake | Enter: back to lessons | q: quit"),
	)
}
