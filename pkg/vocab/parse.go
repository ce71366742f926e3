package vocab

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

type field int

const (
	fieldLesson field = iota
	fieldChinese
	fieldPinyin
	fieldEnglish
	fieldVietnamese
	fieldThai
	fieldBurmese
	fieldJapanese
	fieldKorean
)

// headerLabels maps the column labels used by the course word lists
// (traditional and simplified) plus plain English names to fields.
var headerLabels = map[string]field{
	"課-序號": fieldLesson,
	"课-序号": fieldLesson,
	"lesson": fieldLesson,

	"生詞":      fieldChinese,
	"生词":      fieldChinese,
	"chinese": fieldChinese,

	"漢拼":     fieldPinyin,
	"汉拼":     fieldPinyin,
	"拼音":     fieldPinyin,
	"pinyin": fieldPinyin,

	"英譯":      fieldEnglish,
	"英译":      fieldEnglish,
	"english": fieldEnglish,

	"越譯":         fieldVietnamese,
	"越译":         fieldVietnamese,
	"vietnamese": fieldVietnamese,

	"泰譯":   fieldThai,
	"泰译":   fieldThai,
	"thai": fieldThai,

	"緬譯":      fieldBurmese,
	"缅译":      fieldBurmese,
	"burmese": fieldBurmese,

	"日譯":       fieldJapanese,
	"日译":       fieldJapanese,
	"japanese": fieldJapanese,

	"韓譯":     fieldKorean,
	"韩译":     fieldKorean,
	"korean": fieldKorean,
}

func (e *Entry) set(f field, v string) {
	switch f {
	case fieldLesson:
		e.LessonCode = v
	case fieldChinese:
		e.Chinese = v
	case fieldPinyin:
		e.Pinyin = v
	case fieldEnglish:
		e.English = v
	case fieldVietnamese:
		e.Vietnamese = v
	case fieldThai:
		e.Thai = v
	case fieldBurmese:
		e.Burmese = v
	case fieldJapanese:
		e.Japanese = v
	case fieldKorean:
		e.Korean = v
	}
}

// Delimiter returns the column separator for a file: tab when the header line
// contains one, comma otherwise.
func Delimiter(headerLine string) string {
	if strings.Contains(headerLine, "\t") {
		return "\t"
	}
	return ","
}

// Parse converts a delimited lesson word list into entries in file order.
// Rows shorter than the header and rows without a headword or lesson code are
// dropped without error. Quoted fields are not supported.
func Parse(text string) []Entry {
	lines := nonEmptyLines(text)
	if len(lines) < 2 {
		return nil
	}

	header := strings.TrimPrefix(lines[0], "\ufeff")
	delim := Delimiter(header)
	headerCols := strings.Split(header, delim)

	columns := headerColumns(headerCols)

	var entries []Entry
	for _, line := range lines[1:] {
		cols := strings.Split(line, delim)
		if len(cols) < len(headerCols) {
			continue
		}
		var e Entry
		// Later columns overwrite earlier ones mapped to the same field.
		for _, c := range columns {
			v := normalize(cols[c.index])
			if c.field == fieldLesson {
				v = NormalizeLessonCode(v)
			}
			e.set(c.field, v)
		}
		if e.Chinese == "" || e.LessonCode == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

type column struct {
	index int
	field field
}

// headerColumns returns the recognized header cells in header order.
func headerColumns(cells []string) []column {
	var columns []column
	for i, h := range cells {
		label := strings.ToLower(normalize(h))
		if f, ok := headerLabels[label]; ok {
			columns = append(columns, column{index: i, field: f})
		}
	}
	return columns
}

// TrimPreamble drops the lines before the first one that looks like a header
// row, i.e. names at least two known columns. It reports false and returns
// text unchanged when no such line exists.
func TrimPreamble(text string) (string, bool) {
	lines := nonEmptyLines(text)
	for i, line := range lines {
		line = strings.TrimPrefix(line, "\ufeff")
		if len(headerColumns(strings.Split(line, Delimiter(line)))) >= 2 {
			return strings.Join(lines[i:], "\n") + "\n", true
		}
	}
	return text, false
}

// ParseReader reads all of r and parses it with Parse.
func ParseReader(r io.Reader) ([]Entry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return Parse(string(b)), nil
}

// NormalizeLessonCode folds full-width digits and dashes so "１－１" reads as "1-1".
func NormalizeLessonCode(code string) string {
	return strings.TrimSpace(width.Fold.String(code))
}

func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
