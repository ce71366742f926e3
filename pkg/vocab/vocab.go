package vocab

import (
	"strings"
)

// KeySeparator joins the parts of an entry's composite key.
const KeySeparator = "|"

// MissingTranslation fills the translation fields of placeholder entries built
// for keys that are not part of the loaded vocabulary.
const MissingTranslation = "(not in the loaded book)"

// Entry is one word occurrence in a lesson word list.
type Entry struct {
	LessonCode string // e.g. "1-1"
	Chinese    string // headword
	Pinyin     string
	English    string
	Vietnamese string
	Thai       string
	Burmese    string
	Japanese   string
	Korean     string
}

// Key returns the composite identity used for study tracking.
func (e Entry) Key() string {
	return MakeKey(e.Chinese, e.Pinyin, e.LessonCode)
}

// MakeKey builds a composite key from its parts.
func MakeKey(chinese, pinyin, lessonCode string) string {
	return chinese + KeySeparator + pinyin + KeySeparator + lessonCode
}

// ParseKey splits a composite key into chinese, pinyin and lesson code.
// ok is false when the key does not have exactly three parts.
func ParseKey(key string) (chinese, pinyin, lessonCode string, ok bool) {
	parts := strings.Split(key, KeySeparator)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Placeholder synthesizes an entry for a key whose source row is not loaded.
func Placeholder(key string) Entry {
	chinese, pinyin, lesson, ok := ParseKey(key)
	if !ok {
		chinese = key
	}
	return Entry{
		LessonCode: lesson,
		Chinese:    chinese,
		Pinyin:     pinyin,
		English:    MissingTranslation,
		Vietnamese: MissingTranslation,
		Thai:       MissingTranslation,
		Burmese:    MissingTranslation,
		Japanese:   MissingTranslation,
		Korean:     MissingTranslation,
	}
}

// Language names a translation column.
type Language string

const (
	English    Language = "english"
	Vietnamese Language = "vietnamese"
	Thai       Language = "thai"
	Burmese    Language = "burmese"
	Japanese   Language = "japanese"
	Korean     Language = "korean"
)

// Languages lists the supported translation columns in display order.
var Languages = []Language{English, Vietnamese, Thai, Burmese, Japanese, Korean}

// ParseLanguage maps a (case-insensitive) name to a Language.
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Languages {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// Translation returns the entry's translation for lang, or "" if unknown.
func (e Entry) Translation(lang Language) string {
	switch lang {
	case English:
		return e.English
	case Vietnamese:
		return e.Vietnamese
	case Thai:
		return e.Thai
	case Burmese:
		return e.Burmese
	case Japanese:
		return e.Japanese
	case Korean:
		return e.Korean
	}
	return ""
}

// FilterByLesson returns the entries of one lesson in file order.
func FilterByLesson(entries []Entry, lessonCode string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.LessonCode == lessonCode {
			out = append(out, e)
		}
	}
	return out
}

// Index maps composite keys to entries. Later duplicates win.
func Index(entries []Entry) map[string]Entry {
	idx := make(map[string]Entry, len(entries))
	for _, e := range entries {
		idx[e.Key()] = e
	}
	return idx
}
