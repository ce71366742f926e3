package vocab

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// Lessons returns the distinct lesson codes of entries in lesson order.
func Lessons(entries []Entry) []string {
	set := treeset.NewWith(func(a, b interface{}) int {
		return CompareLessonCodes(a.(string), b.(string))
	})
	for _, e := range entries {
		set.Add(e.LessonCode)
	}
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out
}

// CompareLessonCodes orders "<unit>-<index>" codes numerically, unit first.
// Codes that are not two dash-separated integers sort after every
// well-formed code and lexicographically among themselves.
func CompareLessonCodes(a, b string) int {
	amaj, amin, aok := splitLessonCode(a)
	bmaj, bmin, bok := splitLessonCode(b)
	switch {
	case aok && bok:
		if amaj != bmaj {
			return cmpInt(amaj, bmaj)
		}
		if amin != bmin {
			return cmpInt(amin, bmin)
		}
		// "01-1" and "1-1" are distinct codes with equal numbers.
		return strings.Compare(a, b)
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

func splitLessonCode(code string) (major, minor int, ok bool) {
	left, right, found := strings.Cut(code, "-")
	if !found {
		return 0, 0, false
	}
	major, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(right)
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
