package formula

import (
	"strings"
	"unicode"

	"didp/core/utils"
)

// Left returns the first n runes of text.
func Left(text string, n int) string {
	r := []rune(text)
	if n <= 0 {
		return ""
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n])
}

// Right returns the last n runes of text.
func Right(text string, n int) string {
	r := []rune(text)
	if n <= 0 {
		return ""
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[len(r)-n:])
}

// Mid returns n runes starting at the 1-based position start.
func Mid(text string, start, n int) string {
	r := []rune(text)
	from := start - 1
	if from < 0 {
		from = 0
	}
	if from >= len(r) || n <= 0 {
		return ""
	}
	to := from + n
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}

// Trim strips the ends and collapses inner whitespace runs to one space.
func Trim(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Len counts runes.
func Len(text string) int {
	return len([]rune(text))
}

func Upper(text string) string { return strings.ToUpper(text) }

func Lower(text string) string { return strings.ToLower(text) }

// Proper capitalizes the first letter of every word and lowercases the rest.
func Proper(text string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}

// Concat joins the string form of values.
func Concat(values ...any) string {
	return TextJoin("", values...)
}

// TextJoin joins the string form of values with delimiter.
func TextJoin(delimiter string, values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = utils.ToString(v)
	}
	return strings.Join(parts, delimiter)
}

// Find returns the 1-based rune position of needle in text at or after
// start, or -1. Matching is case sensitive.
func Find(needle, text string, start int) int {
	r := []rune(text)
	if start < 1 {
		start = 1
	}
	if start > len(r)+1 {
		return -1
	}
	idx := strings.Index(string(r[start-1:]), needle)
	if idx < 0 {
		return -1
	}
	return start + len([]rune(string(r[start-1:])[:idx]))
}

// Search is Find ignoring case.
func Search(needle, text string, start int) int {
	return Find(strings.ToLower(needle), strings.ToLower(text), start)
}

// Substitute swaps old for with. A positive instance replaces only that
// occurrence; zero replaces all.
func Substitute(text, old, with string, instance int) string {
	if old == "" {
		return text
	}
	if instance <= 0 {
		return strings.ReplaceAll(text, old, with)
	}
	parts := strings.Split(text, old)
	if instance > len(parts)-1 {
		return text
	}
	return strings.Join(parts[:instance], old) + with + strings.Join(parts[instance:], old)
}

// Replace swaps n runes from the 1-based position start for replacement.
func Replace(text string, start, n int, replacement string) string {
	r := []rune(text)
	from := start - 1
	if from < 0 {
		from = 0
	}
	if from > len(r) {
		from = len(r)
	}
	to := from + n
	if n < 0 {
		to = from
	}
	if to > len(r) {
		to = len(r)
	}
	return string(r[:from]) + replacement + string(r[to:])
}

// Rept repeats text times times.
func Rept(text string, times int) string {
	if times <= 0 {
		return ""
	}
	return strings.Repeat(text, times)
}

// Split splits text by delimiter.
func Split(text, delimiter string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Split(text, delimiter)
}

// SplitPart returns the 1-based part of text split by delimiter, or "".
func SplitPart(text, delimiter string, part int) string {
	parts := Split(text, delimiter)
	if part < 1 || part > len(parts) {
		return ""
	}
	return parts[part-1]
}
