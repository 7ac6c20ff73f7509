package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the layout role of one line of resume text.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeader
	KindBullet
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindBullet:
		return "bullet"
	default:
		return "paragraph"
	}
}

// shortLineRunes is the length under which a plain line is treated as a section header.
const shortLineRunes = 50

// Line is a classified, cleaned line of resume text.
type Line struct {
	Kind Kind
	Text string
}

// Classify splits text into lines and assigns each a Kind. Blank lines are dropped.
// Lines starting with "-", "*" or "•" are bullets; other lines that are all caps or
// shorter than 50 runes are headers; everything else is a paragraph.
func Classify(text string) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		s := strings.TrimSpace(strings.ReplaceAll(raw, "**", ""))
		s = strings.TrimSpace(strings.TrimLeft(s, "#"))
		if s == "" {
			continue
		}

		if body, ok := cutBullet(s); ok {
			if body != "" {
				lines = append(lines, Line{Kind: KindBullet, Text: body})
			}
			continue
		}

		if isAllCaps(s) || utf8.RuneCountInString(s) < shortLineRunes {
			lines = append(lines, Line{Kind: KindHeader, Text: s})
			continue
		}
		lines = append(lines, Line{Kind: KindParagraph, Text: s})
	}
	return lines
}

func cutBullet(s string) (string, bool) {
	for _, marker := range []string{"-", "*", "•"} {
		if rest, ok := strings.CutPrefix(s, marker); ok {
			// Rules such as "---" carry no text.
			return strings.TrimSpace(strings.TrimLeft(rest, marker)), true
		}
	}
	return "", false
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters > 0
}
