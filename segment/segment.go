// Package segment implements the Segmentation Scanner (C8): a lightweight,
// non-AST scanner that splits a large package or type body into per-member
// source slices without full parsing (spec §4.8).
package segment

import (
	"strings"

	"github.com/orapgcore/oracore/diagnostics"
)

// Member is one {name, startOffset, endOffset, kind} record produced by Scan.
type Member struct {
	Name        string
	Kind        string // FUNCTION, PROCEDURE, MEMBER_FUNCTION, MEMBER_PROCEDURE, CONSTRUCTOR_FUNCTION
	StartOffset int
	EndOffset   int
}

var memberKeywords = []struct {
	text string
	kind string
}{
	{"constructor function", "CONSTRUCTOR_FUNCTION"},
	{"member function", "MEMBER_FUNCTION"},
	{"member procedure", "MEMBER_PROCEDURE"},
	{"function", "FUNCTION"},
	{"procedure", "PROCEDURE"},
}

// Scan splits src into member slices, tracking string literals, comments,
// and BEGIN...END nesting so interior keywords don't get mistaken for a new
// top-level member. It never fully parses the body.
func Scan(src string) ([]Member, *diagnostics.Diagnostics) {
	var members []Member
	var cur *Member
	depth := 0
	n := len(src)

	nameAfterKeyword := func(i int) string {
		j := i
		for j < n && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
			j++
		}
		start := j
		for j < n && isIdentRune(src[j]) {
			j++
		}
		return src[start:j]
	}

	for i := 0; i < n; {
		switch {
		case src[i] == '\'':
			i = skipStringLiteral(src, i)
			continue
		case i+1 < n && src[i] == '-' && src[i+1] == '-':
			i = skipLineComment(src, i)
			continue
		case i+1 < n && src[i] == '/' && src[i+1] == '*':
			j := skipBlockComment(src, i)
			if j < 0 {
				return nil, diagnostics.New(diagnostics.SegmentationFailed, 0, 0, "", "unterminated block comment")
			}
			i = j
			continue
		}

		if matchWordCI(src, i, "begin") || matchWordCI(src, i, "case") || matchWordCI(src, i, "if") || matchWordCI(src, i, "loop") {
			depth++
			i += wordLen(src, i)
			continue
		}
		if matchWordCI(src, i, "end") {
			endAt := i
			i += wordLen(src, i)
			// END IF / END LOOP / END CASE close the block their keyword
			// opened; skip that keyword so it is not counted as a new opener.
			j := i
			for j < n && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			if matchWordCI(src, j, "if") || matchWordCI(src, j, "loop") || matchWordCI(src, j, "case") {
				i = j + wordLen(src, j)
			}
			if depth > 0 {
				depth--
				continue
			}
			if cur != nil {
				cur.EndOffset = endAt
				members = append(members, *cur)
				cur = nil
			}
			continue
		}

		if depth == 0 {
			matched := false
			for _, mk := range memberKeywords {
				if matchPhraseCI(src, i, mk.text) {
					if cur != nil {
						cur.EndOffset = i
						members = append(members, *cur)
					}
					name := nameAfterKeyword(i + len(mk.text))
					cur = &Member{Name: name, Kind: mk.kind, StartOffset: i}
					i += len(mk.text)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		i++
	}

	if depth != 0 {
		return nil, diagnostics.New(diagnostics.SegmentationFailed, 0, 0, "",
			"unbalanced BEGIN/END nesting (depth %d at end of input)", depth)
	}
	if cur != nil {
		cur.EndOffset = n
		members = append(members, *cur)
	}
	return members, nil
}

func isIdentRune(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func wordLen(s string, i int) int {
	j := i
	for j < len(s) && isIdentRune(s[j]) {
		j++
	}
	if j == i {
		return 1
	}
	return j - i
}

func matchWordCI(s string, i int, word string) bool {
	if !matchPhraseCI(s, i, word) {
		return false
	}
	end := i + len(word)
	if end < len(s) && isIdentRune(s[end]) {
		return false
	}
	if i > 0 && isIdentRune(s[i-1]) {
		return false
	}
	return true
}

func matchPhraseCI(s string, i int, phrase string) bool {
	if i+len(phrase) > len(s) {
		return false
	}
	return strings.EqualFold(s[i:i+len(phrase)], phrase)
}

func skipStringLiteral(s string, i int) int {
	i++ // opening quote
	for i < len(s) {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func skipLineComment(s string, i int) int {
	for i < len(s) && s[i] != '\n' {
		i++
	}
	return i
}

func skipBlockComment(s string, i int) int {
	i += 2
	for i+1 < len(s) {
		if s[i] == '*' && s[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return -1
}
