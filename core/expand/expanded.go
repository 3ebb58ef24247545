// Package expand implements POSIX word expansion: tilde, parameter, command
// substitution and arithmetic expansion, followed by field splitting and
// pathname expansion.
//
// Intermediate results are held in an ExpandedWord, an ordered sequence of
// tagged parts. The tags record where each piece of text came from: only
// text generated by an expansion may later be field split or matched against
// the filesystem, while literal text moves through untouched.
package expand

import "strings"

type partKind int

const (
	unquotedPart partKind = iota
	quotedPart
	generatedPart
	fieldEnd
)

type wordPart struct {
	kind partKind
	text string
}

// ExpandedWord is the intermediate result of expanding a single word.
// Adjacent parts with the same tag are merged on append so field splitting
// can treat each part as a maximal run.
type ExpandedWord struct {
	parts []wordPart
}

// Append adds text to the word. quoted text is exempt from field splitting
// and pathname expansion; generated marks text produced by an expansion.
func (w *ExpandedWord) Append(text string, quoted, generated bool) {
	if text == "" && !quoted {
		// Unquoted nothing expands to nothing; only quoted empty text
		// survives to produce an empty field.
		return
	}
	kind := unquotedPart
	switch {
	case quoted:
		kind = quotedPart
	case generated:
		kind = generatedPart
	}
	if n := len(w.parts); n > 0 && w.parts[n-1].kind == kind {
		w.parts[n-1].text += text
		return
	}
	w.parts = append(w.parts, wordPart{kind: kind, text: text})
}

// Concat appends all parts of other, keeping their tags.
func (w *ExpandedWord) Concat(other *ExpandedWord) {
	for _, p := range other.parts {
		switch p.kind {
		case fieldEnd:
			w.AppendFieldEnd()
		default:
			w.Append(p.text, p.kind == quotedPart, p.kind == generatedPart)
		}
	}
}

// AppendFieldEnd records a field boundary established by the expansion
// itself (e.g. between positional parameters of "$@"). The boundary
// survives regardless of IFS.
func (w *ExpandedWord) AppendFieldEnd() {
	w.parts = append(w.parts, wordPart{kind: fieldEnd})
}

// IsEmpty reports whether no parts have been appended. A word holding only
// empty quoted text is not empty: it still produces a field.
func (w *ExpandedWord) IsEmpty() bool {
	return len(w.parts) == 0
}

// String joins all parts into the final text, dropping tags.
func (w *ExpandedWord) String() string {
	var sb strings.Builder
	for _, p := range w.parts {
		sb.WriteString(p.text)
	}
	return sb.String()
}

// Equal reports part-wise equality. Used by tests.
func (w *ExpandedWord) Equal(other *ExpandedWord) bool {
	if len(w.parts) != len(other.parts) {
		return false
	}
	for i, p := range w.parts {
		if other.parts[i] != p {
			return false
		}
	}
	return true
}

// UnquotedLiteral builds a word holding a single unquoted literal.
func UnquotedLiteral(s string) *ExpandedWord {
	w := &ExpandedWord{}
	w.Append(s, false, false)
	return w
}

// QuotedLiteral builds a word holding a single quoted literal.
func QuotedLiteral(s string) *ExpandedWord {
	w := &ExpandedWord{}
	w.Append(s, true, false)
	return w
}

// GeneratedLiteral builds a word holding a single generated unquoted
// literal, the only kind subject to field splitting.
func GeneratedLiteral(s string) *ExpandedWord {
	w := &ExpandedWord{}
	w.Append(s, false, true)
	return w
}
