package expand

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fieldStrings(fields []*ExpandedWord) []string {
	out := []string{}
	for _, f := range fields {
		out = append(out, f.String())
	}
	return out
}

func TestSplitFields_whitespace(t *testing.T) {
	cases := []struct {
		text     string
		expected []string
	}{
		{"a b c", []string{"a", "b", "c"}},
		{"  a  b  ", []string{"a", "b"}},
		{"\ta\nb\t", []string{"a", "b"}},
		{"one", []string{"one"}},
		{"   ", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			fields := SplitFields(GeneratedLiteral(tc.text), "", false)
			assert.Equal(t, tc.expected, fieldStrings(fields))
		})
	}
}

func TestSplitFields_separators(t *testing.T) {
	cases := []struct {
		text     string
		ifs      string
		expected []string
	}{
		// A trailing separator terminates the last field without
		// creating an empty one.
		{"a:b:c:", ":", []string{"a", "b", "c"}},
		// Adjacent separators do create empty fields.
		{"a::b", ":", []string{"a", "", "b"}},
		{":a", ":", []string{"", "a"}},
		// Whitespace around a separator folds into it.
		{" a : : b", ": ", []string{"a", "", "b"}},
		{"a:b/c-d", ":/-", []string{"a", "b", "c", "d"}},
		{"x y", ":", []string{"x y"}},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			fields := SplitFields(GeneratedLiteral(tc.text), tc.ifs, true)
			assert.Equal(t, tc.expected, fieldStrings(fields))
		})
	}
}

func TestSplitFields_emptyIFS(t *testing.T) {
	fields := SplitFields(GeneratedLiteral("a b:c"), "", true)
	assert.Equal(t, []string{"a b:c"}, fieldStrings(fields))
}

func TestSplitFields_literalTextIsNotSplit(t *testing.T) {
	// Only generated text is subject to splitting; characters the user
	// typed pass through even when they appear in IFS.
	w := UnquotedLiteral("a:b")
	fields := SplitFields(w, ":", true)
	assert.Equal(t, []string{"a:b"}, fieldStrings(fields))
}

func TestSplitFields_quotedTextIsNotSplit(t *testing.T) {
	w := QuotedLiteral("a b")
	w.Append(" c d", false, true)
	fields := SplitFields(w, "", false)
	assert.Equal(t, []string{"a b", "c", "d"}, fieldStrings(fields))
}

func TestSplitFields_generatedJoinsNeighbors(t *testing.T) {
	// x$y with y="mid end": the generated prefix glues onto "x".
	w := UnquotedLiteral("x")
	w.Append("mid end", false, true)
	fields := SplitFields(w, "", false)
	assert.Equal(t, []string{"xmid", "end"}, fieldStrings(fields))
}

func TestSplitFields_fieldEnd(t *testing.T) {
	// "$@" boundaries survive regardless of IFS, including empty
	// parameters.
	w := &ExpandedWord{}
	w.Append("a", true, false)
	w.AppendFieldEnd()
	w.Append("", true, false)
	w.AppendFieldEnd()
	w.Append("c", true, false)
	fields := SplitFields(w, "", true)
	assert.Equal(t, []string{"a", "", "c"}, fieldStrings(fields))
}

func TestSplitFields_emptyUnquotedWordVanishes(t *testing.T) {
	w := &ExpandedWord{}
	w.Append("", false, true)
	assert.Empty(t, SplitFields(w, "", false))

	// A quoted empty word survives as one empty field.
	assert.Equal(t, []string{""}, fieldStrings(SplitFields(QuotedLiteral(""), "", false)))
}

func ExampleSplitFields() {
	word := GeneratedLiteral("/usr/local/bin:/usr/bin:/bin")
	for _, field := range SplitFields(word, ":", true) {
		fmt.Println(field.String())
	}
	// Output: /usr/local/bin
	// /usr/bin
	// /bin
}
