package expand

import "strings"

const defaultIFS = " \t\n"

func isIFSWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// SplitFields breaks an expanded word into fields. haveIFS distinguishes an
// unset IFS (the default " \t\n" applies) from one set to a value; an empty
// value disables IFS-driven splitting, though boundaries already fixed by
// quoting still separate fields.
//
// Only generated unquoted text is examined. IFS whitespace collapses:
// a run of it is a single delimiter and leading or trailing runs produce no
// fields. A non-whitespace IFS character, together with any adjacent IFS
// whitespace, always terminates the current field, so adjacent separators
// produce empty fields ("a::b" with IFS=":" gives "a", "", "b") while a
// separator at the end of input terminates the last field without adding an
// empty one ("a:b:c:" gives "a", "b", "c"). Boundaries already fixed by
// quoting are preserved regardless of IFS.
func SplitFields(word *ExpandedWord, ifs string, haveIFS bool) []*ExpandedWord {
	if word.IsEmpty() {
		return nil
	}
	if !haveIFS {
		ifs = defaultIFS
	}

	var result []*ExpandedWord
	last := &ExpandedWord{}
	for _, part := range word.parts {
		switch part.kind {
		case unquotedPart:
			last.Append(part.text, false, false)
		case quotedPart:
			last.Append(part.text, true, false)
		case fieldEnd:
			result = append(result, last)
			last = &ExpandedWord{}
		case generatedPart:
			// An empty IFS disables IFS-driven splitting only; the
			// fieldEnd boundaries above still hold.
			if ifs == "" {
				last.Append(part.text, false, false)
				continue
			}
			result, last = splitGenerated(part.text, ifs, result, last)
		}
	}
	if !last.IsEmpty() {
		result = append(result, last)
	}
	return result
}

// splitGenerated scans one run of generated text, appending completed fields
// to result and returning the trailing partial field.
func splitGenerated(text, ifs string, result []*ExpandedWord, last *ExpandedWord) ([]*ExpandedWord, *ExpandedWord) {
	inIFS := func(c byte) bool { return strings.IndexByte(ifs, c) >= 0 }
	skipWhitespace := func(i int) int {
		for i < len(text) && inIFS(text[i]) && isIFSWhitespace(text[i]) {
			i++
		}
		return i
	}

	var acc strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		if !inIFS(c) {
			acc.WriteByte(c)
			i++
			continue
		}

		// One delimiter: either a whitespace run, or a single
		// non-whitespace separator with any surrounding whitespace.
		hard := false
		if isIFSWhitespace(c) {
			i = skipWhitespace(i)
			if i < len(text) && inIFS(text[i]) && !isIFSWhitespace(text[i]) {
				hard = true
				i = skipWhitespace(i + 1)
			}
		} else {
			hard = true
			i = skipWhitespace(i + 1)
		}

		last.Append(acc.String(), false, false)
		acc.Reset()
		if hard && i == len(text) {
			// Trailing separator: it terminates the field but adds
			// no empty one after it.
			if !last.IsEmpty() {
				result = append(result, last)
				last = &ExpandedWord{}
			}
			continue
		}
		if hard || !last.IsEmpty() {
			result = append(result, last)
			last = &ExpandedWord{}
		}
	}
	last.Append(acc.String(), false, false)
	return result, last
}
