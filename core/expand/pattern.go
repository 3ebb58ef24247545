package expand

import (
	"regexp"

	"mvdan.cc/sh/v3/pattern"

	"github.com/poshell/poshell/core/ast"
)

// patternString renders an expanded word as a shell pattern. Characters
// that were quoted in the source are escaped so they only match themselves.
func patternString(w *ExpandedWord) string {
	var out string
	for _, p := range w.parts {
		if p.kind == quotedPart {
			out += pattern.QuoteMeta(p.text, 0)
		} else {
			out += p.text
		}
	}
	return out
}

func compilePattern(pat string) (*regexp.Regexp, error) {
	expr, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
		return nil, &ExpansionError{Msg: "bad pattern: " + pat}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &ExpansionError{Msg: "bad pattern: " + pat}
	}
	return re, nil
}

// Match reports whether value matches the expanded pattern in full, with *
// ? and bracket expressions active in unquoted text.
func Match(value string, pat *ExpandedWord) (bool, error) {
	re, err := compilePattern(patternString(pat))
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

// removePattern implements the four ${name%pattern} style operators by
// trimming the matching prefix or suffix of value.
func removePattern(value string, pat *ExpandedWord, op ast.ParamOp) (string, error) {
	ps := patternString(pat)
	if ps == "" {
		return value, nil
	}
	re, err := compilePattern(ps)
	if err != nil {
		return "", err
	}

	switch op {
	case ast.ParamRemoveSmallestSuffix:
		for i := len(value); i >= 0; i-- {
			if re.MatchString(value[i:]) {
				return value[:i], nil
			}
		}
	case ast.ParamRemoveLargestSuffix:
		for i := 0; i <= len(value); i++ {
			if re.MatchString(value[i:]) {
				return value[:i], nil
			}
		}
	case ast.ParamRemoveSmallestPrefix:
		for i := 0; i <= len(value); i++ {
			if re.MatchString(value[:i]) {
				return value[i:], nil
			}
		}
	case ast.ParamRemoveLargestPrefix:
		for i := len(value); i >= 0; i-- {
			if re.MatchString(value[:i]) {
				return value[i:], nil
			}
		}
	}
	return value, nil
}
