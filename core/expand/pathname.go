package expand

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Glob performs pathname expansion of a single field against fs. It returns
// ok=false when the field holds no unquoted pattern characters or when
// nothing matches, in which case the caller uses the field text verbatim.
func Glob(fs afero.Fs, cwd string, field *ExpandedWord) ([]string, bool) {
	if !hasUnquotedMeta(field) {
		return nil, false
	}

	pat := patternString(field)
	absolute := strings.HasPrefix(pat, "/")
	pat = strings.TrimLeft(pat, "/")
	segments := strings.Split(pat, "/")

	// Candidates are result paths in the pattern's own form; relative
	// patterns yield relative names.
	candidates := []string{""}
	if absolute {
		candidates = []string{"/"}
	}

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		var next []string
		for _, cand := range candidates {
			next = append(next, matchSegment(fs, cwd, cand, seg)...)
		}
		candidates = next
		if len(candidates) == 0 {
			return nil, false
		}
	}

	sort.Strings(candidates)
	return candidates, true
}

// matchSegment extends one candidate directory by one pattern segment.
func matchSegment(fs afero.Fs, cwd, cand, seg string) []string {
	if !segmentHasMeta(seg) {
		full := joinCandidate(cand, unescapeSegment(seg))
		if _, err := fs.Stat(resolve(cwd, full)); err != nil {
			return nil
		}
		return []string{full}
	}

	infos, err := afero.ReadDir(fs, resolve(cwd, cand))
	if err != nil {
		return nil
	}
	re, err := compilePattern(seg)
	if err != nil {
		return nil
	}

	// A leading dot is only matched by a literal leading dot.
	matchDot := strings.HasPrefix(seg, ".") || strings.HasPrefix(seg, `\.`)

	var out []string
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") && !matchDot {
			continue
		}
		if re.MatchString(name) {
			out = append(out, joinCandidate(cand, name))
		}
	}
	return out
}

// segmentHasMeta reports whether a segment holds active pattern characters,
// as opposed to only backslash-escaped quoted ones.
func segmentHasMeta(seg string) bool {
	for i := 0; i < len(seg); i++ {
		switch seg[i] {
		case '\\':
			i++
		case '*', '?', '[':
			return true
		}
	}
	return false
}

func unescapeSegment(seg string) string {
	var sb strings.Builder
	for i := 0; i < len(seg); i++ {
		if seg[i] == '\\' && i+1 < len(seg) {
			i++
		}
		sb.WriteByte(seg[i])
	}
	return sb.String()
}

func joinCandidate(cand, name string) string {
	switch cand {
	case "":
		return name
	case "/":
		return "/" + name
	}
	return cand + "/" + name
}

func resolve(cwd, p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(cwd, p)
}

func hasUnquotedMeta(field *ExpandedWord) bool {
	for _, p := range field.parts {
		if p.kind != quotedPart && strings.ContainsAny(p.text, "*?[") {
			return true
		}
	}
	return false
}
