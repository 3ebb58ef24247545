package expand

import "strings"

// expandTilde handles a leading unquoted ~ or ~user prefix. lit is the first
// literal of the word, already known to start with a tilde. It reports
// whether it consumed the literal; when the named user is unknown the word
// is left alone and the caller emits the literal unchanged.
func expandTilde(ctx Context, lit string, out *ExpandedWord) bool {
	prefix := lit
	rest := ""
	if i := strings.IndexByte(lit, '/'); i >= 0 {
		prefix, rest = lit[:i], lit[i:]
	}

	dir, ok := ctx.HomeDirectory(prefix[1:])
	if !ok {
		return false
	}

	// The expanded directory behaves as if quoted: it is not subject to
	// field splitting or pathname expansion.
	out.Append(dir, true, false)
	out.Append(rest, false, false)
	return true
}
