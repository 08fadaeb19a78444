package keypath

import "strings"

// Escape prefixes every structurally special character in seg with the escape
// character, under the instance's current syntax table. The result embeds as
// a single literal segment even when seg contains separators or operators.
func (kp *KeyPath) Escape(seg string) string {
	if seg == "" {
		return ""
	}
	sy := kp.snapshot().syntax

	needsEscape := false
	for i := 0; i < len(seg); i++ {
		if sy.isSpecial(seg[i]) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return seg
	}

	var b strings.Builder
	b.Grow(len(seg) * 2)
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if sy.isSpecial(c) {
			b.WriteByte(escapeChar)
		}
		b.WriteByte(c)
	}
	return b.String()
}

// BuildPath joins literal segments with the property separator after escaping
// each one. Example: BuildPath("config", "foo.bar") -> "config.foo\.bar".
func (kp *KeyPath) BuildPath(segments ...string) string {
	if len(segments) == 0 {
		return ""
	}
	sy := kp.snapshot().syntax
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = kp.Escape(s)
	}
	return strings.Join(escaped, string(sy.property))
}
