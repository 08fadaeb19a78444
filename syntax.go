package keypath

import "errors"

// Error definitions for syntax configuration
var (
	ErrBadSyntaxChar   = errors.New("syntax token must be a single printable non-wildcard character")
	ErrSyntaxCharInUse = errors.New("syntax character already assigned to a different role")
)

// Wildcard is the substring-match character. It is reserved and can never be
// reassigned to a structural role.
const Wildcard = '*'

// escapeChar suppresses the special meaning of the character that follows it.
// It is implicit and not part of the configurable table.
const escapeChar = '\\'

// PrefixRole identifies a prefix operator in the syntax table.
type PrefixRole uint8

const (
	PrefixParent PrefixRole = iota
	PrefixRoot
	PrefixPlaceholder
	PrefixContext
)

// SeparatorRole identifies a separator in the syntax table.
type SeparatorRole uint8

const (
	SeparatorProperty SeparatorRole = iota
	SeparatorCollection
	SeparatorEach
)

// ContainerRole identifies a paired container in the syntax table.
type ContainerRole uint8

const (
	ContainerProperty ContainerRole = iota
	ContainerSingleQuote
	ContainerDoubleQuote
	ContainerCall
	ContainerEval
)

type containerDef struct {
	role   ContainerRole
	closer byte
}

// Syntax is an immutable character-to-role table. Reconfiguration on a
// KeyPath instance builds a fresh Syntax (and a fresh tokenize cache) rather
// than mutating a table shared with in-flight calls.
type Syntax struct {
	prefixes   map[byte]PrefixRole
	separators map[byte]SeparatorRole
	containers map[byte]containerDef // keyed by opening character

	property byte // the property separator, kept out of the complex set
	wildcard byte // 0 when disabled (simple mode)

	// specials is every structural character including wildcard and escape.
	// complex is specials minus the property separator; a path containing
	// none of these is provably simple and skips the full scanner.
	specials string
	complex  string
}

func defaultSyntax() *Syntax {
	sy := &Syntax{
		prefixes: map[byte]PrefixRole{
			'^': PrefixParent,
			'~': PrefixRoot,
			'%': PrefixPlaceholder,
			'@': PrefixContext,
		},
		separators: map[byte]SeparatorRole{
			'.': SeparatorProperty,
			',': SeparatorCollection,
			'<': SeparatorEach,
		},
		containers: map[byte]containerDef{
			'[':  {ContainerProperty, ']'},
			'\'': {ContainerSingleQuote, '\''},
			'"':  {ContainerDoubleQuote, '"'},
			'(':  {ContainerCall, ')'},
			'{':  {ContainerEval, '}'},
		},
		wildcard: Wildcard,
	}
	sy.rebuild()
	return sy
}

// simpleSyntax collapses the table to a lone property separator. Every other
// operator, the wildcard included, loses its meaning.
func simpleSyntax(sep byte) *Syntax {
	sy := &Syntax{
		prefixes:   map[byte]PrefixRole{},
		separators: map[byte]SeparatorRole{sep: SeparatorProperty},
		containers: map[byte]containerDef{},
		wildcard:   0,
	}
	sy.rebuild()
	return sy
}

func (sy *Syntax) clone() *Syntax {
	out := &Syntax{
		prefixes:   make(map[byte]PrefixRole, len(sy.prefixes)),
		separators: make(map[byte]SeparatorRole, len(sy.separators)),
		containers: make(map[byte]containerDef, len(sy.containers)),
		wildcard:   sy.wildcard,
	}
	for c, r := range sy.prefixes {
		out.prefixes[c] = r
	}
	for c, r := range sy.separators {
		out.separators[c] = r
	}
	for c, d := range sy.containers {
		out.containers[c] = d
	}
	return out
}

// rebuild recomputes the property separator and the derived character sets.
// Must be called after any role mutation and before the table is published.
func (sy *Syntax) rebuild() {
	sy.property = 0
	for c, r := range sy.separators {
		if r == SeparatorProperty {
			sy.property = c
		}
	}

	seen := make(map[byte]bool, 16)
	add := func(c byte) {
		if c != 0 {
			seen[c] = true
		}
	}
	for c := range sy.prefixes {
		add(c)
	}
	for c := range sy.separators {
		add(c)
	}
	for c, d := range sy.containers {
		add(c)
		add(d.closer)
	}
	add(sy.wildcard)
	add(escapeChar)

	specials := make([]byte, 0, len(seen))
	complexSet := make([]byte, 0, len(seen))
	for c := range seen {
		specials = append(specials, c)
		if c != sy.property {
			complexSet = append(complexSet, c)
		}
	}
	sy.specials = string(specials)
	sy.complex = string(complexSet)
}

func (sy *Syntax) isSpecial(c byte) bool {
	for i := 0; i < len(sy.specials); i++ {
		if sy.specials[i] == c {
			return true
		}
	}
	return false
}

// inUse reports whether c already plays a structural role. Callers remove the
// role being rebound first, so reassigning a character to itself stays legal.
func (sy *Syntax) inUse(c byte) bool {
	if _, ok := sy.prefixes[c]; ok {
		return true
	}
	if _, ok := sy.separators[c]; ok {
		return true
	}
	for open, d := range sy.containers {
		if open == c || d.closer == c {
			return true
		}
	}
	return false
}

func validSyntaxChar(c byte) bool {
	return c > ' ' && c < 0x7f && c != Wildcard && c != escapeChar
}

// withPrefix returns a copy of the table with the prefix role bound to c.
func (sy *Syntax) withPrefix(role PrefixRole, c byte) (*Syntax, error) {
	if !validSyntaxChar(c) {
		return nil, ErrBadSyntaxChar
	}
	out := sy.clone()
	for old, r := range out.prefixes {
		if r == role {
			delete(out.prefixes, old)
		}
	}
	if out.inUse(c) {
		return nil, ErrSyntaxCharInUse
	}
	out.prefixes[c] = role
	out.rebuild()
	return out, nil
}

func (sy *Syntax) withSeparator(role SeparatorRole, c byte) (*Syntax, error) {
	if !validSyntaxChar(c) {
		return nil, ErrBadSyntaxChar
	}
	out := sy.clone()
	for old, r := range out.separators {
		if r == role {
			delete(out.separators, old)
		}
	}
	if out.inUse(c) {
		return nil, ErrSyntaxCharInUse
	}
	out.separators[c] = role
	out.rebuild()
	return out, nil
}

// withContainer rebinds a container role to an opener/closer pair. Quote
// containers may use the same character for both ends; other containers must
// not, since the scanner relies on distinct ends to track self-nesting.
func (sy *Syntax) withContainer(role ContainerRole, open, closer byte) (*Syntax, error) {
	if !validSyntaxChar(open) || !validSyntaxChar(closer) {
		return nil, ErrBadSyntaxChar
	}
	quote := role == ContainerSingleQuote || role == ContainerDoubleQuote
	if open == closer && !quote {
		return nil, ErrBadSyntaxChar
	}
	if open != closer && quote {
		return nil, ErrBadSyntaxChar
	}
	out := sy.clone()
	for old, d := range out.containers {
		if d.role == role {
			delete(out.containers, old)
		}
	}
	if out.inUse(open) || (closer != open && out.inUse(closer)) {
		return nil, ErrSyntaxCharInUse
	}
	out.containers[open] = containerDef{role, closer}
	out.rebuild()
	return out, nil
}
