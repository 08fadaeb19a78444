package keypath

import "strings"

//------------------------------------------------------------------------------
// TOKEN MODEL
//------------------------------------------------------------------------------

// TokenKind tags the closed set of token variants. The resolver dispatches on
// this tag exhaustively; there is no field-presence probing.
type TokenKind uint8

const (
	// KindSegment is a literal identifier or array index with no modifiers.
	KindSegment TokenKind = iota
	// KindWord is an identifier carrying prefix modifiers, a wildcard, or an
	// inherited each-flag.
	KindWord
	// KindCollection is an ordered list of alternatives evaluated against the
	// same context and concatenated into one result array.
	KindCollection
	// KindSubtree is a recursively tokenized container body.
	KindSubtree
	// KindLiteral is a quote-stripped verbatim string, never re-parsed.
	KindLiteral
)

// ExecRole records which container a subtree came from.
type ExecRole uint8

const (
	ExecProperty ExecRole = iota
	ExecSingleQuote
	ExecDoubleQuote
	ExecCall
	ExecEval
)

// Mods is the prefix-modifier set attached to a word.
type Mods struct {
	Parents     int
	Root        bool
	Placeholder bool
	Context     bool
}

func (m Mods) active() bool {
	return m.Parents > 0 || m.Root || m.Placeholder || m.Context
}

// Token is one node of a token tree.
type Token struct {
	Kind     TokenKind
	Text     string // Segment, Word and Literal payload
	Mods     Mods
	Wildcard bool
	DoEach   bool
	Items    []Token    // Collection members
	Sub      *TokenTree // Subtree body
	Exec     ExecRole   // Subtree origin
}

// TokenTree is the compiled form of a path. Simple is true iff every token is
// a plain segment, which licenses the fast-path walkers.
type TokenTree struct {
	Tokens []Token
	Simple bool

	segs []string // precomputed segment texts when Simple
}

//------------------------------------------------------------------------------
// TOKENIZER
//------------------------------------------------------------------------------

// tokenize compiles a raw path against a syntax table. It returns nil for
// malformed input: mismatched containers, a dangling escape, or a prefix or
// wildcard with nothing to modify. It never panics on bad paths.
func tokenize(sy *Syntax, path string) *TokenTree {
	if path == "" {
		return &TokenTree{Simple: true}
	}

	path = stripLooseEscapes(sy, path)

	// Fast exit: nothing but plain identifiers and the property separator.
	if !strings.ContainsAny(path, sy.complex) {
		segs := strings.Split(path, string(sy.property))
		tree := &TokenTree{
			Tokens: make([]Token, len(segs)),
			Simple: true,
			segs:   segs,
		}
		for i, s := range segs {
			tree.Tokens[i] = Token{Kind: KindSegment, Text: s}
		}
		return tree
	}

	sc := scanner{sy: sy, path: path}
	if !sc.run() {
		return nil
	}
	tree := &TokenTree{Tokens: sc.tokens, Simple: true}
	for _, t := range tree.Tokens {
		if t.Kind != KindSegment {
			tree.Simple = false
			break
		}
	}
	if tree.Simple {
		tree.segs = make([]string, len(tree.Tokens))
		for i, t := range tree.Tokens {
			tree.segs[i] = t.Text
		}
	}
	return tree
}

// stripLooseEscapes removes backslashes that precede non-special characters;
// such an escape is a no-op. Escapes before special characters are kept and
// later suppress the special meaning.
func stripLooseEscapes(sy *Syntax, s string) string {
	if !strings.ContainsRune(s, escapeChar) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == escapeChar && i+1 < len(s) && !sy.isSpecial(s[i+1]) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// scanner is the full left-to-right pass. Container state lives in an
// explicit frame instead of loose depth/opener/closer variables.
type scanner struct {
	sy   *Syntax
	path string

	tokens []Token

	word        strings.Builder
	mods        Mods
	hasWildcard bool
	doEach      bool

	collection []Token
	collEach   bool
	collOpen   bool

	frame frame
}

type frame struct {
	active  bool
	opener  byte
	def     containerDef
	depth   int
	subpath strings.Builder
}

// makeToken wraps the accumulated word. A word with modifiers, a wildcard, or
// an inherited each-flag must be a Word; anything else stays a bare segment.
func (sc *scanner) makeToken(text string, each bool) Token {
	if sc.mods.active() || sc.hasWildcard || each {
		return Token{
			Kind:     KindWord,
			Text:     text,
			Mods:     sc.mods,
			Wildcard: sc.hasWildcard,
			DoEach:   each,
		}
	}
	return Token{Kind: KindSegment, Text: text}
}

func (sc *scanner) resetWord() {
	sc.word.Reset()
	sc.mods = Mods{}
	sc.hasWildcard = false
}

// pushMember appends a token to the pending collection, opening it if needed.
// The collection captures the each-flag that was pending at open time.
func (sc *scanner) pushMember(t Token) {
	if !sc.collOpen {
		sc.collOpen = true
		sc.collEach = sc.doEach
	}
	sc.collection = append(sc.collection, t)
}

// closeCollection flushes the pending collection into the output stream.
func (sc *scanner) closeCollection() {
	sc.tokens = append(sc.tokens, Token{
		Kind:   KindCollection,
		Items:  sc.collection,
		DoEach: sc.collEach,
	})
	sc.collection = nil
	sc.collEach = false
	sc.collOpen = false
}

// flushWord ends the current bare word at a separator or container opener.
// Returns false on a prefix or wildcard with no word to modify.
func (sc *scanner) flushWord(intoCollection bool) bool {
	text := sc.word.String()
	if text == "" {
		if sc.mods.active() {
			return false
		}
		return true
	}
	if intoCollection {
		// Member modifiers travel on the member; the each-flag belongs to
		// the collection itself.
		sc.pushMember(sc.makeToken(text, false))
	} else if sc.collOpen {
		sc.pushMember(sc.makeToken(text, false))
	} else {
		sc.tokens = append(sc.tokens, sc.makeToken(text, sc.doEach))
	}
	sc.resetWord()
	return true
}

func (sc *scanner) run() bool {
	s := sc.path
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			if sc.frame.active {
				sc.frame.subpath.WriteByte(c)
			} else {
				sc.word.WriteByte(c)
			}
			continue
		}
		if c == escapeChar {
			escaped = true
			if sc.frame.active {
				// Preserve the escape for the recursive pass.
				sc.frame.subpath.WriteByte(c)
			}
			continue
		}

		if sc.frame.active {
			switch {
			case c == sc.frame.def.closer:
				sc.frame.depth--
				if sc.frame.depth == 0 {
					nextIsComma := false
					if i+1 < len(s) {
						if r, ok := sc.sy.separators[s[i+1]]; ok && r == SeparatorCollection {
							nextIsComma = true
						}
					}
					if !sc.closeContainer(nextIsComma) {
						return false
					}
				} else {
					sc.frame.subpath.WriteByte(c)
				}
			case c == sc.frame.opener && sc.frame.opener != sc.frame.def.closer:
				sc.frame.depth++
				sc.frame.subpath.WriteByte(c)
			default:
				sc.frame.subpath.WriteByte(c)
			}
			continue
		}

		if sc.sy.wildcard != 0 && c == sc.sy.wildcard {
			sc.hasWildcard = true
			sc.word.WriteByte(c)
			continue
		}

		if role, ok := sc.sy.prefixes[c]; ok {
			switch role {
			case PrefixParent:
				sc.mods.Parents++
			case PrefixRoot:
				sc.mods.Root = true
			case PrefixPlaceholder:
				sc.mods.Placeholder = true
			case PrefixContext:
				sc.mods.Context = true
			}
			continue
		}

		if role, ok := sc.sy.separators[c]; ok {
			switch role {
			case SeparatorProperty, SeparatorEach:
				if !sc.flushWord(false) {
					return false
				}
				if sc.collOpen {
					sc.closeCollection()
				}
				sc.doEach = role == SeparatorEach
			case SeparatorCollection:
				if !sc.flushWord(true) {
					return false
				}
			}
			continue
		}

		if def, ok := sc.sy.containers[c]; ok {
			wordWasEmpty := sc.word.Len() == 0
			// An empty word is not flushed here: pending prefix modifiers
			// attach to the container token instead.
			if !wordWasEmpty && !sc.flushWord(false) {
				return false
			}
			// The each-flag survives past an empty word (adjacent
			// containers) and past a call opener, where each binds to the
			// call's receiver rather than its arguments.
			if !wordWasEmpty && def.role != ContainerCall {
				sc.doEach = false
			}
			sc.frame = frame{active: true, opener: c, def: def, depth: 1}
			continue
		}

		sc.word.WriteByte(c)
	}

	if escaped {
		return false
	}
	if sc.frame.active {
		return false
	}
	if !sc.flushWord(false) {
		return false
	}
	if sc.collOpen {
		sc.closeCollection()
	}
	return true
}

// closeContainer converts the just-closed container body into a token. A
// recursive tokenize failure fails the whole scan.
func (sc *scanner) closeContainer(nextIsComma bool) bool {
	body := sc.frame.subpath.String()
	role := sc.frame.def.role
	sc.frame = frame{}

	tok, ok := sc.containerToken(body, role)
	if !ok {
		return false
	}

	if nextIsComma || sc.collOpen {
		tok.DoEach = false
		sc.pushMember(tok)
	} else {
		sc.tokens = append(sc.tokens, tok)
		sc.doEach = false
	}
	sc.mods = Mods{}
	return true
}

func (sc *scanner) containerToken(body string, role ContainerRole) (Token, bool) {
	switch role {
	case ContainerSingleQuote, ContainerDoubleQuote:
		// Quoted bodies are taken verbatim. Prefix modifiers captured before
		// the opening quote turn the literal into a modified word.
		if sc.mods.active() {
			return Token{
				Kind:   KindWord,
				Text:   body,
				Mods:   sc.mods,
				DoEach: sc.doEach,
			}, true
		}
		return Token{Kind: KindLiteral, Text: body, DoEach: sc.doEach}, true

	case ContainerProperty:
		if !strings.ContainsAny(body, sc.sy.complex) && !strings.ContainsAny(body, string(sc.sy.property)) {
			if sc.doEach {
				return Token{Kind: KindWord, Text: body, DoEach: true}, true
			}
			return Token{Kind: KindSegment, Text: body}, true
		}
		fallthrough

	default: // call, eval-property, property bodies that need a re-parse
		sub := tokenize(sc.sy, body)
		if sub == nil {
			return Token{}, false
		}
		exec := ExecProperty
		switch role {
		case ContainerCall:
			exec = ExecCall
		case ContainerEval:
			exec = ExecEval
		}
		return Token{Kind: KindSubtree, Sub: sub, Exec: exec, DoEach: sc.doEach}, true
	}
}
