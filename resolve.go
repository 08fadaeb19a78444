package keypath

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/match"
)

// Fn is the method-shaped callable the call container invokes. The receiver
// is the value the callable was fetched from, emulating method-call binding.
type Fn func(recv interface{}, args ...interface{}) interface{}

// valueStack holds intermediate results of one top-level resolve call. Entry
// 0 is the root. It is threaded by reference through recursion and never
// shared across independent top-level calls.
type valueStack struct {
	vals []interface{}
}

func (s *valueStack) push(v interface{}) { s.vals = append(s.vals, v) }
func (s *valueStack) size() int          { return len(s.vals) }

// back returns the entry n levels below the current top.
func (s *valueStack) back(n int) (interface{}, bool) {
	i := len(s.vals) - 1 - n
	if i < 0 {
		return nil, false
	}
	return s.vals[i], true
}

// shrink restores a caller's saved length; a shorter stack (a root reset in a
// callee) is left alone, since that reset is one-way by contract.
func (s *valueStack) shrink(n int) {
	if n < len(s.vals) {
		s.vals = s.vals[:n]
	}
}

// resolveState carries the per-call invariants of one top-level resolution so
// the recursion does not thread six loose parameters.
type resolveState struct {
	newVal  interface{}
	writing bool
	force   bool
	args    []interface{}
	stack   *valueStack
}

// resolveTree evaluates a token tree against a root value. The boolean is the
// failure channel: false means the resolution failed somewhere, while
// (nil, true) means the graph genuinely holds nil at the path.
func resolveTree(data interface{}, tree *TokenTree, newVal interface{}, writing bool, force bool, args []interface{}) (interface{}, bool) {
	st := &valueStack{vals: []interface{}{data}}
	rs := &resolveState{newVal: newVal, writing: writing, force: force, args: args, stack: st}
	return rs.fold(tree.Tokens, data)
}

// fold is the left-to-right walk over one token sequence. Each token's result
// is pushed on the value stack and becomes the next context.
func (rs *resolveState) fold(tokens []Token, context interface{}) (interface{}, bool) {
	for i, tok := range tokens {
		final := i == len(tokens)-1
		v, ok := rs.eval(tok, context, final, false)
		if !ok {
			return nil, false
		}
		rs.stack.push(v)
		context = v
	}
	return context, true
}

// foldSub runs a nested tree sharing the stack, restoring the caller's stack
// length afterwards so sibling iterations never see callee entries.
func (rs *resolveState) foldSub(tokens []Token, context interface{}, writing bool) (interface{}, bool) {
	saved := *rs
	saved.writing = writing
	mark := rs.stack.size()
	v, ok := saved.fold(tokens, context)
	rs.stack.shrink(mark)
	return v, ok
}

// eval dispatches one token. eachOff suppresses the token's each-flag; the
// collection double fan-out passes it instead of mutating the shared tree.
func (rs *resolveState) eval(tok Token, context interface{}, final bool, eachOff bool) (interface{}, bool) {
	doEach := tok.DoEach && !eachOff

	switch tok.Kind {
	case KindSegment:
		return rs.step(context, tok.Text, final)

	case KindLiteral:
		if doEach {
			return rs.eachWord(context, tok.Text, false, final)
		}
		return rs.step(context, tok.Text, final)

	case KindWord:
		return rs.evalWord(tok, context, final, doEach)

	case KindCollection:
		return rs.evalCollection(tok, context, final, doEach)

	case KindSubtree:
		switch tok.Exec {
		case ExecCall:
			return rs.evalCall(tok, context, doEach)
		case ExecEval:
			return rs.evalComputed(tok, context, final, doEach)
		default:
			// Bracketed sub-path: continue the walk from here.
			return rs.foldSub(tok.Sub.Tokens, context, rs.writing && final)
		}
	}
	return nil, false
}

//------------------------------------------------------------------------------
// WORDS AND WILDCARDS
//------------------------------------------------------------------------------

func (rs *resolveState) evalWord(tok Token, context interface{}, final bool, doEach bool) (interface{}, bool) {
	word := tok.Text
	m := tok.Mods

	if m.Parents > 0 {
		v, ok := rs.stack.back(m.Parents)
		if !ok {
			return nil, false
		}
		context = v
	}
	if m.Root {
		rs.stack.shrink(1)
		context = rs.stack.vals[0]
	}
	if m.Placeholder {
		idx, err := strconv.Atoi(word)
		if err != nil || idx < 1 || idx > len(rs.args) {
			return nil, false
		}
		word = stringify(rs.args[idx-1])
	}
	if m.Context {
		// The context prefix replaces the lookup entirely: an all-digit word
		// selects an argument, anything else yields the word itself.
		if idx, err := strconv.Atoi(word); err == nil {
			if idx < 1 || idx > len(rs.args) {
				return nil, false
			}
			return rs.args[idx-1], true
		}
		return word, true
	}

	if doEach {
		return rs.eachWord(context, word, tok.Wildcard, final)
	}
	return rs.lookupWord(context, word, tok.Wildcard, final)
}

func (rs *resolveState) eachWord(context interface{}, word string, wildcard bool, final bool) (interface{}, bool) {
	arr, ok := context.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]interface{}, len(arr))
	for i, el := range arr {
		v, ok := rs.lookupWord(el, word, wildcard, final)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// lookupWord reads or writes one property. When the exact name is missing and
// the word carries a wildcard, every enumerable key matching the template
// participates instead.
func (rs *resolveState) lookupWord(context interface{}, word string, wildcard bool, final bool) (interface{}, bool) {
	if wildcard {
		// Fan out only when no exact match exists; a write must not create
		// a key literally named after the template.
		if m, ok := context.(map[string]interface{}); ok {
			if _, exists := m[word]; !exists {
				return rs.fanWildcard(m, word, final)
			}
		}
	}
	if v, ok := rs.step(context, word, final); ok {
		return v, true
	}
	// Degenerate affordance kept for compatibility: naming a property on a
	// callable yields the name itself.
	if isCallable(context) {
		return word, true
	}
	return nil, false
}

func (rs *resolveState) fanWildcard(m map[string]interface{}, template string, final bool) (interface{}, bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		if wildcardMatch(template, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, false
	}
	sort.Strings(keys)
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		if rs.writing && final {
			m[k] = rs.newVal
		}
		out[i] = m[k]
	}
	return out, true
}

// wildcardMatch reports whether name fits the template: the text before the
// first wildcard must prefix the name and the text after it must suffix it.
// Both parts are literal, so any further wildcard (or other matcher
// metacharacter) in them is escaped before the pattern is handed off.
func wildcardMatch(template, name string) bool {
	i := strings.IndexByte(template, Wildcard)
	if i < 0 {
		return name == template
	}
	var b strings.Builder
	b.Grow(len(template) + 4)
	writeMatchLiteral(&b, template[:i])
	b.WriteByte(Wildcard)
	writeMatchLiteral(&b, template[i+1:])
	return match.Match(name, b.String())
}

func writeMatchLiteral(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
}

//------------------------------------------------------------------------------
// COLLECTIONS
//------------------------------------------------------------------------------

func (rs *resolveState) evalCollection(tok Token, context interface{}, final bool, doEach bool) (interface{}, bool) {
	if doEach {
		arr, ok := context.([]interface{})
		if !ok {
			return nil, false
		}
		out := make([]interface{}, len(arr))
		for i, el := range arr {
			v, ok := rs.collectMembers(tok.Items, el, final)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	}
	return rs.collectMembers(tok.Items, context, final)
}

// collectMembers evaluates every member against the same context. Failure of
// any member fails the whole resolution; there are no partial results.
func (rs *resolveState) collectMembers(members []Token, context interface{}, final bool) (interface{}, bool) {
	out := make([]interface{}, len(members))
	for i, m := range members {
		var v interface{}
		var ok bool
		if m.Kind == KindSubtree && m.Exec == ExecEval {
			// An eval member contributes the value at the computed key, not
			// the key itself.
			v, ok = rs.evalComputed(m, context, final, false)
		} else {
			mark := rs.stack.size()
			v, ok = rs.eval(m, context, final, true)
			rs.stack.shrink(mark)
		}
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

//------------------------------------------------------------------------------
// COMPUTED PROPERTIES AND CALLS
//------------------------------------------------------------------------------

// evalComputed resolves the subtree to a property name against the current
// context, then reads or writes through that name.
func (rs *resolveState) evalComputed(tok Token, context interface{}, final bool, doEach bool) (interface{}, bool) {
	if doEach {
		arr, ok := context.([]interface{})
		if !ok {
			return nil, false
		}
		out := make([]interface{}, len(arr))
		for i, el := range arr {
			v, ok := rs.computeAndStep(tok.Sub, el, final)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	}
	return rs.computeAndStep(tok.Sub, context, final)
}

func (rs *resolveState) computeAndStep(sub *TokenTree, context interface{}, final bool) (interface{}, bool) {
	var name interface{}
	var ok bool
	if sub.Simple {
		name, ok = walkSegments(sub.segs, context, nil, false, false)
	} else {
		name, ok = rs.foldSub(sub.Tokens, context, false)
	}
	if !ok {
		return nil, false
	}
	return rs.step(context, stringify(name), final)
}

func (rs *resolveState) evalCall(tok Token, context interface{}, doEach bool) (interface{}, bool) {
	recv, ok := rs.stack.back(1)
	if !ok {
		recv = nil
	}

	if doEach {
		fns, ok := context.([]interface{})
		if !ok {
			return nil, false
		}
		recvs, _ := recv.([]interface{})
		out := make([]interface{}, len(fns))
		for i, fn := range fns {
			var r interface{}
			if i < len(recvs) {
				r = recvs[i]
			}
			v, ok := rs.invokeWithArgs(tok.Sub, fn, r)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	}
	return rs.invokeWithArgs(tok.Sub, context, recv)
}

// invokeWithArgs resolves the argument subtree against the receiver, then
// invokes the callable. An array result spreads into the argument list.
func (rs *resolveState) invokeWithArgs(sub *TokenTree, callable, recv interface{}) (interface{}, bool) {
	var callArgs []interface{}
	if sub != nil && len(sub.Tokens) > 0 {
		v, ok := rs.foldSub(sub.Tokens, recv, false)
		if !ok {
			return nil, false
		}
		if arr, isArr := v.([]interface{}); isArr {
			callArgs = arr
		} else {
			callArgs = []interface{}{v}
		}
	}
	return invoke(callable, recv, callArgs)
}

func invoke(callable, recv interface{}, args []interface{}) (interface{}, bool) {
	switch f := callable.(type) {
	case Fn:
		return f(recv, args...), true
	case func(recv interface{}, args ...interface{}) interface{}:
		return f(recv, args...), true
	case func(args ...interface{}) interface{}:
		return f(args...), true
	case func() interface{}:
		return f(), true
	}
	return nil, false
}

func isCallable(v interface{}) bool {
	switch v.(type) {
	case Fn,
		func(recv interface{}, args ...interface{}) interface{},
		func(args ...interface{}) interface{},
		func() interface{}:
		return true
	}
	return false
}

//------------------------------------------------------------------------------
// SINGLE STEPS
//------------------------------------------------------------------------------

// step performs one property or index access. At the final position of a
// write it assigns and verifies the assignment stuck; at earlier positions of
// a forced write it vivifies a missing intermediate as an empty object.
func (rs *resolveState) step(context interface{}, key string, final bool) (interface{}, bool) {
	assign := rs.writing && final
	vivify := rs.writing && !final && rs.force
	return stepValue(context, key, assign, rs.newVal, vivify)
}

func stepValue(context interface{}, key string, assign bool, newVal interface{}, vivify bool) (interface{}, bool) {
	switch c := context.(type) {
	case map[string]interface{}:
		if assign {
			c[key] = newVal
			if _, ok := c[key]; !ok {
				return nil, false
			}
			return newVal, true
		}
		v, ok := c[key]
		if !ok {
			if vivify {
				child := map[string]interface{}{}
				c[key] = child
				return child, true
			}
			return nil, false
		}
		return v, true

	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(c) {
			return nil, false
		}
		if assign {
			c[idx] = newVal
			return newVal, true
		}
		return c[idx], true
	}
	return nil, false
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
