package keypath

import "strings"

//------------------------------------------------------------------------------
// FAST-PATH WALKERS
//------------------------------------------------------------------------------

// walkString resolves a provably simple path by splitting on the property
// separator and stepping key by key, avoiding the tokenizer and the full
// resolver entirely. An empty segment always fails.
func walkString(path string, sep byte, data interface{}, newVal interface{}, writing bool, force bool) (interface{}, bool) {
	context := data
	for len(path) > 0 {
		var seg string
		if i := strings.IndexByte(path, sep); i >= 0 {
			seg, path = path[:i], path[i+1:]
			if seg == "" {
				return nil, false
			}
			v, ok := stepValue(context, seg, false, nil, writing && force)
			if !ok {
				return nil, false
			}
			context = v
			continue
		}
		// Last segment.
		return stepValue(context, path, writing, newVal, false)
	}
	return nil, false
}

// walkSegments is the identical walk over pre-split segments, used when a
// simple token tree is already compiled (typically out of the cache).
func walkSegments(segs []string, data interface{}, newVal interface{}, writing bool, force bool) (interface{}, bool) {
	context := data
	for i, seg := range segs {
		if seg == "" {
			return nil, false
		}
		final := i == len(segs)-1
		v, ok := stepValue(context, seg, writing && final, newVal, writing && !final && force)
		if !ok {
			return nil, false
		}
		context = v
	}
	if len(segs) == 0 {
		return nil, false
	}
	return context, true
}
