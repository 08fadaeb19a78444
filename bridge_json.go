package keypath

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

//------------------------------------------------------------------------------
// JSON DOCUMENT BRIDGE
//------------------------------------------------------------------------------

// GetJSON decodes a raw JSON document and reads path against the decoded
// graph. Failures (bad JSON included) yield the configured default.
func (kp *KeyPath) GetJSON(doc []byte, path string, args ...interface{}) interface{} {
	parsed := gjson.ParseBytes(doc)
	root := parsed.Value()
	if root == nil && parsed.Type != gjson.Null {
		return kp.snapshot().def
	}
	return kp.Get(root, path, args...)
}

// SetJSON writes value at path inside a raw JSON document, returning the
// rewritten document. Simple dot paths on a force-enabled instance are
// delegated to sjson, which writes bytes in place without a decode/encode
// round trip; everything else goes through the full engine. Paths with an
// all-digits segment are kept on the engine route: sjson vivifies those as
// arrays, while this engine vivifies missing intermediates as objects only.
func (kp *KeyPath) SetJSON(doc []byte, path string, value interface{}, args ...interface{}) ([]byte, bool) {
	snap := kp.snapshot()

	if snap.force && snap.syntax.property == '.' && !containsAnyByte(path, snap.syntax.complex) &&
		!hasNumericSegment(path, snap.syntax.property) {
		out, err := sjson.SetBytes(doc, path, value)
		if err == nil {
			return out, true
		}
	}

	root := gjson.ParseBytes(doc).Value()
	if root == nil {
		return doc, false
	}
	if !kp.Set(root, path, value, args...) {
		return doc, false
	}
	out, err := json.Marshal(root)
	if err != nil {
		return doc, false
	}
	// Match the shape of the incoming document.
	if bytes.IndexByte(doc, '\n') >= 0 {
		out = pretty.Pretty(out)
	}
	return out, true
}

func hasNumericSegment(path string, sep byte) bool {
	for len(path) > 0 {
		seg := path
		if i := strings.IndexByte(path, sep); i >= 0 {
			seg, path = path[:i], path[i+1:]
		} else {
			path = ""
		}
		if seg == "" {
			continue
		}
		numeric := true
		for j := 0; j < len(seg); j++ {
			if seg[j] < '0' || seg[j] > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			return true
		}
	}
	return false
}

// GetJSON reads a path inside a raw JSON document with the default instance.
func GetJSON(doc []byte, path string, args ...interface{}) interface{} {
	return std.GetJSON(doc, path, args...)
}

// SetJSON writes a path inside a raw JSON document with the default instance.
func SetJSON(doc []byte, path string, value interface{}, args ...interface{}) ([]byte, bool) {
	return std.SetJSON(doc, path, value, args...)
}
