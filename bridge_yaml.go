package keypath

import "github.com/goccy/go-yaml"

//------------------------------------------------------------------------------
// YAML DOCUMENT BRIDGE
//------------------------------------------------------------------------------

// GetYAML decodes a YAML document and reads path against the decoded graph.
func (kp *KeyPath) GetYAML(doc []byte, path string, args ...interface{}) interface{} {
	var root interface{}
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return kp.snapshot().def
	}
	return kp.Get(root, path, args...)
}

// SetYAML writes value at path inside a YAML document and re-encodes it.
func (kp *KeyPath) SetYAML(doc []byte, path string, value interface{}, args ...interface{}) ([]byte, bool) {
	var root interface{}
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return doc, false
	}
	if !kp.Set(root, path, value, args...) {
		return doc, false
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return doc, false
	}
	return out, true
}

// GetYAML reads a path inside a YAML document with the default instance.
func GetYAML(doc []byte, path string, args ...interface{}) interface{} {
	return std.GetYAML(doc, path, args...)
}

// SetYAML writes a path inside a YAML document with the default instance.
func SetYAML(doc []byte, path string, value interface{}, args ...interface{}) ([]byte, bool) {
	return std.SetYAML(doc, path, value, args...)
}
