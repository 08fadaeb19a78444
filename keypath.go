// Package keypath compiles a compact keypath syntax into token trees and
// evaluates them against in-memory object graphs to read, write, or locate
// values. Created by dhawalhost (2026-08-31)
package keypath

import "sync"

// KeyPath is one engine instance: a syntax table, a tokenize cache, and the
// behavioral switches. The zero configuration is the default syntax with
// caching on, force-vivification off, and a nil default value.
type KeyPath struct {
	mu      sync.RWMutex
	syntax  *Syntax
	cache   *sync.Map
	cacheOn bool
	force   bool
	def     interface{}
}

// New returns an engine with the default syntax table.
func New() *KeyPath {
	return &KeyPath{
		syntax:  defaultSyntax(),
		cache:   &sync.Map{},
		cacheOn: true,
	}
}

type snapshotState struct {
	syntax  *Syntax
	cache   *sync.Map
	cacheOn bool
	force   bool
	def     interface{}
}

// snapshot captures the configuration under the read lock so one call sees
// one consistent syntax/cache pair even across concurrent reconfiguration.
func (kp *KeyPath) snapshot() snapshotState {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	return snapshotState{kp.syntax, kp.cache, kp.cacheOn, kp.force, kp.def}
}

//------------------------------------------------------------------------------
// CONFIGURATION
//------------------------------------------------------------------------------

// SetCache enables or disables memoization of tokenize results.
func (kp *KeyPath) SetCache(on bool) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	kp.cacheOn = on
}

// SetForce enables auto-vivification of missing intermediate objects during
// writes. Missing intermediates become empty objects, never arrays.
func (kp *KeyPath) SetForce(on bool) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	kp.force = on
}

// SetDefaultValue configures what Get returns when resolution fails.
func (kp *KeyPath) SetDefaultValue(v interface{}) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	kp.def = v
}

// ClearCache drops every memoized token tree.
func (kp *KeyPath) ClearCache() {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	kp.cache = &sync.Map{}
}

// setSyntax publishes a new table; no stale tree may survive it, so the
// cache is replaced wholesale.
func (kp *KeyPath) setSyntax(sy *Syntax) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	kp.syntax = sy
	kp.cache = &sync.Map{}
}

// SetPrefix rebinds a prefix role to a new character.
func (kp *KeyPath) SetPrefix(role PrefixRole, c byte) error {
	sy, err := kp.snapshot().syntax.withPrefix(role, c)
	if err != nil {
		return err
	}
	kp.setSyntax(sy)
	return nil
}

// SetSeparator rebinds a separator role to a new character.
func (kp *KeyPath) SetSeparator(role SeparatorRole, c byte) error {
	sy, err := kp.snapshot().syntax.withSeparator(role, c)
	if err != nil {
		return err
	}
	kp.setSyntax(sy)
	return nil
}

// SetContainer rebinds a container role to an opener/closer pair.
func (kp *KeyPath) SetContainer(role ContainerRole, open, closer byte) error {
	sy, err := kp.snapshot().syntax.withContainer(role, open, closer)
	if err != nil {
		return err
	}
	kp.setSyntax(sy)
	return nil
}

// SimpleMode collapses the syntax to the single given separator, disabling
// every operator including the wildcard.
func (kp *KeyPath) SimpleMode(sep byte) error {
	if !validSyntaxChar(sep) {
		return ErrBadSyntaxChar
	}
	kp.setSyntax(simpleSyntax(sep))
	return nil
}

// ResetSyntax restores the default table.
func (kp *KeyPath) ResetSyntax() {
	kp.setSyntax(defaultSyntax())
}

//------------------------------------------------------------------------------
// PUBLIC API
//------------------------------------------------------------------------------

// GetTokens compiles a path, returning nil when the syntax is malformed.
// With caching enabled the identical tree object is returned for repeat
// calls until the syntax changes.
func (kp *KeyPath) GetTokens(path string) *TokenTree {
	snap := kp.snapshot()
	return tokenizeCached(snap, path)
}

func tokenizeCached(snap snapshotState, path string) *TokenTree {
	if snap.cacheOn {
		if v, ok := snap.cache.Load(path); ok {
			return v.(*TokenTree)
		}
	}
	tree := tokenize(snap.syntax, path)
	if tree != nil && snap.cacheOn {
		snap.cache.Store(path, tree)
	}
	return tree
}

// IsValid reports whether a path tokenizes cleanly.
func (kp *KeyPath) IsValid(path string) bool {
	return kp.GetTokens(path) != nil
}

// Get reads the value at path, returning the instance's configured default
// when the path fails to parse or resolve. It never panics on a bad path.
func (kp *KeyPath) Get(data interface{}, path string, args ...interface{}) interface{} {
	snap := kp.snapshot()
	v, ok := evalPath(snap, data, path, nil, false, args)
	if !ok {
		return snap.def
	}
	return v
}

// GetWithDefault reads the value at path, returning def on failure
// regardless of the instance's configured default.
func (kp *KeyPath) GetWithDefault(data interface{}, path string, def interface{}, args ...interface{}) interface{} {
	snap := kp.snapshot()
	v, ok := evalPath(snap, data, path, nil, false, args)
	if !ok {
		return def
	}
	return v
}

// GetMany reads several paths against the same data.
func (kp *KeyPath) GetMany(data interface{}, paths ...string) []interface{} {
	if len(paths) == 0 {
		return nil
	}
	out := make([]interface{}, len(paths))
	for i, p := range paths {
		out[i] = kp.Get(data, p)
	}
	return out
}

// Set writes value at path, mutating data in place. It reports false when
// parsing or any part of the resolution failed; a fan-out write that fails
// midway leaves the writes already applied in place.
func (kp *KeyPath) Set(data interface{}, path string, value interface{}, args ...interface{}) bool {
	snap := kp.snapshot()
	_, ok := evalPath(snap, data, path, value, true, args)
	return ok
}

// GetTree reads through a pre-compiled token tree, as returned by GetTokens.
func (kp *KeyPath) GetTree(data interface{}, tree *TokenTree, args ...interface{}) interface{} {
	snap := kp.snapshot()
	if tree == nil {
		return snap.def
	}
	v, ok := evalTree(snap, data, tree, nil, false, args)
	if !ok {
		return snap.def
	}
	return v
}

// SetTree writes through a pre-compiled token tree.
func (kp *KeyPath) SetTree(data interface{}, tree *TokenTree, value interface{}, args ...interface{}) bool {
	if tree == nil {
		return false
	}
	snap := kp.snapshot()
	_, ok := evalTree(snap, data, tree, value, true, args)
	return ok
}

// evalPath dispatches a raw path: the split-based walker when caching is off
// and the string is provably simple, else tokenize (with cache) and resolve.
func evalPath(snap snapshotState, data interface{}, path string, newVal interface{}, writing bool, args []interface{}) (interface{}, bool) {
	if !snap.cacheOn && !containsAnyByte(path, snap.syntax.complex) {
		return walkString(path, snap.syntax.property, data, newVal, writing, snap.force)
	}
	tree := tokenizeCached(snap, path)
	if tree == nil {
		return nil, false
	}
	return evalTree(snap, data, tree, newVal, writing, args)
}

func evalTree(snap snapshotState, data interface{}, tree *TokenTree, newVal interface{}, writing bool, args []interface{}) (interface{}, bool) {
	if tree.Simple {
		return walkSegments(tree.segs, data, newVal, writing, snap.force)
	}
	return resolveTree(data, tree, newVal, writing, snap.force, args)
}

func containsAnyByte(s, set string) bool {
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(set); j++ {
			if s[i] == set[j] {
				return true
			}
		}
	}
	return false
}

//------------------------------------------------------------------------------
// PACKAGE-LEVEL DEFAULT INSTANCE
//------------------------------------------------------------------------------

var std = New()

// Get reads path against data using the package default instance.
func Get(data interface{}, path string, args ...interface{}) interface{} {
	return std.Get(data, path, args...)
}

// GetWithDefault reads path, returning def on failure.
func GetWithDefault(data interface{}, path string, def interface{}, args ...interface{}) interface{} {
	return std.GetWithDefault(data, path, def, args...)
}

// GetMany reads several paths against the same data.
func GetMany(data interface{}, paths ...string) []interface{} {
	return std.GetMany(data, paths...)
}

// Set writes value at path, mutating data in place.
func Set(data interface{}, path string, value interface{}, args ...interface{}) bool {
	return std.Set(data, path, value, args...)
}

// GetTokens compiles a path with the package default instance.
func GetTokens(path string) *TokenTree {
	return std.GetTokens(path)
}

// IsValid reports whether a path tokenizes cleanly.
func IsValid(path string) bool {
	return std.IsValid(path)
}

// Escape makes seg safe to embed as one literal segment.
func Escape(seg string) string {
	return std.Escape(seg)
}

// BuildPath joins literal segments after escaping each one.
func BuildPath(segments ...string) string {
	return std.BuildPath(segments...)
}
