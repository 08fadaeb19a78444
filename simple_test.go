package keypath

import (
	"reflect"
	"testing"
)

// TestFastPathEquivalence tests that both fast walkers and the full resolver
// agree on every simple path
func TestFastPathEquivalence(t *testing.T) {
	data := sampleData()
	paths := []string{
		"name",
		"age",
		"address.city",
		"phones.0.number",
		"phones.1.type",
		"scores.2",
		"missing",
		"address.missing",
		"phones.9.number",
		"name.too.deep",
	}
	for _, p := range paths {
		tree := tokenize(defaultSyntax(), p)
		if tree == nil || !tree.Simple {
			t.Fatalf("Expected %q to compile simple", p)
		}

		sv, sok := walkString(p, '.', data, nil, false, false)
		gv, gok := walkSegments(tree.segs, data, nil, false, false)
		fv, fok := resolveTree(data, tree, nil, false, false, nil)

		if sok != gok || sok != fok {
			t.Errorf("Path %q: walkers disagree on success: %v %v %v", p, sok, gok, fok)
			continue
		}
		if !reflect.DeepEqual(sv, gv) || !reflect.DeepEqual(sv, fv) {
			t.Errorf("Path %q: walkers disagree on value: %v %v %v", p, sv, gv, fv)
		}
	}
}

// TestFastPathEmptySegments tests that empty segments always fail
func TestFastPathEmptySegments(t *testing.T) {
	data := sampleData()
	for _, p := range []string{".name", "name.", "address..city", "."} {
		if _, ok := walkString(p, '.', data, nil, false, false); ok {
			t.Errorf("Expected %q to fail in the split walker", p)
		}
		if v := Get(data, p); v != nil {
			t.Errorf("Expected nil for %q, got %v", p, v)
		}
	}
}

// TestFastPathWrites tests read/write unification in the walkers
func TestFastPathWrites(t *testing.T) {
	data := map[string]interface{}{
		"a": map[string]interface{}{"b": 1},
	}
	if _, ok := walkString("a.b", '.', data, 2, true, false); !ok {
		t.Fatal("Expected split-walker write to succeed")
	}
	if v := Get(data, "a.b"); v != 2 {
		t.Errorf("Expected 2 after write, got %v", v)
	}

	// A final-position write may create the key; a missing intermediate
	// without force may not.
	if _, ok := walkSegments([]string{"a", "c"}, data, 3, true, false); !ok {
		t.Error("Expected final-position write to create the key")
	}
	if _, ok := walkSegments([]string{"z", "c"}, data, 3, true, false); ok {
		t.Error("Expected write through a missing intermediate to fail")
	}
	if _, ok := walkSegments([]string{"a", "x", "y"}, data, 3, true, true); !ok {
		t.Error("Expected forced segment-walker write to vivify and succeed")
	}
	if v := Get(data, "a.x.y"); v != 3 {
		t.Errorf("Expected 3 after forced write, got %v", v)
	}
}

// TestCacheOffUsesSplitWalker tests the dispatch path with caching disabled
func TestCacheOffUsesSplitWalker(t *testing.T) {
	kp := New()
	kp.SetCache(false)
	data := sampleData()
	if v := kp.Get(data, "address.zip"); v != "94103" {
		t.Errorf("Expected 94103 with caching off, got %v", v)
	}
	if !kp.Set(data, "address.zip", "94110") {
		t.Fatal("Expected set with caching off to succeed")
	}
	if v := kp.Get(data, "address.zip"); v != "94110" {
		t.Errorf("Expected 94110, got %v", v)
	}
}
