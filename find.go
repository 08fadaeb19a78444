package keypath

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
)

// ErrCircular is returned by FindSafe when the walk revisits an ancestor
// container.
var ErrCircular = errors.New("circular reference detected")

// Find walks the data graph depth-first and returns every keypath whose
// value matches the target. Segments are escaped under the instance syntax so
// the returned paths feed straight back into Get. Containers already on the
// current walk path are skipped, so cyclic graphs terminate.
func (kp *KeyPath) Find(data, target interface{}) []string {
	paths, _ := kp.scan(data, target, false)
	return paths
}

// FindSafe is Find except that revisiting an ancestor container is an error
// rather than a silent skip.
func (kp *KeyPath) FindSafe(data, target interface{}) ([]string, error) {
	return kp.scan(data, target, true)
}

func (kp *KeyPath) scan(data, target interface{}, safe bool) ([]string, error) {
	f := &finder{
		kp:       kp,
		sep:      kp.snapshot().syntax.property,
		target:   target,
		safe:     safe,
		visiting: map[uintptr]bool{},
	}
	if err := f.walk(data, ""); err != nil {
		return nil, err
	}
	return f.found, nil
}

type finder struct {
	kp       *KeyPath
	sep      byte
	target   interface{}
	safe     bool
	visiting map[uintptr]bool
	found    []string
}

func (f *finder) walk(v interface{}, path string) error {
	if path != "" && matchesTarget(v, f.target) {
		f.found = append(f.found, path)
	}

	switch c := v.(type) {
	case map[string]interface{}:
		id := reflect.ValueOf(c).Pointer()
		if f.visiting[id] {
			if f.safe {
				return ErrCircular
			}
			return nil
		}
		f.visiting[id] = true
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := f.walk(c[k], f.join(path, f.kp.Escape(k))); err != nil {
				return err
			}
		}
		delete(f.visiting, id)

	case []interface{}:
		id := reflect.ValueOf(c).Pointer()
		if f.visiting[id] {
			if f.safe {
				return ErrCircular
			}
			return nil
		}
		f.visiting[id] = true
		for i, el := range c {
			if err := f.walk(el, f.join(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		delete(f.visiting, id)
	}
	return nil
}

func matchesTarget(v, target interface{}) bool {
	return reflect.DeepEqual(v, target)
}

func (f *finder) join(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + string(f.sep) + seg
}

// Find walks data with the package default instance.
func Find(data, target interface{}) []string {
	return std.Find(data, target)
}

// FindSafe walks data, erroring on cycles.
func FindSafe(data, target interface{}) ([]string, error) {
	return std.FindSafe(data, target)
}
