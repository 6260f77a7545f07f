package jtree

import (
	"fmt"
	"strconv"
	"strings"
)

// GetPath traverses a dotted path ("a.b.c", "items.0.name") into v.
// Numeric segments index arrays. Returns (Null{}, false) if any segment is
// missing or the container type does not match - absence is not an error.
func GetPath(v Value, path string) (Value, bool) {
	if path == "" {
		return v, v != nil
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case Object:
			next, ok := c.Get(seg)
			if !ok {
				return Null{}, false
			}
			cur = next
		case Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return Null{}, false
			}
			cur = c[idx]
		default:
			return Null{}, false
		}
	}
	return cur, true
}

// SetPath writes val at a dotted path under root, creating intermediate
// objects for missing segments. A scalar sitting where a container is
// needed is overwritten with a fresh object. Numeric segments index into
// existing arrays, extending them with nulls when the index is past the
// end.
//
// The root must be an Object: paths address named fields first.
func SetPath(root Object, path string, val Value) error {
	if path == "" {
		return fmt.Errorf("set path: empty path")
	}
	segs := strings.Split(path, ".")
	return setInObject(root, segs, val)
}

func setInObject(obj Object, segs []string, val Value) error {
	key := segs[0]
	if len(segs) == 1 {
		obj.Set(key, val)
		return nil
	}
	child, ok := obj.Get(key)
	if !ok {
		child = containerFor(segs[1])
		obj.Set(key, child)
	}
	switch c := child.(type) {
	case Object:
		return setInObject(c, segs[1:], val)
	case Array:
		updated, err := setInArray(c, segs[1:], val)
		if err != nil {
			return err
		}
		obj.Set(key, updated)
		return nil
	default:
		// Scalar collision: replace with an object and keep descending.
		repl := NewObject()
		obj.Set(key, repl)
		return setInObject(repl, segs[1:], val)
	}
}

func setInArray(arr Array, segs []string, val Value) (Array, error) {
	idx, err := strconv.Atoi(segs[0])
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("set path: segment %q is not a valid array index", segs[0])
	}
	for len(arr) <= idx {
		arr = append(arr, Null{})
	}
	if len(segs) == 1 {
		arr[idx] = val
		return arr, nil
	}
	child := arr[idx]
	switch c := child.(type) {
	case Object:
		return arr, setInObject(c, segs[1:], val)
	case Array:
		updated, err := setInArray(c, segs[1:], val)
		if err != nil {
			return nil, err
		}
		arr[idx] = updated
		return arr, nil
	default:
		repl := NewObject()
		arr[idx] = repl
		return arr, setInObject(repl, segs[1:], val)
	}
}

// containerFor picks the container to create for a missing intermediate
// segment. Intermediate containers are always objects: a numeric path
// segment only indexes arrays that already exist.
func containerFor(nextSeg string) Value {
	_ = nextSeg
	return NewObject()
}
