package polycube

import (
	"iter"
	"slices"
	"sort"
	"sync"
)

// shapeSet holds the packed keys of every cube with one shape.
type shapeSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// Hashy is the deduplicating index for one generation level. Cubes are
// bucketed by canonical shape and stored once per point set. Insert is safe
// for concurrent use; inserts into different shapes only contend on the
// brief shape lookup.
type Hashy struct {
	mu      sync.RWMutex
	order   int
	byShape map[XYZ]*shapeSet
}

// New returns an empty index for cubes of the given order.
func New(order int) *Hashy {
	h := &Hashy{}
	h.Init(order)
	return h
}

// Init resets h for a fresh level of the given order.
func (h *Hashy) Init(order int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = order
	h.byShape = make(map[XYZ]*shapeSet)
}

func (h *Hashy) Order() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.order
}

func (h *Hashy) bucket(shape XYZ) *shapeSet {
	h.mu.RLock()
	s, ok := h.byShape[shape]
	h.mu.RUnlock()
	if ok {
		return s
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok = h.byShape[shape]; !ok {
		if h.byShape == nil {
			h.byShape = make(map[XYZ]*shapeSet)
		}
		s = &shapeSet{keys: make(map[string]struct{})}
		h.byShape[shape] = s
	}
	return s
}

// Insert stores c under shape. Inserting a cube already present is a no-op.
// c is copied, so callers may reuse its backing array.
func (h *Hashy) Insert(c Cube, shape XYZ) {
	h.insertKey(c.Key(), shape)
}

func (h *Hashy) insertKey(key string, shape XYZ) {
	s := h.bucket(shape)
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

// Contains reports whether c is stored under shape.
func (h *Hashy) Contains(c Cube, shape XYZ) bool {
	h.mu.RLock()
	s, ok := h.byShape[shape]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok = s.keys[c.Key()]
	return ok
}

// Size returns the number of cubes across all shapes.
func (h *Hashy) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, s := range h.byShape {
		s.mu.Lock()
		total += len(s.keys)
		s.mu.Unlock()
	}
	return total
}

// Shapes returns the shapes in use, in ascending order.
func (h *Hashy) Shapes() []XYZ {
	h.mu.RLock()
	shapes := make([]XYZ, 0, len(h.byShape))
	for shape := range h.byShape {
		shapes = append(shapes, shape)
	}
	h.mu.RUnlock()
	slices.SortFunc(shapes, XYZ.Compare)
	return shapes
}

// BucketSize returns the number of cubes stored under shape.
func (h *Hashy) BucketSize(shape XYZ) int {
	h.mu.RLock()
	s, ok := h.byShape[shape]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// keys returns the sorted keys stored under shape.
func (h *Hashy) keys(shape XYZ) []string {
	h.mu.RLock()
	s, ok := h.byShape[shape]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Cubes returns the cubes stored under shape in ascending order.
func (h *Hashy) Cubes(shape XYZ) []Cube {
	keys := h.keys(shape)
	cubes := make([]Cube, len(keys))
	for i, k := range keys {
		cubes[i] = cubeFromKey(k)
	}
	return cubes
}

// All iterates over every stored cube, shape by shape. The index must not be
// written to while iterating.
func (h *Hashy) All() iter.Seq2[XYZ, Cube] {
	return func(yield func(XYZ, Cube) bool) {
		for _, shape := range h.Shapes() {
			for _, k := range h.keys(shape) {
				if !yield(shape, cubeFromKey(k)) {
					return
				}
			}
		}
	}
}

// Flatten returns every stored cube as one slice, ordered by shape and then
// by cube.
func (h *Hashy) Flatten() []Cube {
	cubes := make([]Cube, 0, h.Size())
	for _, c := range h.All() {
		cubes = append(cubes, c)
	}
	return cubes
}

// Merge inserts every cube of other into h.
func (h *Hashy) Merge(other *Hashy) {
	if other == h {
		return
	}
	for _, shape := range other.Shapes() {
		for _, k := range other.keys(shape) {
			h.insertKey(k, shape)
		}
	}
}
