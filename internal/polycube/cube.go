package polycube

import (
	"fmt"
	"slices"
	"strings"
)

// Cube is a set of cells. Cubes held by a Hashy are normalized (minimum
// coordinate 0 on every axis) and sorted.
type Cube []XYZ

// Sort orders the cells of c in place.
func (c Cube) Sort() { slices.SortFunc(c, XYZ.Compare) }

func (c Cube) IsSorted() bool { return slices.IsSortedFunc(c, XYZ.Compare) }

func (c Cube) Clone() Cube { return slices.Clone(c) }

// Compare orders cubes by size first and then by the first differing cell.
func (c Cube) Compare(d Cube) int {
	if len(c) != len(d) {
		if len(c) < len(d) {
			return -1
		}
		return 1
	}
	return slices.CompareFunc(c, d, XYZ.Compare)
}

func (c Cube) Equal(d Cube) bool { return c.Compare(d) == 0 }

// Contains reports whether p is a cell of the sorted cube c.
func (c Cube) Contains(p XYZ) bool {
	_, ok := slices.BinarySearchFunc(c, p, XYZ.Compare)
	return ok
}

// Shape returns the maximum coordinate on each axis. For a normalized cube
// this is its bounding box.
func (c Cube) Shape() XYZ {
	var shape XYZ
	for i, p := range c {
		for a := range p {
			if i == 0 || p[a] > shape[a] {
				shape[a] = p[a]
			}
		}
	}
	return shape
}

// Normalize returns a sorted copy of c shifted so that the minimum coordinate
// on every axis is 0, together with its shape.
func (c Cube) Normalize() (Cube, XYZ) {
	if len(c) == 0 {
		return Cube{}, XYZ{}
	}
	low := c[0]
	for _, p := range c[1:] {
		for a := range p {
			low[a] = min(low[a], p[a])
		}
	}
	out := make(Cube, len(c))
	for i, p := range c {
		out[i] = XYZ{p[0] - low[0], p[1] - low[1], p[2] - low[2]}
	}
	out.Sort()
	return out, out.Shape()
}

// Key packs a normalized cube into a string, one byte per coordinate. Byte
// order of keys of equal length matches Compare for sorted cubes.
func (c Cube) Key() string {
	var b strings.Builder
	b.Grow(3 * len(c))
	for _, p := range c {
		b.WriteByte(byte(p[0]))
		b.WriteByte(byte(p[1]))
		b.WriteByte(byte(p[2]))
	}
	return b.String()
}

// CubeFromKey unpacks a key produced by Key.
func CubeFromKey(key string) (Cube, error) {
	if len(key)%3 != 0 {
		return nil, fmt.Errorf("invalid cube key length %d", len(key))
	}
	return cubeFromKey(key), nil
}

func cubeFromKey(key string) Cube {
	c := make(Cube, len(key)/3)
	for i := range c {
		c[i] = XYZ{int8(key[3*i]), int8(key[3*i+1]), int8(key[3*i+2])}
	}
	return c
}

func (c Cube) String() string {
	parts := make([]string, len(c))
	for i, p := range c {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
