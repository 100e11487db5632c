// Package polycube holds the geometry of polycube enumeration: lattice
// coordinates, cubes, the 24 proper rotations of the cube, the expansion step
// that grows a cube by one cell, and the Hashy index that deduplicates
// canonical cubes of one order.
package polycube

import "fmt"

// XYZ is a lattice coordinate. Stored cubes only contain non-negative
// coordinates; -1 appears transiently while a cube is being grown.
//
// XYZ is also used for a cube's shape, which holds the maximum coordinate on
// each axis of a normalized cube.
type XYZ [3]int8

func (p XYZ) X() int8 { return p[0] }
func (p XYZ) Y() int8 { return p[1] }
func (p XYZ) Z() int8 { return p[2] }

// Add returns the component-wise sum of p and q.
func (p XYZ) Add(q XYZ) XYZ {
	return XYZ{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Compare orders coordinates lexicographically by (x, y, z).
func (p XYZ) Compare(q XYZ) int {
	for i := range p {
		if p[i] != q[i] {
			if p[i] < q[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (p XYZ) Less(q XYZ) bool { return p.Compare(q) < 0 }

// Sorted reports whether x <= y <= z, the invariant of every bucket shape.
func (p XYZ) Sorted() bool {
	return p[0] <= p[1] && p[1] <= p[2]
}

func (p XYZ) String() string {
	return fmt.Sprintf("(%d %d %d)", p[0], p[1], p[2])
}
