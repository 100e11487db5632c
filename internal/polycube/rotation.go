package polycube

// NumRotations is the order of the rotation group of the cube.
const NumRotations = 24

// rotation maps output axis i to input axis axes[i]. When mirror[i] is set
// the coordinate is reflected within the shape along that axis. Every entry
// pairs an even permutation with an even number of mirrors (or an odd
// permutation with an odd number), so no entry is a reflection.
type rotation struct {
	axes   [3]int
	mirror [3]bool
}

var rotations = [NumRotations]rotation{
	{[3]int{0, 1, 2}, [3]bool{false, false, false}},
	{[3]int{0, 1, 2}, [3]bool{true, true, false}},
	{[3]int{0, 1, 2}, [3]bool{true, false, true}},
	{[3]int{0, 1, 2}, [3]bool{false, true, true}},
	{[3]int{0, 2, 1}, [3]bool{true, true, true}},
	{[3]int{0, 2, 1}, [3]bool{true, false, false}},
	{[3]int{0, 2, 1}, [3]bool{false, true, false}},
	{[3]int{0, 2, 1}, [3]bool{false, false, true}},
	{[3]int{1, 0, 2}, [3]bool{true, true, true}},
	{[3]int{1, 0, 2}, [3]bool{true, false, false}},
	{[3]int{1, 0, 2}, [3]bool{false, true, false}},
	{[3]int{1, 0, 2}, [3]bool{false, false, true}},
	{[3]int{1, 2, 0}, [3]bool{true, true, false}},
	{[3]int{1, 2, 0}, [3]bool{true, false, true}},
	{[3]int{1, 2, 0}, [3]bool{false, true, true}},
	{[3]int{1, 2, 0}, [3]bool{false, false, false}},
	{[3]int{2, 0, 1}, [3]bool{true, true, false}},
	{[3]int{2, 0, 1}, [3]bool{true, false, true}},
	{[3]int{2, 0, 1}, [3]bool{false, true, true}},
	{[3]int{2, 0, 1}, [3]bool{false, false, false}},
	{[3]int{2, 1, 0}, [3]bool{true, true, true}},
	{[3]int{2, 1, 0}, [3]bool{true, false, false}},
	{[3]int{2, 1, 0}, [3]bool{false, true, false}},
	{[3]int{2, 1, 0}, [3]bool{false, false, true}},
}

// rotateShape permutes shape by rotation i. ok is false when the permuted
// shape is not ascending: such a rotation never yields a canonical cube.
func rotateShape(i int, shape XYZ) (XYZ, bool) {
	r := &rotations[i]
	out := XYZ{shape[r.axes[0]], shape[r.axes[1]], shape[r.axes[2]]}
	return out, out.Sorted()
}

// rotateInto writes the rotation of src into dst, which must have the same
// length. shape is the shape of src before rotation.
func rotateInto(r *rotation, shape XYZ, src, dst Cube) {
	for i, p := range src {
		var q XYZ
		for a := range q {
			in := r.axes[a]
			if r.mirror[a] {
				q[a] = shape[in] - p[in]
			} else {
				q[a] = p[in]
			}
		}
		dst[i] = q
	}
}

// Rotate applies rotation i to cube c whose shape is shape. It returns the
// rotated shape and a freshly allocated, unsorted rotated cube. The rotation
// is rejected (ok false, nil cube) when the rotated shape is not ascending.
func Rotate(i int, shape XYZ, c Cube) (out XYZ, rotated Cube, ok bool) {
	out, ok = rotateShape(i, shape)
	if !ok {
		return out, nil, false
	}
	rotated = make(Cube, len(c))
	rotateInto(&rotations[i], shape, c, rotated)
	return out, rotated, true
}
