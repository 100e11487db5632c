package polycube

import "slices"

// Inserter receives the canonical cubes produced by an Expander. The cube
// passed to Insert is only valid for the duration of the call.
type Inserter interface {
	Insert(c Cube, shape XYZ)
}

var neighbours = [6]XYZ{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Expander grows cubes by one cell. It keeps scratch buffers between calls
// and must not be shared between goroutines; use one per worker.
type Expander struct {
	base       Cube
	candidates []XYZ
	grown      Cube
	rotated    Cube
	best       Cube
}

func NewExpander() *Expander { return &Expander{} }

// Expand inserts into dst the canonical form of every cube obtained by adding
// one face-adjacent cell to c. It returns the number of candidate cells.
func (e *Expander) Expand(c Cube, dst Inserter) int {
	e.base = append(e.base[:0], c...)
	if !e.base.IsSorted() {
		e.base.Sort()
	}

	e.candidates = e.candidates[:0]
	for _, p := range e.base {
		for _, n := range neighbours {
			e.candidates = append(e.candidates, p.Add(n))
		}
	}
	slices.SortFunc(e.candidates, XYZ.Compare)
	e.candidates = slices.Compact(e.candidates)
	e.candidates = slices.DeleteFunc(e.candidates, e.base.Contains)

	e.grown = resize(e.grown, len(e.base)+1)
	for _, p := range e.candidates {
		// A single new cell extends the box by at most one unit below zero.
		var shift XYZ
		for a := range p {
			if p[a] < 0 {
				shift[a] = 1
			}
		}
		shape := p.Add(shift)
		e.grown[0] = shape
		for i, q := range e.base {
			q = q.Add(shift)
			for a := range q {
				shape[a] = max(shape[a], q[a])
			}
			e.grown[i+1] = q
		}
		best, bestShape := e.canonical(e.grown, shape)
		dst.Insert(best, bestShape)
	}
	return len(e.candidates)
}

// canonical returns the lexicographically greatest sorted rotation of c among
// the rotations that keep the shape ascending. The returned cube aliases an
// internal buffer.
func (e *Expander) canonical(c Cube, shape XYZ) (Cube, XYZ) {
	e.rotated = resize(e.rotated, len(c))
	e.best = resize(e.best, len(c))
	var bestShape XYZ
	found := false
	for i := range rotations {
		out, ok := rotateShape(i, shape)
		if !ok {
			continue
		}
		rotateInto(&rotations[i], shape, c, e.rotated)
		e.rotated.Sort()
		if !found || e.best.Compare(e.rotated) < 0 {
			found = true
			e.best, e.rotated = e.rotated, e.best
			bestShape = out
		}
	}
	return e.best, bestShape
}

// Canonicalize normalizes an arbitrary cube and returns a fresh copy of its
// canonical form together with the canonical shape.
func (e *Expander) Canonicalize(c Cube) (Cube, XYZ) {
	if len(c) == 0 {
		return Cube{}, XYZ{}
	}
	norm, shape := c.Normalize()
	best, bestShape := e.canonical(norm, shape)
	return best.Clone(), bestShape
}

// Expand grows c with a throwaway Expander.
func Expand(c Cube, dst Inserter) int { return NewExpander().Expand(c, dst) }

// Canonicalize returns the canonical form of c.
func Canonicalize(c Cube) (Cube, XYZ) { return NewExpander().Canonicalize(c) }

func resize(c Cube, n int) Cube {
	if cap(c) < n {
		return make(Cube, n)
	}
	return c[:n]
}
