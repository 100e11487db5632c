package polycube

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashyInsertIgnoresDuplicates(t *testing.T) {
	t.Parallel()

	h := New(2)
	c := Cube{{0, 0, 0}, {0, 0, 1}}
	h.Insert(c, XYZ{0, 0, 1})
	h.Insert(c.Clone(), XYZ{0, 0, 1})

	assert.Equal(t, 1, h.Size())
	assert.Equal(t, 1, h.BucketSize(XYZ{0, 0, 1}))
	assert.Equal(t, 0, h.BucketSize(XYZ{0, 1, 1}))
	assert.True(t, h.Contains(c, XYZ{0, 0, 1}))
	assert.False(t, h.Contains(c, XYZ{0, 1, 1}))
}

func TestHashyInsertCopiesCube(t *testing.T) {
	t.Parallel()

	h := New(2)
	c := Cube{{0, 0, 0}, {0, 0, 1}}
	h.Insert(c, XYZ{0, 0, 1})
	c[1] = XYZ{0, 1, 0}

	assert.Equal(t, []Cube{{{0, 0, 0}, {0, 0, 1}}}, h.Cubes(XYZ{0, 0, 1}))
}

func TestHashyInitResets(t *testing.T) {
	t.Parallel()

	h := grow(t, 4)
	require.Equal(t, 8, h.Size())

	h.Init(5)
	assert.Equal(t, 0, h.Size())
	assert.Equal(t, 5, h.Order())
	assert.Empty(t, h.Shapes())
}

func TestHashyConcurrentInsert(t *testing.T) {
	t.Parallel()

	source := grow(t, 5)
	cubes := source.Flatten()
	shapes := make([]XYZ, len(cubes))
	for i, c := range cubes {
		shapes[i] = c.Shape()
	}

	h := New(5)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, c := range cubes {
				h.Insert(c, shapes[i])
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, source.Size(), h.Size())
	assert.Equal(t, source.Flatten(), h.Flatten())
}

func TestHashyMerge(t *testing.T) {
	t.Parallel()

	full := grow(t, 5)
	cubes := full.Flatten()

	a, b := New(5), New(5)
	for i, c := range cubes {
		// Overlap in the middle third so duplicates must collapse.
		if i < 2*len(cubes)/3 {
			a.Insert(c, c.Shape())
		}
		if i >= len(cubes)/3 {
			b.Insert(c, c.Shape())
		}
	}

	a.Merge(b)
	a.Merge(a)
	assert.Equal(t, full.Size(), a.Size())
	assert.Equal(t, cubes, a.Flatten())
}

func TestHashyAllStopsEarly(t *testing.T) {
	t.Parallel()

	h := grow(t, 5)
	seen := 0
	for range h.All() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func BenchmarkExpandOrder7(b *testing.B) {
	base := grow(b, 6).Flatten()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := New(7)
		e := NewExpander()
		for _, c := range base {
			e.Expand(c, h)
		}
		if h.Size() != 1023 {
			b.Fatalf("got %d cubes, want 1023", h.Size())
		}
	}
}
