package cache

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycubes/internal/polycube"
)

// buildLevel enumerates the level of the given order directly.
func buildLevel(t testing.TB, order int) *polycube.Hashy {
	t.Helper()
	h := polycube.New(1)
	h.Insert(polycube.Cube{{0, 0, 0}}, polycube.XYZ{})
	for k := 2; k <= order; k++ {
		next := polycube.New(k)
		e := polycube.NewExpander()
		for _, c := range h.All() {
			e.Expand(c, next)
		}
		h = next
	}
	return h
}

// assertSameLevel checks total and per-shape counts and membership.
func assertSameLevel(t *testing.T, want, got *polycube.Hashy) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Order(), got.Order())
	assert.Equal(t, want.Size(), got.Size())
	require.Equal(t, want.Shapes(), got.Shapes())
	for _, shape := range want.Shapes() {
		assert.Equal(t, want.BucketSize(shape), got.BucketSize(shape), "bucket %v", shape)
	}
	assert.Equal(t, want.Flatten(), got.Flatten())
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	for _, order := range []int{1, 2, 4, 6} {
		level := buildLevel(t, order)

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, level))

		got, err := Decode(&buf)
		require.NoError(t, err, "order %d", order)
		assertSameLevel(t, level, got)
	}
}

func TestCodecEmptyIndex(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, polycube.New(7)))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Order())
	assert.Equal(t, 0, got.Size())
}

func TestCodecLayout(t *testing.T) {
	t.Parallel()

	h := polycube.New(2)
	h.Insert(polycube.Cube{{0, 0, 0}, {0, 0, 1}}, polycube.XYZ{0, 0, 1})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, h))

	want := []byte("PCUB")
	want = binary.LittleEndian.AppendUint32(want, 2)
	want = binary.LittleEndian.AppendUint64(want, 1)
	want = append(want, 0, 0, 1)
	want = binary.LittleEndian.AppendUint64(want, 1)
	want = binary.LittleEndian.AppendUint32(want, 2)
	want = append(want, 0, 0, 0, 0, 0, 1)
	assert.Equal(t, want, buf.Bytes())
}

func TestDecodeCorrupt(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, buildLevel(t, 4)))
	valid := buf.Bytes()

	// Offset of the first cube's points: magic, order, shape count, shape,
	// cube count, point count.
	firstPoint := 4 + 4 + 8 + 3 + 8 + 4

	tests := []struct {
		name string
		data func() []byte
	}{
		{name: "empty", data: func() []byte { return nil }},
		{name: "bad magic", data: func() []byte {
			d := bytes.Clone(valid)
			copy(d, "NOPE")
			return d
		}},
		{name: "truncated", data: func() []byte { return valid[:len(valid)-5] }},
		{name: "unsorted shape", data: func() []byte {
			d := bytes.Clone(valid)
			d[16], d[18] = 5, 0
			return d
		}},
		{name: "wrong point count", data: func() []byte {
			d := bytes.Clone(valid)
			binary.LittleEndian.PutUint32(d[firstPoint-4:], 3)
			return d
		}},
		{name: "negative coordinate", data: func() []byte {
			d := bytes.Clone(valid)
			d[firstPoint] = 0xff
			return d
		}},
		{name: "cube outside shape", data: func() []byte {
			d := bytes.Clone(valid)
			d[firstPoint+3*4-1] = 100
			return d
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data()))
			assert.ErrorIs(t, err, errCorrupt)
		})
	}
}
