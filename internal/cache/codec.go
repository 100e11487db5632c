package cache

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"polycubes/internal/polycube"
)

// Binary layout, little endian:
//
//	magic   [4]byte "PCUB"
//	order   uint32
//	shapes  uint64
//	per shape:
//	    shape   [3]uint8   maximum coordinate per axis
//	    cubes   uint64
//	    per cube:
//	        points  uint32
//	        points × [3]uint8
const magic = "PCUB"

// maxCoord bounds every stored coordinate; cubes are normalized int8 cells.
const maxCoord = 127

var errCorrupt = errors.New("corrupt cache data")

// Encode writes h to w.
func Encode(w io.Writer, h *polycube.Hashy) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(magic); err != nil {
		return err
	}

	shapes := h.Shapes()
	header := binary.LittleEndian.AppendUint32(nil, uint32(h.Order()))
	header = binary.LittleEndian.AppendUint64(header, uint64(len(shapes)))
	if _, err := bw.Write(header); err != nil {
		return err
	}

	buf := make([]byte, 0, 64)
	for _, shape := range shapes {
		cubes := h.Cubes(shape)
		buf = append(buf[:0], byte(shape[0]), byte(shape[1]), byte(shape[2]))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(cubes)))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
		for _, c := range cubes {
			buf = binary.LittleEndian.AppendUint32(buf[:0], uint32(len(c)))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
			if _, err := bw.WriteString(c.Key()); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Decode reads an index written by Encode. Any structural problem is
// reported as an error wrapping errCorrupt.
func Decode(r io.Reader) (*polycube.Hashy, error) {
	br := bufio.NewReader(r)

	head := make([]byte, len(magic)+4+8)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("%w: header: %v", errCorrupt, err)
	}
	if string(head[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", errCorrupt, head[:len(magic)])
	}
	order := binary.LittleEndian.Uint32(head[4:])
	numShapes := binary.LittleEndian.Uint64(head[8:])
	if order > maxCoord+1 {
		return nil, fmt.Errorf("%w: order %d out of range", errCorrupt, order)
	}

	h := polycube.New(int(order))
	bucket := make([]byte, 3+8)
	count := make([]byte, 4)
	points := make([]byte, 0, 3*order)
	for s := uint64(0); s < numShapes; s++ {
		if _, err := io.ReadFull(br, bucket); err != nil {
			return nil, fmt.Errorf("%w: shape %d: %v", errCorrupt, s, err)
		}
		shape := polycube.XYZ{int8(bucket[0]), int8(bucket[1]), int8(bucket[2])}
		if bucket[0] > maxCoord || bucket[1] > maxCoord || bucket[2] > maxCoord || !shape.Sorted() {
			return nil, fmt.Errorf("%w: invalid shape %v", errCorrupt, shape)
		}

		numCubes := binary.LittleEndian.Uint64(bucket[3:])
		for i := uint64(0); i < numCubes; i++ {
			if _, err := io.ReadFull(br, count); err != nil {
				return nil, fmt.Errorf("%w: cube %d of %v: %v", errCorrupt, i, shape, err)
			}
			n := binary.LittleEndian.Uint32(count)
			if n != order {
				return nil, fmt.Errorf("%w: cube of %d points in a level of order %d", errCorrupt, n, order)
			}
			points = points[:3*n]
			if _, err := io.ReadFull(br, points); err != nil {
				return nil, fmt.Errorf("%w: cube %d of %v: %v", errCorrupt, i, shape, err)
			}
			for _, b := range points {
				if b > maxCoord {
					return nil, fmt.Errorf("%w: negative coordinate in cube %d of %v", errCorrupt, i, shape)
				}
			}
			c, err := polycube.CubeFromKey(string(points))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errCorrupt, err)
			}
			if !c.IsSorted() {
				return nil, fmt.Errorf("%w: cube %v is not sorted", errCorrupt, c)
			}
			if c.Shape() != shape {
				return nil, fmt.Errorf("%w: cube %v does not fit shape %v", errCorrupt, c, shape)
			}
			h.Insert(c, shape)
		}
	}
	return h, nil
}
