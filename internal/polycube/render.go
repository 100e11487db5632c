package polycube

import (
	"bufio"
	"io"
)

// Render writes a cube as text, one block of rows per z layer. Occupied cells
// are drawn as '#', empty cells as '.'. Layers are separated by a blank line.
func Render(w io.Writer, c Cube) error {
	norm, shape := c.Normalize()
	bw := bufio.NewWriter(w)
	for z := int8(0); z <= shape[2]; z++ {
		if z > 0 {
			bw.WriteByte('\n')
		}
		for y := int8(0); y <= shape[1]; y++ {
			for x := int8(0); x <= shape[0]; x++ {
				if norm.Contains(XYZ{x, y, z}) {
					bw.WriteByte('#')
				} else {
					bw.WriteByte('.')
				}
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}
