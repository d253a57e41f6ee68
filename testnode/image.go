package testnode

import (
	stdimage "image"
	"image/color"

	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
)

// Color is one of the five colors a TIS-100 image node can paint.
type Color int

const (
	COLOR_UNIMPLEMENTED Color = iota
	BLACK
	DARK_GREY
	BRIGHT_GREY
	WHITE
	RED
	COLOR_MAX
)

// colorFromValue maps a raw TIS-100 integer to a Color; anything outside
// 1..4 (including negative reset markers, which never reach here) is Black.
func colorFromValue(value int) Color {
	switch value {
	case 1:
		return DARK_GREY
	case 2:
		return BRIGHT_GREY
	case 3:
		return WHITE
	case 4:
		return RED
	default:
		return BLACK
	}
}

// NRGBA returns the display color for c.
func (c Color) NRGBA() color.NRGBA {
	switch c {
	case DARK_GREY:
		return color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	case BRIGHT_GREY:
		return color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}
	case WHITE:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	case RED:
		return color.NRGBA{R: 0xd0, G: 0x1f, B: 0x1f, A: 0xff}
	default:
		return color.NRGBA{A: 0xff}
	}
}

// imageMode tracks whether the next write is a coordinate or a color.
type imageMode int

const (
	moveMode imageMode = iota
	paintMode
)

// canvas is a width×height grid of Color, written through a simple
// position cursor: two Move writes set a (row, col) target, then every
// subsequent Paint write advances the column by one until a negative value
// resets the cursor to Move mode.
type canvas struct {
	width, height int
	data          []Color
	mode          imageMode
	row, col      int
	haveRow       bool
	offset        int
}

func newCanvas(width, height int) *canvas {
	data := make([]Color, width*height)
	for i := range data {
		data[i] = BLACK
	}
	return &canvas{width: width, height: height, data: data, mode: moveMode}
}

// write applies one value under the TIS-100 image-node protocol: negative
// resets to Move mode; the first two non-negative Move writes set the
// target row and column; every write after that paints colorFromValue(v)
// at (row, col+offset) and increments offset.
func (c *canvas) write(value int) {
	if value < 0 {
		c.mode = moveMode
		c.haveRow = false
		c.offset = 0
		return
	}

	if c.mode == moveMode {
		if !c.haveRow {
			c.row = value
			c.haveRow = true
			return
		}
		c.col = value
		c.mode = paintMode
		return
	}

	rowOff := c.row * c.width
	if rowOff >= 0 && rowOff < c.width*c.height {
		col := c.col + c.offset
		if col >= 0 && col < c.width {
			c.data[rowOff+col] = colorFromValue(value)
		}
	}
	c.offset++
}

func (c *canvas) equal(other *canvas) bool {
	if c.width != other.width || c.height != other.height {
		return false
	}
	for i := range c.data {
		if c.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// NRGBA renders the canvas as a standard library image for saving or
// display.
func (c *canvas) NRGBA() *stdimage.NRGBA {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, c.width, c.height))
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			img.SetNRGBA(x, y, c.data[y*c.width+x].NRGBA())
		}
	}
	return img
}

// ImageNode reads values from its UP port into a canvas and judges it
// against a reference canvas. Unlike OutputNode, an image node never fails
// outright — it simply reports Testing until every pixel matches.
type ImageNode struct {
	expected *canvas
	actual   *canvas
}

// NewImageNode constructs an ImageNode with the given reference pixels,
// each a Color value (0-4) in row-major order; len(expected) must equal
// width*height.
func NewImageNode(expected []int, width, height int) *ImageNode {
	ref := newCanvas(width, height)
	for i, v := range expected {
		ref.data[i] = colorFromValue(v)
	}
	return &ImageNode{expected: ref, actual: newCanvas(width, height)}
}

// Step implements node.Node.
func (n *ImageNode) Step(v *iobus.View) {
	if val, ok := v.Read(core.UP); ok {
		n.actual.write(val)
	}
}

// Sync implements node.Node. An image node never writes.
func (n *ImageNode) Sync(v *iobus.View) {}

// IsStalled implements node.Node.
func (n *ImageNode) IsStalled() bool { return true }

// State reports Passed once every pixel matches the reference image, and
// Testing otherwise; an image node has no Failed state.
func (n *ImageNode) State() State {
	if n.actual.equal(n.expected) {
		return PASSED
	}
	return TESTING
}

// Image renders the node's current canvas as a standard library image.
func (n *ImageNode) Image() *stdimage.NRGBA {
	return n.actual.NRGBA()
}
