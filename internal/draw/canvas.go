// Package draw renders game graphics to ANSI terminals using colored half-block pixels.
package draw

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/tomz197/invaders/internal/physics"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Canvas is a color drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int   // Actual terminal columns
	termHeight     int   // Actual terminal rows
	subPixelHeight int   // termHeight * 2
	pixels         []RGB // Flat slice: [y * termWidth + x], zero = empty

	// Scaling from logical to pixel coordinates
	logicalWidth  float64 // Target/logical width
	logicalHeight float64 // Target/logical height (in sub-pixels)
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when the terminal is larger than needed.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	// Reusable buffers to reduce allocations
	renderBuf strings.Builder // Buffer for batching render output
	numBuf    [20]byte        // Scratch buffer for allocation-free integer formatting
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by game objects.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 1 {
		termWidth = 1
	}
	if termHeight < 1 {
		termHeight = 1
	}
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.pixels = make([]RGB, subPixelHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	// Update scale factors
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col RGB) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// pixel returns the color at terminal pixel coordinates.
func (c *Canvas) pixel(x, y int) RGB {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return 0
	}
	return c.pixels[y*c.termWidth+x]
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64, col RGB) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	c.setPixel(px, py, col)
}

// pixelSpan returns the half-open pixel range covered by [lo, hi) in logical units.
func pixelSpan(lo, hi, scale float64) (int, int) {
	start := int(math.Round(lo * scale))
	end := int(math.Round(hi * scale))
	if end <= start {
		end = start + 1 // Always cover at least one pixel
	}
	return start, end
}

// FillRect paints a logical rectangle with a solid color.
func (c *Canvas) FillRect(dst physics.Rect, col RGB) {
	if !col.IsSet() || dst.W <= 0 || dst.H <= 0 {
		return
	}
	x0, x1 := pixelSpan(dst.X, dst.Right(), c.scaleX)
	y0, y1 := pixelSpan(dst.Y, dst.Bottom(), c.scaleY)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.setPixel(px, py, col)
		}
	}
}

// Blit copies the src region of img into the logical rectangle dst,
// scaling with nearest-neighbor sampling. A nil src copies the whole image.
// Transparent source pixels leave the canvas untouched.
func (c *Canvas) Blit(img *Image, src *physics.Rect, dst physics.Rect) {
	if img == nil || dst.W <= 0 || dst.H <= 0 {
		return
	}
	s := img.Bounds()
	if src != nil {
		s = *src
	}
	if s.W <= 0 || s.H <= 0 {
		return
	}

	x0, x1 := pixelSpan(dst.X, dst.Right(), c.scaleX)
	y0, y1 := pixelSpan(dst.Y, dst.Bottom(), c.scaleY)
	spanW := float64(x1 - x0)
	spanH := float64(y1 - y0)

	for py := y0; py < y1; py++ {
		v := (float64(py-y0) + 0.5) / spanH
		sy := int(math.Floor(s.Y + v*s.H))
		for px := x0; px < x1; px++ {
			u := (float64(px-x0) + 0.5) / spanW
			sx := int(math.Floor(s.X + u*s.W))
			if col := img.At(sx, sy); col.IsSet() {
				c.setPixel(px, py, col)
			}
		}
	}
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col RGB) {
	// Scale to pixel coordinates for drawing
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// ColorReset restores default terminal colors and attributes.
const ColorReset = ansi.ResetStyle

// Render outputs the canvas to the writer using colored half-block characters.
// Empty cells are skipped, so the caller clears the screen beforehand.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 8)

	var curFg, curBg RGB // Zero means terminal default

	for row := 0; row < c.termHeight; row++ {
		for col := 0; col < c.termWidth; col++ {
			top := c.pixel(col, row*2)
			bottom := c.pixel(col, row*2+1)

			var ch rune
			var fg, bg RGB
			switch {
			case top.IsSet() && bottom.IsSet() && top == bottom:
				ch, fg = BlockFull, top
			case top.IsSet() && bottom.IsSet():
				ch, fg, bg = BlockUpperHalf, top, bottom
			case top.IsSet():
				ch, fg = BlockUpperHalf, top
			case bottom.IsSet():
				ch, fg = BlockLowerHalf, bottom
			default:
				continue // Skip empty cells
			}

			c.writeCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			if fg != curFg {
				c.writeColor(38, fg)
				curFg = fg
			}
			if bg != curBg {
				if bg.IsSet() {
					c.writeColor(48, bg)
				} else {
					c.renderBuf.WriteString("\033[49m")
				}
				curBg = bg
			}
			c.renderBuf.WriteRune(ch)
		}
	}
	c.renderBuf.WriteString(ColorReset)

	_, err := io.WriteString(w, c.renderBuf.String())
	return err
}

// writeCursor appends a 1-based cursor move.
func (c *Canvas) writeCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

// writeColor appends a 24-bit SGR color; layer is 38 (foreground) or 48 (background).
func (c *Canvas) writeColor(layer int, col RGB) {
	r, g, b := col.Components()
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(layer), 10))
	c.renderBuf.WriteString(";2;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(r), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(g), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(b), 10))
	c.renderBuf.WriteByte('m')
}

// LogicalWidth returns the logical width (target resolution).
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height (target resolution, in sub-pixels).
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
