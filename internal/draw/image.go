package draw

import "github.com/tomz197/invaders/internal/physics"

// Image is a small in-memory sprite. Unset pixels are transparent.
type Image struct {
	Width  int
	Height int
	Pix    []RGB // Row-major: [y*Width + x]
}

// NewImage allocates a transparent image.
func NewImage(width, height int) *Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]RGB, width*height),
	}
}

// ImageFromArt builds an image from rows of text. Each rune is looked up in
// palette; runes without an entry are transparent. Short rows are padded.
func ImageFromArt(art []string, palette map[rune]RGB) *Image {
	width := 0
	for _, row := range art {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}
	img := NewImage(width, len(art))
	for y, row := range art {
		for x, r := range []rune(row) {
			if c, ok := palette[r]; ok {
				img.Set(x, y, c)
			}
		}
	}
	return img
}

// At returns the pixel at (x, y), or the unset color outside the image.
func (img *Image) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return 0
	}
	return img.Pix[y*img.Width+x]
}

// Set writes a pixel; out-of-range writes are ignored.
func (img *Image) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return
	}
	img.Pix[y*img.Width+x] = c
}

// Bounds returns the full source rectangle of the image.
func (img *Image) Bounds() physics.Rect {
	return physics.Rect{W: float64(img.Width), H: float64(img.Height)}
}

// Surface is the drawing target game objects render onto.
// Coordinates are logical viewport units.
type Surface interface {
	// Blit copies the src region of img (the whole image when src is nil)
	// scaled into dst.
	Blit(img *Image, src *physics.Rect, dst physics.Rect)
	// FillRect paints dst with a solid color.
	FillRect(dst physics.Rect, c RGB)
	// SetFloat sets a single pixel.
	SetFloat(x, y float64, c RGB)
	// DrawLine draws a one pixel wide line.
	DrawLine(p1, p2 Point, c RGB)
}

// Ensure Canvas satisfies Surface.
var _ Surface = (*Canvas)(nil)
