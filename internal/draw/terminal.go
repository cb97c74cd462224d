package draw

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// maxChunkSize keeps each write under a typical MTU for smooth SSH transmission.
const maxChunkSize = 1400

// FrameWriter collects one terminal frame and sends it in packet-sized
// chunks, so a frame over SSH arrives as a few writes instead of many.
// Positions given to Text are 1-based inside the render area; the origin
// set with SetOrigin centers that area in the terminal.
type FrameWriter struct {
	out   *bufio.Writer
	frame strings.Builder

	originCol, originRow int
	width                int // Text is clipped to this many cells, 0 disables
}

// NewFrameWriter creates a frame writer sending to w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{out: bufio.NewWriterSize(w, 8192)}
}

// SetOrigin places the render area at 0-based terminal offsets and sets
// its width in cells.
func (fw *FrameWriter) SetOrigin(col, row, width int) {
	fw.originCol = col
	fw.originRow = row
	fw.width = width
}

// Open hides the cursor and blanks the terminal before the first frame.
func (fw *FrameWriter) Open() error {
	fw.out.WriteString(ansi.HideCursor)
	fw.out.WriteString(ansi.EraseEntireScreen + ansi.CursorHomePosition)
	return fw.out.Flush()
}

// Close blanks the terminal and gives the cursor back. Any unsent frame is
// discarded.
func (fw *FrameWriter) Close() error {
	fw.frame.Reset()
	fw.out.WriteString(ansi.ResetStyle)
	fw.out.WriteString(ansi.EraseEntireScreen + ansi.CursorHomePosition)
	fw.out.WriteString(ansi.ShowCursor)
	return fw.out.Flush()
}

// BeginFrame starts a new frame that first blanks the screen.
func (fw *FrameWriter) BeginFrame() {
	fw.frame.Reset()
	fw.frame.WriteString(ansi.EraseEntireScreen + ansi.CursorHomePosition)
}

// Write appends raw output (e.g. Canvas.Render) to the frame.
func (fw *FrameWriter) Write(p []byte) (int, error) {
	return fw.frame.Write(p)
}

// Text writes s starting at (col, row) of the render area. Styled text is
// clipped at the right edge of the area.
func (fw *FrameWriter) Text(col, row int, s string) {
	if fw.width > 0 {
		room := fw.width - col + 1
		if room <= 0 {
			return
		}
		if ansi.StringWidth(s) > room {
			s = ansi.Truncate(s, room, "")
		}
	}
	fw.frame.WriteString(ansi.CursorPosition(col+fw.originCol, row+fw.originRow))
	fw.frame.WriteString(s)
}

// Flush sends the frame in chunks of at most maxChunkSize bytes.
func (fw *FrameWriter) Flush() error {
	data := fw.frame.String()
	fw.frame.Reset()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := fw.out.WriteString(data[:n]); err != nil {
			return err
		}
		if err := fw.out.Flush(); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

var _ io.Writer = (*FrameWriter)(nil)

// TermSizeFunc is a function that returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns terminal size from os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// TermSize calls sizeFunc. A PTY that has not reported its window yet
// (non-positive size) counts as 80x24.
func TermSize(sizeFunc TermSizeFunc) (width, height int, err error) {
	width, height, err = sizeFunc()
	if err != nil {
		return 0, 0, err
	}
	if width <= 0 || height <= 0 {
		return 80, 24, nil
	}
	return width, height, nil
}
