package draw

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// countingWriter records the size of every write.
type countingWriter struct {
	bytes.Buffer
	writes []int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return w.Buffer.Write(p)
}

func TestFrameWriterTextUsesOrigin(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter(&out)
	fw.SetOrigin(10, 2, 40)

	fw.BeginFrame()
	fw.Text(3, 4, "HI")
	if err := fw.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "\x1b[2J\x1b[H\x1b[6;13HHI"
	if out.String() != want {
		t.Errorf("frame = %q, want %q", out.String(), want)
	}
}

func TestFrameWriterClipsText(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter(&out)
	fw.SetOrigin(0, 0, 10)

	fw.Text(7, 1, "ABCDEFG")
	fw.Text(11, 1, "gone")
	if err := fw.Flush(); err != nil {
		t.Fatal(err)
	}

	s := out.String()
	if !strings.HasSuffix(s, "ABCD") || strings.Contains(s, "E") {
		t.Errorf("text not clipped to the area: %q", s)
	}
	if strings.Contains(s, "gone") {
		t.Errorf("text outside the area was written: %q", s)
	}
}

func TestFrameWriterFlushesInChunks(t *testing.T) {
	var out countingWriter
	fw := NewFrameWriter(&out)

	payload := strings.Repeat("x", 3*maxChunkSize+10)
	if _, err := fw.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := fw.Flush(); err != nil {
		t.Fatal(err)
	}

	if out.String() != payload {
		t.Fatal("payload changed in transit")
	}
	if len(out.writes) != 4 {
		t.Errorf("writes = %v, want 4 chunks", out.writes)
	}
	for _, n := range out.writes {
		if n > maxChunkSize {
			t.Errorf("chunk of %d bytes exceeds %d", n, maxChunkSize)
		}
	}
}

func TestFrameWriterOpenClose(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter(&out)
	if err := fw.Open(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "\x1b[?25l") {
		t.Errorf("open = %q", out.String())
	}

	out.Reset()
	fw.Text(1, 1, "stale")
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "stale") || !strings.HasSuffix(out.String(), "\x1b[?25h") {
		t.Errorf("close = %q", out.String())
	}
}

func TestTermSizeFallback(t *testing.T) {
	w, h, err := TermSize(func() (int, int, error) { return 0, 0, nil })
	if err != nil || w != 80 || h != 24 {
		t.Errorf("TermSize = %d, %d, %v", w, h, err)
	}
	if _, _, err := TermSize(func() (int, int, error) { return 0, 0, errors.New("no tty") }); err == nil {
		t.Error("expected the size error")
	}
}
