package process

import (
	"io"
	"os"
	"sync"
	"unicode/utf8"
)

const DefaultTailSize = 64 * 1024

// tailBuffer keeps the most recent bytes written to it. Oldest data is
// overwritten once the buffer is full.
type tailBuffer struct {
	mu   sync.Mutex
	buf  []byte
	pos  int
	full bool
}

func newTailBuffer(size int) *tailBuffer {
	if size <= 0 {
		size = DefaultTailSize
	}

	return &tailBuffer{buf: make([]byte, size)}
}

func (t *tailBuffer) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(data)
	for len(data) > 0 {
		copied := copy(t.buf[t.pos:], data)
		data = data[copied:]
		t.pos += copied
		if t.pos == len(t.buf) {
			t.pos = 0
			t.full = true
		}
	}

	return n, nil
}

// Contents returns the buffered bytes oldest first, starting on a character boundary.
func (t *tailBuffer) Contents() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.full {
		out := make([]byte, t.pos)
		copy(out, t.buf[:t.pos])
		return out
	}

	out := make([]byte, len(t.buf))
	n := copy(out, t.buf[t.pos:])
	copy(out[n:], t.buf[:t.pos])

	return trimLeadingPartialRune(out)
}

func trimLeadingPartialRune(data []byte) []byte {
	for i := 0; i < len(data) && i < utf8.UTFMax; i++ {
		if utf8.RuneStart(data[i]) {
			return data[i:]
		}
	}

	return data
}

// readFileTail returns at most size trailing bytes of the file at path.
func readFileTail(path string, size int) []byte {
	if size <= 0 {
		size = DefaultTailSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}

	offset := info.Size() - int64(size)
	if offset < 0 {
		offset = 0
	}

	data, err := io.ReadAll(io.NewSectionReader(f, offset, info.Size()-offset))
	if err != nil {
		return nil
	}
	if offset > 0 {
		return trimLeadingPartialRune(data)
	}

	return data
}
