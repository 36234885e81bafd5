package frame

// Buffer accumulates the payload of the frame currently being parsed.
// Cap is fixed for the lifetime of the buffer; the parser rejects any frame
// whose declared length exceeds it before storing a single payload byte.
type Buffer interface {
	Reset()
	Len() int
	Cap() int
	// Append stores one byte and reports false when the buffer is full.
	Append(b byte) bool
	// Bytes returns the stored bytes. The slice is only valid until the
	// next Reset or Append.
	Bytes() []byte
}

// FixedBuffer stores payload bytes in caller supplied storage and never
// allocates.
type FixedBuffer struct {
	buf []byte
	n   int
}

// NewFixedBuffer wraps storage; its length is the capacity.
func NewFixedBuffer(storage []byte) *FixedBuffer {
	return &FixedBuffer{buf: storage}
}

func (f *FixedBuffer) Reset()        { f.n = 0 }
func (f *FixedBuffer) Len() int      { return f.n }
func (f *FixedBuffer) Cap() int      { return len(f.buf) }
func (f *FixedBuffer) Bytes() []byte { return f.buf[:f.n] }

func (f *FixedBuffer) Append(b byte) bool {
	if f.n >= len(f.buf) {
		return false
	}
	f.buf[f.n] = b
	f.n++
	return true
}

// GrowBuffer allocates on demand up to a maximum size. Storage is reused
// across frames once grown.
type GrowBuffer struct {
	buf []byte
	max int
}

// NewGrowBuffer returns a buffer that accepts up to max bytes.
func NewGrowBuffer(max int) *GrowBuffer {
	return &GrowBuffer{max: max}
}

func (g *GrowBuffer) Reset()        { g.buf = g.buf[:0] }
func (g *GrowBuffer) Len() int      { return len(g.buf) }
func (g *GrowBuffer) Cap() int      { return g.max }
func (g *GrowBuffer) Bytes() []byte { return g.buf }

func (g *GrowBuffer) Append(b byte) bool {
	if len(g.buf) >= g.max {
		return false
	}
	g.buf = append(g.buf, b)
	return true
}
