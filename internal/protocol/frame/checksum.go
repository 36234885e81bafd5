package frame

// Checksum is the UBX two byte running sum (8-bit Fletcher). It covers
// class, id, both length bytes and the payload.
type Checksum struct {
	a, b byte
}

// Add folds one byte into the accumulators.
func (c *Checksum) Add(v byte) {
	c.a += v
	c.b += c.a
}

// Write folds p into the accumulators. It never fails.
func (c *Checksum) Write(p []byte) (int, error) {
	for _, v := range p {
		c.a += v
		c.b += c.a
	}
	return len(p), nil
}

// Sum returns ck_a and ck_b in wire order.
func (c *Checksum) Sum() (byte, byte) {
	return c.a, c.b
}

func (c *Checksum) Reset() {
	c.a, c.b = 0, 0
}

// Compute returns the checksum of data, which must start at the class byte.
func Compute(data []byte) (byte, byte) {
	var c Checksum
	_, _ = c.Write(data)
	return c.Sum()
}

// Pack joins a checksum pair into the little-endian u16 it occupies on the wire.
func Pack(a, b byte) uint16 {
	return uint16(a) | uint16(b)<<8
}
