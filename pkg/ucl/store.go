package ucl

// streamWriter packs control bits MSB first into a byte reserved at the
// moment the first bit of a group is written, which is where the decoder
// looks for it.
type streamWriter struct {
	out []byte
	pos int
	n   int
}

func (w *streamWriter) bit(b uint32) {
	if w.n == 0 {
		w.pos = len(w.out)
		w.out = append(w.out, 0)
	}
	if b != 0 {
		w.out[w.pos] |= 0x80 >> w.n
	}
	w.n = (w.n + 1) % 8
}

// prefix writes t in the interleaved gamma code used for match offsets.
func (w *streamWriter) prefix(t uint32) {
	groups := [][]uint32{{t & 1, 1}}
	for m := t >> 1; m != 1; {
		e := m & 1
		a := m>>1 + 1
		groups = append(groups, []uint32{a & 1, 0, e})
		m = a >> 1
	}
	for i := len(groups) - 1; i >= 0; i-- {
		for _, b := range groups[i] {
			w.bit(b)
		}
	}
}

func (w *streamWriter) literals(p []byte) {
	for _, c := range p {
		w.bit(1)
		w.out = append(w.out, c)
	}
}

func (w *streamWriter) end() []byte {
	w.bit(0)
	w.prefix(maxOffset)
	w.out = append(w.out, 0xff)
	return w.out
}

// Store wraps p in a valid NRV2E stream made of literals only. The result is
// about 1/8 larger than p and decodes with any NRV2E decompressor.
func Store(p []byte) []byte {
	w := &streamWriter{out: make([]byte, 0, len(p)+len(p)/8+8)}
	w.literals(p)
	return w.end()
}
