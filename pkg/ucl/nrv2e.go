// Package ucl implements the decompression side of the UCL NRV2E format
// (8-bit bit buffer variant), the compressor the Polish vehicle registration
// document generator uses for the payload of its Aztec code.
package ucl

import (
	"errors"
	"fmt"
)

// DefaultMaxOutput bounds the decompressed size when no limit is given.
const DefaultMaxOutput = 1 << 20

var (
	ErrInputOverrun       = errors.New("ucl: input overrun")
	ErrOutputOverrun      = errors.New("ucl: output overrun")
	ErrLookbehindOverrun  = errors.New("ucl: lookbehind overrun")
	ErrInputNotConsumed   = errors.New("ucl: input not consumed")
	errEndOfStreamMissing = fmt.Errorf("%w: end of stream marker missing", ErrInputOverrun)
)

// maxOffset is the largest match offset prefix NRV2E encodes.
const maxOffset = 0xffffff + 3

// NRV2E decompresses NRV2E streams. The zero value uses DefaultMaxOutput.
type NRV2E struct {
	MaxOutput int
}

func (n NRV2E) Name() string { return "nrv2e" }

func (n NRV2E) Decompress(src []byte) ([]byte, error) {
	limit := n.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	return DecompressNRV2E(src, limit)
}

type bitReader struct {
	src []byte
	pos int
	bb  uint32
}

// bit returns the next control bit. Control bytes are fetched from the same
// stream as literals, MSB first, at the moment the first bit is needed.
func (r *bitReader) bit() (uint32, error) {
	if r.bb&0x7f == 0 {
		if r.pos >= len(r.src) {
			return 0, errEndOfStreamMissing
		}
		r.bb = uint32(r.src[r.pos])*2 + 1
		r.pos++
	} else {
		r.bb *= 2
	}
	return (r.bb >> 8) & 1, nil
}

func (r *bitReader) literal() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, ErrInputOverrun
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}

// DecompressNRV2E decodes src, refusing to produce more than maxOut bytes.
// The whole input must be consumed by the end-of-stream marker.
func DecompressNRV2E(src []byte, maxOut int) ([]byte, error) {
	r := &bitReader{src: src}
	dst := make([]byte, 0, min(maxOut, len(src)*4))
	lastOff := uint32(1)

	for {
		for {
			b, err := r.bit()
			if err != nil {
				return nil, err
			}
			if b == 0 {
				break
			}
			if len(dst) >= maxOut {
				return nil, ErrOutputOverrun
			}
			lit, err := r.literal()
			if err != nil {
				return nil, err
			}
			dst = append(dst, lit)
		}

		off := uint32(1)
		for {
			b, err := r.bit()
			if err != nil {
				return nil, err
			}
			off = off*2 + b
			if off > maxOffset {
				return nil, ErrLookbehindOverrun
			}
			if b, err = r.bit(); err != nil {
				return nil, err
			} else if b == 1 {
				break
			}
			if b, err = r.bit(); err != nil {
				return nil, err
			}
			off = (off-1)*2 + b
		}

		var length uint32
		if off == 2 {
			off = lastOff
			b, err := r.bit()
			if err != nil {
				return nil, err
			}
			length = b
		} else {
			lo, err := r.literal()
			if err != nil {
				return nil, err
			}
			off = (off-3)*256 + uint32(lo)
			if off == 0xffffffff {
				break
			}
			length = (off ^ 0xffffffff) & 1
			off >>= 1
			off++
			lastOff = off
		}

		var err error
		if length, err = readLength(r, length, maxOut); err != nil {
			return nil, err
		}
		if off > 0x500 {
			length++
		}

		// a match copies length+1 bytes
		if len(dst)+int(length)+1 > maxOut {
			return nil, ErrOutputOverrun
		}
		if int(off) > len(dst) {
			return nil, ErrLookbehindOverrun
		}
		from := len(dst) - int(off)
		for i := 0; i <= int(length); i++ {
			dst = append(dst, dst[from+i])
		}
	}

	if r.pos < len(src) {
		return nil, fmt.Errorf("%w: %d of %d bytes used", ErrInputNotConsumed, r.pos, len(src))
	}
	return dst, nil
}

func readLength(r *bitReader, flag uint32, maxOut int) (uint32, error) {
	if flag != 0 {
		b, err := r.bit()
		return 1 + b, err
	}

	b, err := r.bit()
	if err != nil {
		return 0, err
	}
	if b == 1 {
		b, err = r.bit()
		return 3 + b, err
	}

	length := uint32(1)
	for {
		if b, err = r.bit(); err != nil {
			return 0, err
		}
		length = length*2 + b
		if int(length) >= maxOut {
			return 0, ErrOutputOverrun
		}
		if b, err = r.bit(); err != nil {
			return 0, err
		} else if b == 1 {
			break
		}
	}
	return length + 3, nil
}
