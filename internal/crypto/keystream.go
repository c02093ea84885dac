package crypto

import (
	"crypto/sha256"
	"encoding/binary"
)

const blockSize = sha256.Size

// Keystream returns n keystream bytes for the given stream key.
// Block i is SHA-256(key || uint64be(i)); blocks are concatenated and the
// last one truncated.
func Keystream(key []byte, n int) []byte {
	out := make([]byte, n)
	fill(key, out, func(dst []byte, block []byte) {
		copy(dst, block)
	})
	return out
}

// XORKeystream sets dst[i] = src[i] ^ keystream[i] for every byte of src.
// dst must be at least as long as src; dst and src may overlap entirely.
func XORKeystream(dst, src, key []byte) {
	if len(dst) < len(src) {
		panic("crypto: output smaller than input")
	}
	copy(dst, src)
	fill(key, dst[:len(src)], func(d []byte, block []byte) {
		for i := range d {
			d[i] ^= block[i]
		}
	})
}

func fill(key, out []byte, apply func(dst, block []byte)) {
	buf := make([]byte, len(key)+8)
	copy(buf, key)
	defer ClearBytes(buf)

	var counter uint64
	for off := 0; off < len(out); off += blockSize {
		binary.BigEndian.PutUint64(buf[len(key):], counter)
		block := sha256.Sum256(buf)
		end := off + blockSize
		if end > len(out) {
			end = len(out)
		}
		apply(out[off:end], block[:end-off])
		ClearBytes(block[:])
		counter++
	}
}
