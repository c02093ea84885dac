package textlock

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/illarion/securelock/internal/crypto"
)

const (
	formatVersion = 1
	headerSize    = 1 + 4
	overhead      = headerSize + crypto.TagSize
)

var encoding = base64.RawURLEncoding.Strict()

type header struct {
	version    byte
	iterations uint32
}

func (h header) bytes() []byte {
	b := make([]byte, headerSize)
	b[0] = h.version
	binary.BigEndian.PutUint32(b[1:], h.iterations)
	return b
}

// sealed is a decoded locked value
type sealed struct {
	header header
	raw    []byte // header bytes as they appeared
	tag    []byte
	cipher []byte
}

func encode(hdr, tag, cipher []byte) string {
	buf := make([]byte, 0, len(hdr)+len(tag)+len(cipher))
	buf = append(buf, hdr...)
	buf = append(buf, tag...)
	buf = append(buf, cipher...)
	return encoding.EncodeToString(buf)
}

// decode parses a locked value without touching any key material
func decode(locked string) (*sealed, error) {
	// The decoder skips CR and LF, which would make the encoding ambiguous.
	if strings.ContainsAny(locked, "\r\n") {
		return nil, fmt.Errorf("%w: contains line breaks", ErrMalformedLockedValue)
	}

	data, err := encoding.DecodeString(locked)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLockedValue, err)
	}
	if len(data) < overhead {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte minimum", ErrMalformedLockedValue, len(data), overhead)
	}

	hdr := header{
		version:    data[0],
		iterations: binary.BigEndian.Uint32(data[1:headerSize]),
	}
	if hdr.version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedLockedValue, hdr.version)
	}
	if err := checkIterations(int64(hdr.iterations)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLockedValue, err)
	}

	return &sealed{
		header: hdr,
		raw:    data[:headerSize],
		tag:    data[headerSize:overhead],
		cipher: data[overhead:],
	}, nil
}

func checkIterations(n int64) error {
	if n < crypto.MinIterations || n > crypto.MaxIterations {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidIterations, n, crypto.MinIterations, crypto.MaxIterations)
	}
	return nil
}
