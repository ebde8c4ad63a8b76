package quarantine

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// blobMagic marks a file as a quarantine envelope. A blob without it is
// never decrypted.
const blobMagic = "SENTRY_Q1"

// xorKey obfuscates quarantined content so that on-access scanners and
// careless tools do not trip over live malware bytes. This is containment,
// not secrecy.
var xorKey = []byte("SENTRY_QUARANTINE_KEY_2024")

// codec seals plaintext into quarantine envelopes: zstd-compressed content
// behind an XOR keystream, prefixed with the magic header. Safe for
// concurrent use.
type codec struct {
	encoders sync.Pool
	decoders sync.Pool
}

func newCodec() *codec {
	return &codec{
		encoders: sync.Pool{
			New: func() any {
				enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
				return enc
			},
		},
		decoders: sync.Pool{
			New: func() any {
				dec, _ := zstd.NewReader(nil)
				return dec
			},
		},
	}
}

// Seal converts plaintext into an envelope blob.
func (c *codec) Seal(plain []byte) ([]byte, error) {
	compressed, err := c.compress(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	blob := make([]byte, 0, len(blobMagic)+len(compressed))
	blob = append(blob, blobMagic...)
	blob = append(blob, xorBytes(compressed)...)
	return blob, nil
}

// Open reverses Seal and returns the original plaintext byte for byte.
func (c *codec) Open(blob []byte) ([]byte, error) {
	if len(blob) < len(blobMagic) || string(blob[:len(blobMagic)]) != blobMagic {
		return nil, ErrBadMagic
	}

	plain, err := c.decompress(xorBytes(blob[len(blobMagic):]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return plain, nil
}

func (c *codec) compress(data []byte) ([]byte, error) {
	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)

	if _, err := enc.Write(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *codec) decompress(data []byte) ([]byte, error) {
	dec := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return io.ReadAll(dec)
}

// xorBytes applies the repeating keystream. The operation is an involution:
// applying it twice restores the input.
func xorBytes(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ xorKey[i%len(xorKey)]
	}
	return out
}
