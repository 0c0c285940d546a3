package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// CompressionThreshold is the closure length above which records are
// compressed. At or below it the raw encoding is already compact and gzip
// overhead would dominate.
const CompressionThreshold = 256

// Record layout: one flag byte, a little-endian uint32 element count, then
// the payload. Raw payloads are the elements as little-endian int64s;
// compressed payloads are a gzip stream of the same bytes after a
// byte-plane shuffle.
const (
	flagRaw  byte = 0
	flagGzip byte = 1

	headerSize = 5
)

// Encode serializes a sorted closure into its binary record. Closures
// longer than CompressionThreshold are byte-shuffled and gzip-compressed;
// the shuffle groups the high-order bytes of neighbouring ids, which are
// near-identical in a dense sorted list, so gzip finds long runs.
func Encode(ancestors []int64) ([]byte, error) {
	raw := make([]byte, len(ancestors)*8)
	for i, v := range ancestors {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(v))
	}

	if len(ancestors) <= CompressionThreshold {
		out := make([]byte, headerSize+len(raw))
		out[0] = flagRaw
		binary.LittleEndian.PutUint32(out[1:], uint32(len(ancestors)))
		copy(out[headerSize:], raw)
		return out, nil
	}

	var buf bytes.Buffer
	buf.WriteByte(flagGzip)
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(ancestors)))
	buf.Write(count[:])

	zw, err := gzip.NewWriterLevel(&buf, 6)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(shuffle(raw, len(ancestors))); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a binary record back into a closure. It rejects
// truncated records, unknown flags, and payloads whose length disagrees
// with the declared element count.
func Decode(data []byte) ([]int64, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("record truncated: %d bytes", len(data))
	}
	flag := data[0]
	n := int(binary.LittleEndian.Uint32(data[1:]))
	payload := data[headerSize:]

	var raw []byte
	switch flag {
	case flagRaw:
		if len(payload) != n*8 {
			return nil, fmt.Errorf("record payload is %d bytes, want %d", len(payload), n*8)
		}
		raw = payload
	case flagGzip:
		zr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("open compressed record: %w", err)
		}
		raw, err = io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("read compressed record: %w", err)
		}
		if len(raw) != n*8 {
			return nil, fmt.Errorf("record inflates to %d bytes, want %d", len(raw), n*8)
		}
		raw = unshuffle(raw, n)
	default:
		return nil, fmt.Errorf("unknown record flag %#x", flag)
	}

	ancestors := make([]int64, n)
	for i := range ancestors {
		ancestors[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return ancestors, nil
}

// shuffle rearranges n little-endian int64s from value-major to byte-plane
// order: all first bytes, then all second bytes, and so on.
func shuffle(raw []byte, n int) []byte {
	out := make([]byte, len(raw))
	for i := 0; i < n; i++ {
		for p := 0; p < 8; p++ {
			out[p*n+i] = raw[i*8+p]
		}
	}
	return out
}

// unshuffle is the inverse of shuffle.
func unshuffle(planes []byte, n int) []byte {
	out := make([]byte, len(planes))
	for i := 0; i < n; i++ {
		for p := 0; p < 8; p++ {
			out[i*8+p] = planes[p*n+i]
		}
	}
	return out
}
