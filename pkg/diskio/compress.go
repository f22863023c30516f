// Package diskio persists histograms and miss ratio curves to disk, one
// artifact per file, each wrapped in a pluggable compression codec.
package diskio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor encodes and decodes whole byte buffers. Implementations
// must round-trip any input exactly.
type Compressor interface {
	Encode(raw []byte) ([]byte, error)
	Decode(encoded []byte) ([]byte, error)
	// Extension is a filename suffix naming this codec, including the
	// leading dot; "" for None. The artifact writers do not append it
	// to the path they are given.
	Extension() string
}

// None is the identity codec: Encode and Decode both return their
// input unchanged (a copy, so callers may mutate freely).
func None() Compressor { return noneCodec{} }

// S2 wraps klauspost/compress/s2, a fork of Snappy tuned for higher
// throughput; good default when artifacts are read far more often
// than written.
func S2() Compressor { return s2Codec{} }

// LZ4 wraps pierrec/lz4/v4, favoring lower CPU cost per byte at some
// expense of ratio versus S2 or Zstd.
func LZ4() Compressor { return lz4Codec{} }

// Zstd wraps klauspost/compress/zstd at the given encoder level
// (zstd.SpeedFastest through zstd.SpeedBestCompression); best ratio of
// the three, at higher CPU cost, appropriate for archived histograms
// that are written once and read rarely.
func Zstd(level zstd.EncoderLevel) Compressor { return zstdCodec{level: level} }

type noneCodec struct{}

func (noneCodec) Encode(raw []byte) ([]byte, error) {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (noneCodec) Decode(encoded []byte) ([]byte, error) {
	out := make([]byte, len(encoded))
	copy(out, encoded)
	return out, nil
}

func (noneCodec) Extension() string { return "" }

type s2Codec struct{}

func (s2Codec) Encode(raw []byte) ([]byte, error) { return s2.Encode(nil, raw), nil }

func (s2Codec) Decode(encoded []byte) ([]byte, error) {
	out, err := s2.Decode(nil, encoded)
	if err != nil {
		return nil, fmt.Errorf("s2 decode: %w", err)
	}
	return out, nil
}

func (s2Codec) Extension() string { return ".s2" }

type lz4Codec struct{}

func (lz4Codec) Encode(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("lz4 encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decode(encoded []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(encoded))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lz4 decode: %w", err)
	}
	return out, nil
}

func (lz4Codec) Extension() string { return ".lz4" }

type zstdCodec struct{ level zstd.EncoderLevel }

func (c zstdCodec) Encode(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func (zstdCodec) Decode(encoded []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

func (c zstdCodec) Extension() string { return ".zst" }
