// Package trace reads cache-access trace files in the two binary
// record formats the runner accepts, yielding the key stream the
// engines consume.
package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Variant selects a trace file's record layout.
type Variant int

const (
	// VariantA is 25 bytes/record: timestamp_ms u64 | command u8
	// (0=get,1=set) | key u64 | size u32 | ttl_s u32. Only command==0
	// (get) records are read events; ttl_s==0 means no TTL.
	VariantA Variant = iota
	// VariantB is 20 bytes/record: timestamp_s u32 | key u64 | size u32
	// | eviction_time_s u32. Every record is a read; ttl is
	// eviction_time - timestamp.
	VariantB
)

func (v Variant) recordSize() int {
	switch v {
	case VariantA:
		return 25
	case VariantB:
		return 20
	default:
		return 0
	}
}

// ErrTruncated is returned when a trace file's length is not a whole
// multiple of its variant's record size, or ends mid-record.
var ErrTruncated = errors.New("trace: truncated record")

// Record is one normalized read event, regardless of source variant.
type Record struct {
	TimestampMS uint64
	Key         uint64
	Size        uint32
	TTLSeconds  uint32 // 0 means no TTL
}

// ReadAll reads every read-event record from path using the given
// variant, entirely into memory. Suitable for traces that comfortably
// fit in RAM; for larger files use Open, which memory-maps instead.
func ReadAll(path string, v Variant) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	defer f.Close()
	return decodeAll(f, v)
}

func decodeAll(r io.Reader, v Variant) ([]Record, error) {
	recSize := v.recordSize()
	if recSize == 0 {
		return nil, fmt.Errorf("trace: unknown variant %d", v)
	}
	buf := make([]byte, recSize)
	var out []Record
	for {
		_, err := io.ReadFull(r, buf)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		if err != nil {
			return nil, fmt.Errorf("trace: read record: %w", err)
		}
		rec, ok := decodeRecord(buf, v)
		if ok {
			out = append(out, rec)
		}
	}
}

func decodeRecord(buf []byte, v Variant) (Record, bool) {
	switch v {
	case VariantA:
		timestamp := binary.LittleEndian.Uint64(buf[0:8])
		command := buf[8]
		key := binary.LittleEndian.Uint64(buf[9:17])
		size := binary.LittleEndian.Uint32(buf[17:21])
		ttl := binary.LittleEndian.Uint32(buf[21:25])
		if command != 0 {
			return Record{}, false
		}
		return Record{TimestampMS: timestamp, Key: key, Size: size, TTLSeconds: ttl}, true
	case VariantB:
		timestampS := binary.LittleEndian.Uint32(buf[0:4])
		key := binary.LittleEndian.Uint64(buf[4:12])
		size := binary.LittleEndian.Uint32(buf[12:16])
		evictionS := binary.LittleEndian.Uint32(buf[16:20])
		var ttl uint32
		if evictionS > timestampS {
			ttl = evictionS - timestampS
		}
		return Record{TimestampMS: uint64(timestampS) * 1000, Key: key, Size: size, TTLSeconds: ttl}, true
	default:
		return Record{}, false
	}
}

// Keys extracts the bare key stream from records, the form the four
// reuse-distance engines actually consume.
func Keys(records []Record) []uint64 {
	keys := make([]uint64, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	return keys
}

// MappedFile is a memory-mapped trace file, used instead of ReadAll
// when the trace is too large to comfortably copy into a []Record
// slice up front; records are decoded lazily as the mapped pages are
// touched by the OS rather than read eagerly.
type MappedFile struct {
	f   *os.File
	mm  mmap.MMap
	v   Variant
	len int // number of complete records
}

// Open memory-maps path read-only and validates its length is a whole
// multiple of the variant's record size.
func Open(path string, v Variant) (*MappedFile, error) {
	recSize := v.recordSize()
	if recSize == 0 {
		return nil, fmt.Errorf("trace: unknown variant %d", v)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("trace: mmap %s: %w", path, err)
	}
	if len(m)%recSize != 0 {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("trace: %s: %w", path, ErrTruncated)
	}
	return &MappedFile{f: f, mm: m, v: v, len: len(m) / recSize}, nil
}

// Len returns the number of complete records in the mapped file.
func (mf *MappedFile) Len() int { return mf.len }

// At decodes the i'th record in place, returning ok=false for
// Variant-A "set" records that are not read events.
func (mf *MappedFile) At(i int) (Record, bool) {
	recSize := mf.v.recordSize()
	start := i * recSize
	return decodeRecord(mf.mm[start:start+recSize], mf.v)
}

// Close unmaps the file and releases its descriptor.
func (mf *MappedFile) Close() error {
	if err := mf.mm.Unmap(); err != nil {
		return fmt.Errorf("trace: unmap: %w", err)
	}
	return mf.f.Close()
}
