package diskio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/codeGROOVE-dev/mrcurve/pkg/curve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// magic tags the start of every artifact file so ReadHistogram and
// ReadCurve can reject foreign input instead of decoding garbage.
const (
	histogramMagic = "MRCH"
	curveMagic     = "MRCC"
)

// WriteHistogram compresses h's binary encoding with c and writes it to
// path, preceded by a 4-byte magic tag identifying the artifact kind.
func WriteHistogram(path string, h *histogram.Histogram, c Compressor) error {
	var raw bytes.Buffer
	if err := h.Encode(&raw); err != nil {
		return fmt.Errorf("encode histogram: %w", err)
	}
	return writeArtifact(path, histogramMagic, raw.Bytes(), c)
}

// ReadHistogram reads and decompresses a histogram artifact previously
// written by WriteHistogram. c must match the codec used to write it.
func ReadHistogram(path string, c Compressor) (*histogram.Histogram, error) {
	raw, err := readArtifact(path, histogramMagic, c)
	if err != nil {
		return nil, err
	}
	h, err := histogram.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode histogram: %w", err)
	}
	return h, nil
}

// WriteCurve compresses c's binary encoding with codec and writes it to
// path, preceded by a 4-byte magic tag identifying the artifact kind.
func WriteCurve(path string, mrc *curve.Curve, codec Compressor) error {
	var raw bytes.Buffer
	if err := mrc.Encode(&raw); err != nil {
		return fmt.Errorf("encode curve: %w", err)
	}
	return writeArtifact(path, curveMagic, raw.Bytes(), codec)
}

// ReadCurve reads and decompresses a curve artifact previously written
// by WriteCurve. codec must match the codec used to write it.
func ReadCurve(path string, codec Compressor) (*curve.Curve, error) {
	raw, err := readArtifact(path, curveMagic, codec)
	if err != nil {
		return nil, err
	}
	c, err := curve.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode curve: %w", err)
	}
	return c, nil
}

func writeArtifact(path, magic string, raw []byte, c Compressor) error {
	encoded, err := c.Encode(raw)
	if err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.WriteString(f, magic); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.Write(encoded); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readArtifact(path, wantMagic string, c Compressor) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(blob) < len(wantMagic) || string(blob[:len(wantMagic)]) != wantMagic {
		return nil, fmt.Errorf("%s: not a %s artifact", path, wantMagic)
	}
	raw, err := c.Decode(blob[len(wantMagic):])
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return raw, nil
}

// Report renders a short human-readable summary of an artifact file's
// on-disk size versus its decompressed size, in the teacher's
// humanize.Bytes style.
func Report(path string, c Compressor) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	magic := ""
	if len(blob) >= 4 {
		magic = string(blob[:4])
	}
	raw, err := c.Decode(blob[min(4, len(blob)):])
	if err != nil {
		return "", fmt.Errorf("decompress %s: %w", path, err)
	}
	ratio := 1.0
	if len(raw) > 0 {
		ratio = float64(stat.Size()) / float64(len(raw))
	}
	return fmt.Sprintf("%s: %s kind=%s on-disk=%s decoded=%s ratio=%.3f",
		path, c.Extension(), magic,
		humanize.Bytes(uint64(stat.Size())), humanize.Bytes(uint64(len(raw))), ratio), nil
}
