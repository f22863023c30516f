package diskio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/codeGROOVE-dev/mrcurve/pkg/curve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

func TestCompressorsRoundTrip(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog, repeatedly, to give the compressor something to chew on: " +
		"the quick brown fox jumps over the lazy dog")

	codecs := []struct {
		name string
		c    Compressor
		ext  string
	}{
		{"None", None(), ""},
		{"S2", S2(), ".s2"},
		{"LZ4", LZ4(), ".lz4"},
		{"Zstd", Zstd(zstd.SpeedDefault), ".zst"},
	}

	for _, tc := range codecs {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := tc.c.Encode(raw)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := tc.c.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if string(decoded) != string(raw) {
				t.Fatalf("round trip mismatch: got %q, want %q", decoded, raw)
			}
			if tc.c.Extension() != tc.ext {
				t.Fatalf("Extension() = %q; want %q", tc.c.Extension(), tc.ext)
			}
		})
	}
}

func TestHistogramArtifactRoundTrip(t *testing.T) {
	h, err := histogram.New(8, 1, histogram.Realloc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.InsertFinite(0)
	h.InsertFinite(3)
	h.InsertInfinite()

	dir := t.TempDir()
	path := filepath.Join(dir, "hist.bin")
	for _, c := range []Compressor{None(), S2(), LZ4(), Zstd(zstd.SpeedDefault)} {
		if err := WriteHistogram(path, h, c); err != nil {
			t.Fatalf("WriteHistogram(%s): %v", c.Extension(), err)
		}
		got, err := ReadHistogram(path, c)
		if err != nil {
			t.Fatalf("ReadHistogram(%s): %v", c.Extension(), err)
		}
		if got.Infinity() != h.Infinity() || got.RunningSum() != h.RunningSum() {
			t.Fatalf("round trip mismatch for codec %s", c.Extension())
		}
		if _, err := Report(path, c); err != nil {
			t.Fatalf("Report(%s): %v", c.Extension(), err)
		}
	}
	_ = os.Remove(path)
}

func TestCurveArtifactRoundTrip(t *testing.T) {
	h, err := histogram.New(4, 2, histogram.Realloc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.InsertFinite(0)
	h.InsertFinite(1)
	h.InsertFinite(2)
	mrc, err := curve.FromHistogram(h)
	if err != nil {
		t.Fatalf("FromHistogram: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "curve.bin")
	if err := WriteCurve(path, mrc, Zstd(zstd.SpeedDefault)); err != nil {
		t.Fatalf("WriteCurve: %v", err)
	}
	got, err := ReadCurve(path, Zstd(zstd.SpeedDefault))
	if err != nil {
		t.Fatalf("ReadCurve: %v", err)
	}
	if len(got.MissRate) != len(mrc.MissRate) || got.BinSize != mrc.BinSize {
		t.Fatal("curve round trip mismatch")
	}
}

func TestReadHistogram_RejectsForeignFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-histogram.bin")
	if err := os.WriteFile(path, []byte("NOPE garbage"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadHistogram(path, None()); err == nil {
		t.Fatal("ReadHistogram on a foreign file: want error, got nil")
	}
}
