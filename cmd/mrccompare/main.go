// Package main compares two previously written miss ratio curve
// artifacts and reports their mean absolute and mean squared error.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/codeGROOVE-dev/mrcurve/pkg/curve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/diskio"
)

func main() {
	aPath := flag.String("a", "", "path to the reference curve artifact (required)")
	bPath := flag.String("b", "", "path to the candidate curve artifact (required)")
	flag.Parse()

	if *aPath == "" || *bPath == "" {
		slog.Error("missing required flag", "want", "-a and -b")
		os.Exit(1)
	}

	codec := diskio.S2()
	a, err := diskio.ReadCurve(*aPath, codec)
	if err != nil {
		slog.Error("failed to read curve", "path", *aPath, "error", err)
		os.Exit(1)
	}
	b, err := diskio.ReadCurve(*bPath, codec)
	if err != nil {
		slog.Error("failed to read curve", "path", *bPath, "error", err)
		os.Exit(1)
	}

	mae, err := curve.MeanAbsoluteError(a, b)
	if err != nil {
		slog.Error("MeanAbsoluteError", "error", err)
		os.Exit(1)
	}
	mse, err := curve.MeanSquaredError(a, b)
	if err != nil {
		slog.Error("MeanSquaredError", "error", err)
		os.Exit(1)
	}

	slog.Info("curve comparison", "a", *aPath, "b", *bPath, "mae", mae, "mse", mse)
}
