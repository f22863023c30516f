// Package main runs one or more reuse-distance engines over a trace
// file and writes their histograms and miss ratio curves to disk.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/codeGROOVE-dev/mrcurve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/diskio"
	"github.com/codeGROOVE-dev/mrcurve/pkg/engineconfig"
	"github.com/codeGROOVE-dev/mrcurve/pkg/trace"
)

func main() {
	tracePath := flag.String("trace", "", "path to the trace file (required)")
	variant := flag.String("variant", "a", "trace record layout: a (25 bytes/record) or b (20 bytes/record)")
	algorithms := flag.String("algorithms", "Olken()", "comma-separated Algorithm(k=v,...) clauses")
	outDir := flag.String("out", ".", "directory to write histogram/curve artifacts into")
	flag.Parse()

	if *tracePath == "" {
		slog.Error("missing required flag", "flag", "-trace")
		os.Exit(1)
	}

	v := trace.VariantA
	if strings.EqualFold(*variant, "b") {
		v = trace.VariantB
	}

	records, err := trace.ReadAll(*tracePath, v)
	if err != nil {
		slog.Error("failed to read trace", "path", *tracePath, "error", err)
		os.Exit(1)
	}
	keys := trace.Keys(records)
	slog.Info("trace loaded", "records", humanize.Comma(int64(len(keys))), "path", *tracePath)

	runner := mrcurve.NewRunner()
	for _, clause := range splitClauses(*algorithms) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		eng, name, err := buildEngine(clause)
		if err != nil {
			slog.Warn("skipping malformed algorithm clause", "clause", clause, "error", err)
			continue
		}
		runner.Add(name, eng)
	}

	results := runner.Run(keys)

	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			slog.Warn("engine failed", "engine", res.Name, "error", res.Err)
			continue
		}
		histPath := fmt.Sprintf("%s/%s.hist", *outDir, res.Name)
		mrcPath := fmt.Sprintf("%s/%s.mrc", *outDir, res.Name)
		codec := diskio.S2()
		if err := diskio.WriteHistogram(histPath, res.Histogram, codec); err != nil {
			slog.Warn("failed to write histogram", "engine", res.Name, "error", err)
			failures++
			continue
		}
		if err := diskio.WriteCurve(mrcPath, res.Curve, codec); err != nil {
			slog.Warn("failed to write curve", "engine", res.Name, "error", err)
			failures++
			continue
		}
		slog.Info("engine complete",
			"engine", res.Name,
			"running_sum", humanize.Comma(int64(res.Histogram.RunningSum())),
			"infinity", humanize.Comma(int64(res.Histogram.Infinity())),
			"hist", histPath, "mrc", mrcPath)
	}

	slog.Info("run complete", "engines", len(results), "failures", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

// splitClauses splits a comma-separated list of Algorithm(k=v,...)
// clauses on commas that fall outside any parentheses, since a
// clause's own parameter list uses commas internally.
func splitClauses(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func buildEngine(clause string) (mrcurve.Engine, string, error) {
	cfg, err := engineconfig.Parse(clause)
	if err != nil {
		return nil, "", fmt.Errorf("parse %q: %w", clause, err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, "", fmt.Errorf("options for %q: %w", clause, err)
	}

	switch strings.ToLower(cfg.Algorithm) {
	case "olken":
		e, err := mrcurve.NewOlken(nil, opts...)
		return e, cfg.Algorithm, err
	case "shards":
		e, err := mrcurve.NewShards(nil, opts...)
		return e, cfg.Algorithm, err
	case "evictingmap":
		e, err := mrcurve.NewEvictingMap(nil, opts...)
		return e, cfg.Algorithm, err
	case "quickmrc":
		e, err := mrcurve.NewQuickMRC(nil, opts...)
		return e, cfg.Algorithm, err
	default:
		return nil, "", fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
	}
}
