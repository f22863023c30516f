package engineconfig

import (
	"fmt"

	"github.com/codeGROOVE-dev/mrcurve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// Options converts the well-known fields of Config into mrcurve.Option
// values, ready to pass to NewOlken/NewShards/NewEvictingMap/
// NewQuickMRC alongside a base *mrcurve.EngineConfig.
func (c *Config) Options() ([]mrcurve.Option, error) {
	var opts []mrcurve.Option
	if c.Sampling != nil {
		opts = append(opts, mrcurve.WithSampling(*c.Sampling))
	}
	if c.NumBins != nil {
		opts = append(opts, mrcurve.WithNumBins(*c.NumBins))
	}
	if c.BinSize != nil {
		opts = append(opts, mrcurve.WithBinSize(*c.BinSize))
	}
	if c.MaxSize != nil {
		opts = append(opts, mrcurve.WithMaxSize(*c.MaxSize))
	}
	if c.QMRCSize != nil {
		opts = append(opts, mrcurve.WithQMRCSize(*c.QMRCSize))
	}
	if c.Adjust != nil {
		opts = append(opts, mrcurve.WithAdjustment(*c.Adjust))
	}
	if c.Mode != nil {
		mode, err := parseMode(*c.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mrcurve.WithOverflowMode(mode))
	}
	return opts, nil
}

func parseMode(s string) (histogram.OverflowMode, error) {
	switch s {
	case "allow_overflow":
		return histogram.AllowOverflow, nil
	case "merge_bins":
		return histogram.MergeBins, nil
	case "realloc":
		return histogram.Realloc, nil
	default:
		return 0, fmt.Errorf("engineconfig: unknown mode %q", s)
	}
}
