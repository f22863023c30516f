// Package engineconfig parses the textual engine configuration grammar
// used by the command-line runner: Algorithm(k=v,k=v,...). This is a
// bespoke little DSL specific to this tool, so it is hand-rolled with
// strings/strconv rather than reaching for a general config library.
package engineconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for any input that doesn't match
// Algorithm(k=v,k=v,...).
var ErrSyntax = errors.New("engineconfig: syntax error")

// Config is one parsed Algorithm(...) clause. Well-known keys are
// pulled into typed fields when present; everything else lands in
// Extra, keyed exactly as written, so callers can thread unrecognized
// keys through to engine-specific options without the parser needing
// to know about them.
type Config struct {
	Algorithm string

	MRCPath  string
	HistPath string

	Sampling *float64
	NumBins  *int
	BinSize  *uint64
	MaxSize  *int
	QMRCSize *int
	Mode     *string
	Adjust   *bool

	Extra map[string]string
}

// Parse parses a single "Algorithm(k=v,k=v,...)" clause. Whitespace
// around keys and values is trimmed; an empty parameter list
// ("Algorithm()") is valid and yields zero-value fields.
func Parse(s string) (*Config, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: %q: missing Algorithm(...) wrapper", ErrSyntax, s)
	}
	name := strings.TrimSpace(s[:open])
	if name == "" {
		return nil, fmt.Errorf("%w: %q: empty algorithm name", ErrSyntax, s)
	}
	body := s[open+1 : len(s)-1]

	cfg := &Config{Algorithm: name, Extra: map[string]string{}}
	if strings.TrimSpace(body) == "" {
		return cfg, nil
	}

	for _, pair := range strings.Split(body, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: %q: parameter %q has no '='", ErrSyntax, s, pair)
		}
		key := strings.TrimSpace(pair[:eq])
		val := strings.TrimSpace(pair[eq+1:])
		if key == "" {
			return nil, fmt.Errorf("%w: %q: empty key", ErrSyntax, s)
		}
		if err := cfg.assign(key, val); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrSyntax, s, err)
		}
	}
	return cfg, nil
}

func (c *Config) assign(key, val string) error {
	switch key {
	case "mrc":
		c.MRCPath = val
	case "hist":
		c.HistPath = val
	case "sampling":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("sampling: %w", err)
		}
		c.Sampling = &f
	case "num_bins":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("num_bins: %w", err)
		}
		c.NumBins = &n
	case "bin_size":
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("bin_size: %w", err)
		}
		c.BinSize = &n
	case "max_size":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("max_size: %w", err)
		}
		c.MaxSize = &n
	case "qmrc_size":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("qmrc_size: %w", err)
		}
		c.QMRCSize = &n
	case "mode":
		switch val {
		case "allow_overflow", "merge_bins", "realloc":
			c.Mode = &val
		default:
			return fmt.Errorf("mode: unknown value %q", val)
		}
	case "adj":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("adj: %w", err)
		}
		c.Adjust = &b
	default:
		c.Extra[key] = val
	}
	return nil
}

// String renders cfg back to Algorithm(k=v,...) form. Well-known keys
// come first, in declaration order; Extra keys follow in map iteration
// order, which is not fixed from one call to the next.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Algorithm)
	b.WriteByte('(')
	first := true
	write := func(key, val string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(val)
	}
	if c.MRCPath != "" {
		write("mrc", c.MRCPath)
	}
	if c.HistPath != "" {
		write("hist", c.HistPath)
	}
	if c.Sampling != nil {
		write("sampling", strconv.FormatFloat(*c.Sampling, 'g', -1, 64))
	}
	if c.NumBins != nil {
		write("num_bins", strconv.Itoa(*c.NumBins))
	}
	if c.BinSize != nil {
		write("bin_size", strconv.FormatUint(*c.BinSize, 10))
	}
	if c.MaxSize != nil {
		write("max_size", strconv.Itoa(*c.MaxSize))
	}
	if c.QMRCSize != nil {
		write("qmrc_size", strconv.Itoa(*c.QMRCSize))
	}
	if c.Mode != nil {
		write("mode", *c.Mode)
	}
	if c.Adjust != nil {
		write("adj", strconv.FormatBool(*c.Adjust))
	}
	for k, v := range c.Extra {
		write(k, v)
	}
	b.WriteByte(')')
	return b.String()
}
