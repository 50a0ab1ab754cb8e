package crunch

import (
	"fmt"

	"github.com/ChevyRay/crunch/internal/binio"
)

// Config holds one build's resolved options, equivalent to the CLI's
// flags after --default expansion and validation.
type Config struct {
	Output string   // atlas name, without extension
	Inputs []string // one or more input directories or .png files

	XML      bool
	Binary   bool
	JSON     bool
	Premultiply bool
	Trim     bool
	Verbose  bool
	Force    bool
	Unique   bool
	Rotate   bool
	Split    bool
	NoZero   bool
	UseMtime bool

	Size int // max page edge, power of two in [64, 4096]
	Pad  int // padding between images, in [0, 16]

	BinStr binio.StrType
}

// DefaultConfig returns a Config with every flag at its documented
// default: Size 4096, Pad 1, StrType null-terminated, everything else
// false.
func DefaultConfig() Config {
	return Config{
		Size:   4096,
		Pad:    1,
		BinStr: binio.StrNull,
	}
}

// ApplyDefault turns on the bundle --default enables: xml, premultiply,
// trim, unique.
func (c *Config) ApplyDefault() {
	c.XML = true
	c.Premultiply = true
	c.Trim = true
	c.Unique = true
}

var validSizes = map[int]bool{64: true, 128: true, 256: true, 512: true, 1024: true, 2048: true, 4096: true}

// Validate checks that Config's numeric and enum fields are in range and
// that an output name and at least one input were given. Selecting no
// manifest format is legal: crunch then writes only page PNGs.
func (c Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("%w: missing output name", ErrInvalidArgument)
	}
	if len(c.Inputs) == 0 {
		return fmt.Errorf("%w: missing input directory", ErrInvalidArgument)
	}
	if !validSizes[c.Size] {
		return fmt.Errorf("%w: size %d is not a power of two in [64, 4096]", ErrInvalidArgument, c.Size)
	}
	if c.Pad < 0 || c.Pad > 16 {
		return fmt.Errorf("%w: pad %d out of range [0, 16]", ErrInvalidArgument, c.Pad)
	}
	return nil
}
