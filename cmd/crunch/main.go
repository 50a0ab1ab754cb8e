// Command crunch packs a directory of PNG images into one or more
// texture atlas pages, plus XML, JSON, and/or binary manifests
// describing where each image ended up.
//
// Usage:
//
//	crunch <OUTPUT> <INPUT1[,INPUT2,...]> [options]
//
// Run with -h for the full option list.
package main

import (
	"fmt"
	"os"

	"github.com/ChevyRay/crunch"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "crunch: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	echoArgs(args)

	pa, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, usage)
		return err
	}
	if pa.help {
		fmt.Println(usage)
		return nil
	}
	if pa.version {
		printVersion()
		return nil
	}

	if err := pa.cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, usage)
		return err
	}

	if pa.cfg.Verbose {
		printOptionDump(pa.cfg)
	}

	c := crunch.NewController(pa.outputDir)
	if err := c.Pack(pa.name, pa.cfg); err != nil {
		return err
	}
	if pa.cfg.Verbose {
		c.Timing.Dump(os.Stderr)
	}
	return nil
}

// echoArgs prints the invocation's argv, unconditionally: the
// reference tool always echoes its command line before doing any
// work, not just under --verbose.
func echoArgs(args []string) {
	fmt.Println("crunch", joinArgs(args))
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

func printOptionDump(cfg crunch.Config) {
	fmt.Fprintf(os.Stderr, "crunch: options: xml=%v binary=%v json=%v premultiply=%v trim=%v "+
		"force=%v unique=%v rotate=%v split=%v nozero=%v time=%v size=%d pad=%d binstr=%v\n",
		cfg.XML, cfg.Binary, cfg.JSON, cfg.Premultiply, cfg.Trim,
		cfg.Force, cfg.Unique, cfg.Rotate, cfg.Split, cfg.NoZero, cfg.UseMtime, cfg.Size, cfg.Pad, cfg.BinStr)
}

const usage = `Usage:
  crunch <OUTPUT> <INPUT1[,INPUT2,...]> [options]

Options:
  -d, --default       Enable xml, premultiply, trim, unique
  -x, --xml           Emit XML manifest
  -b, --binary        Emit binary manifest
  -j, --json          Emit JSON manifest
  -p, --premultiply   Multiply RGB by alpha at load
  -t, --trim          Trim transparent borders; emit frame metadata
  -v, --verbose       Trace progress to stderr
  -f, --force         Ignore the hash check
  -u, --unique        Deduplicate byte-identical images
  -r, --rotate        Allow 90 degree clockwise rotation during packing
  -s<N>, --size<N>    Max page edge, one of 64..4096 (default 4096)
  -p<N>, --pad<N>     Padding between images, 0..16 (default 1)
  -bs<c>, --binstr<c> Binary string encoding: n, p, or 7
  -tm, --time         Hash by file modification time instead of contents
  -sp, --split        Per-subdirectory sub-builds, stitched into one manifest
  -nz, --nozero       Omit the trailing 0 when there is exactly one page
  --config <file>     Preload option defaults from a TOML file
  -h, --help          Show this help
  --version           Show the version
`
