package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChevyRay/crunch"
	"github.com/ChevyRay/crunch/internal/binio"
)

// parsedArgs is the result of parseArgs: the resolved output directory
// and atlas name, the config file to optionally preload, and the
// Config built from CLI flags.
type parsedArgs struct {
	outputDir string
	name      string
	configFile string
	cfg       crunch.Config
	help      bool
	version   bool
}

// parseArgs implements crunch's CLI grammar: "crunch <OUTPUT> <INPUTS>
// [options]". It is hand-rolled rather than built on the flag package
// because the grammar puts positionals before options and uses
// concatenated short options (-s256, -p2, -bsn) that flag.FlagSet
// cannot express.
func parseArgs(args []string) (parsedArgs, error) {
	var pa parsedArgs
	pa.cfg = crunch.DefaultConfig()

	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		pa.help = true
		return pa, nil
	}
	if len(args) > 0 && args[0] == "--version" {
		pa.version = true
		return pa, nil
	}

	if len(args) < 2 {
		return pa, fmt.Errorf("%w: usage: crunch <OUTPUT> <INPUT1[,INPUT2,...]> [options]", crunch.ErrInvalidArgument)
	}

	pa.outputDir, pa.name = splitOutput(args[0])
	pa.cfg.Output = pa.name
	pa.cfg.Inputs = strings.Split(args[1], ",")

	rest := args[2:]

	// A --config file sets Config defaults, but explicit flags must still
	// win over it regardless of where --config appears in argv. Resolve
	// and apply it first, onto the plain DefaultConfig() above, so the
	// flag-parsing loop below overlays explicit values on top.
	for i, tok := range rest {
		if tok == "--config" {
			if i+1 >= len(rest) {
				return pa, fmt.Errorf("%w: --config requires a file path", crunch.ErrInvalidArgument)
			}
			pa.configFile = rest[i+1]
			break
		}
	}
	if pa.configFile != "" {
		if err := loadConfigFile(pa.configFile, &pa.cfg); err != nil {
			return pa, err
		}
	}

	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case tok == "--config":
			i++ // value already consumed and applied above

		case tok == "-d" || tok == "--default":
			pa.cfg.ApplyDefault()
		case tok == "-x" || tok == "--xml":
			pa.cfg.XML = true
		case tok == "-j" || tok == "--json":
			pa.cfg.JSON = true
		case tok == "-v" || tok == "--verbose":
			pa.cfg.Verbose = true
		case tok == "-f" || tok == "--force":
			pa.cfg.Force = true
		case tok == "-u" || tok == "--unique":
			pa.cfg.Unique = true
		case tok == "-r" || tok == "--rotate":
			pa.cfg.Rotate = true
		case tok == "-nz" || tok == "--nozero":
			pa.cfg.NoZero = true
		case tok == "-tm" || tok == "--time":
			pa.cfg.UseMtime = true
		case tok == "-sp" || tok == "--split":
			pa.cfg.Split = true

		case hasShortOrLongPrefix(tok, "-bs", "--binstr"):
			c := trimPrefixes(tok, "-bs", "--binstr")
			st, err := parseBinStr(c)
			if err != nil {
				return pa, err
			}
			pa.cfg.BinStr = st
		case tok == "-b" || tok == "--binary":
			pa.cfg.Binary = true

		case tok == "-t" || tok == "--trim":
			pa.cfg.Trim = true

		case hasShortOrLongPrefix(tok, "-s", "--size"):
			n, err := strconv.Atoi(trimPrefixes(tok, "-s", "--size"))
			if err != nil {
				return pa, fmt.Errorf("%w: invalid --size value in %q", crunch.ErrInvalidArgument, tok)
			}
			pa.cfg.Size = n

		case hasShortOrLongPrefix(tok, "-p", "--pad") && tok != "-p" && tok != "--pad":
			n, err := strconv.Atoi(trimPrefixes(tok, "-p", "--pad"))
			if err != nil {
				return pa, fmt.Errorf("%w: invalid --pad value in %q", crunch.ErrInvalidArgument, tok)
			}
			pa.cfg.Pad = n
		case tok == "-p" || tok == "--premultiply":
			pa.cfg.Premultiply = true

		default:
			return pa, fmt.Errorf("%w: unknown flag %q", crunch.ErrInvalidArgument, tok)
		}
	}

	return pa, nil
}

func hasShortOrLongPrefix(tok, short, long string) bool {
	return strings.HasPrefix(tok, short) || strings.HasPrefix(tok, long)
}

func trimPrefixes(tok, short, long string) string {
	if strings.HasPrefix(tok, long) {
		return strings.TrimPrefix(tok, long)
	}
	return strings.TrimPrefix(tok, short)
}

func parseBinStr(c string) (binio.StrType, error) {
	switch c {
	case "n":
		return binio.StrNull, nil
	case "p":
		return binio.StrPrefixed, nil
	case "7":
		return binio.Str7Bit, nil
	default:
		return 0, fmt.Errorf("%w: unknown --binstr encoding %q (use n, p, or 7)", crunch.ErrInvalidArgument, c)
	}
}

// splitOutput splits a full output path into its directory and atlas
// name (the base name, with no extension).
func splitOutput(path string) (dir, name string) {
	dir = filepath.Dir(path)
	base := filepath.Base(path)
	name = strings.TrimSuffix(base, filepath.Ext(base))
	return dir, name
}
