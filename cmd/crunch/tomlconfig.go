package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/ChevyRay/crunch"
)

// fileDefaults mirrors the subset of crunch.Config that can be preset
// from a TOML file via --config, before explicit CLI flags are applied
// on top. Fields left unset in the TOML file keep Config's built-in
// defaults.
type fileDefaults struct {
	XML         *bool   `toml:"xml"`
	Binary      *bool   `toml:"binary"`
	JSON        *bool   `toml:"json"`
	Premultiply *bool   `toml:"premultiply"`
	Trim        *bool   `toml:"trim"`
	Verbose     *bool   `toml:"verbose"`
	Unique      *bool   `toml:"unique"`
	Rotate      *bool   `toml:"rotate"`
	Split       *bool   `toml:"split"`
	NoZero      *bool   `toml:"nozero"`
	UseMtime    *bool   `toml:"time"`
	Size        *int    `toml:"size"`
	Pad         *int    `toml:"pad"`
	BinStr      *string `toml:"binstr"`
}

// loadConfigFile reads a TOML defaults file and applies whichever
// fields it sets onto cfg.
func loadConfigFile(path string, cfg *crunch.Config) error {
	var fd fileDefaults
	if _, err := toml.DecodeFile(path, &fd); err != nil {
		return fmt.Errorf("crunch: reading config file %s: %w", path, err)
	}

	apply := func() {
		if fd.XML != nil {
			cfg.XML = *fd.XML
		}
		if fd.Binary != nil {
			cfg.Binary = *fd.Binary
		}
		if fd.JSON != nil {
			cfg.JSON = *fd.JSON
		}
		if fd.Premultiply != nil {
			cfg.Premultiply = *fd.Premultiply
		}
		if fd.Trim != nil {
			cfg.Trim = *fd.Trim
		}
		if fd.Verbose != nil {
			cfg.Verbose = *fd.Verbose
		}
		if fd.Unique != nil {
			cfg.Unique = *fd.Unique
		}
		if fd.Rotate != nil {
			cfg.Rotate = *fd.Rotate
		}
		if fd.Split != nil {
			cfg.Split = *fd.Split
		}
		if fd.NoZero != nil {
			cfg.NoZero = *fd.NoZero
		}
		if fd.UseMtime != nil {
			cfg.UseMtime = *fd.UseMtime
		}
		if fd.Size != nil {
			cfg.Size = *fd.Size
		}
		if fd.Pad != nil {
			cfg.Pad = *fd.Pad
		}
	}
	apply()

	if fd.BinStr != nil {
		st, err := parseBinStr(*fd.BinStr)
		if err != nil {
			return fmt.Errorf("crunch: config file %s: %w", path, err)
		}
		cfg.BinStr = st
	}
	return nil
}
