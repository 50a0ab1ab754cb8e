package main

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// rawVersion is the build's version string. It is validated as semver
// at init so a malformed release tag fails fast rather than printing a
// bogus --version string.
const rawVersion = "1.0.0"

var version = semver.MustParse(rawVersion)

func printVersion() {
	fmt.Println("crunch " + version.String())
}
