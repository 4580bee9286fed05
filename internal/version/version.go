// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2016 The alphad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version provides a single location to house the version information
// for the alphad utilities.
package version

import (
	"fmt"
	"strings"
)

const (
	// semanticAlphabet defines the allowed characters for the pre-release
	// portion of a semantic version string.
	semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	// semanticBuildAlphabet defines the allowed characters for the build
	// portion of a semantic version string.
	semanticBuildAlphabet = semanticAlphabet + "."
)

// These constants define the application version and follow the semantic
// versioning 2.0.0 spec (http://semver.org/).
const (
	Major uint = 0
	Minor uint = 1
	Patch uint = 0
)

var (
	// PreRelease can be overridden at build time with
	// '-ldflags "-X github.com/elementsalpha/alphad/internal/version.PreRelease=foo"'.
	PreRelease = "alpha"

	// BuildMetadata can be overridden at build time the same way.
	BuildMetadata = ""
)

// String returns the application version as a properly formed string per the
// semantic versioning 2.0.0 spec.  Invalid characters in the pre-release and
// build parts are dropped.
func String() string {
	version := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	if pre := normalizeSemString(PreRelease, semanticAlphabet); pre != "" {
		version += "-" + pre
	}
	if build := normalizeSemString(BuildMetadata, semanticBuildAlphabet); build != "" {
		version += "+" + build
	}
	return version
}

// normalizeSemString returns the passed string stripped of all characters
// which are not valid according to the provided semantic versioning alphabet.
func normalizeSemString(str, alphabet string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(alphabet, r) {
			return r
		}
		return -1
	}, str)
}
