//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the takeoff project using Mage.
//
// Usage:
//
//	mage build              Compile the takeoff binary to bin/
//	mage test:all           Run all tests (unit + integration)
//	mage test:unit          Run only unit tests
//	mage test:integration   Build, then run the CLI integration tests
//	mage test:cover         Unit tests with a coverage profile
//	mage lint               Run golangci-lint
//	mage clean              Remove build artifacts
//	mage install            Install takeoff to GOPATH/bin
//	mage stats              Print line counts per package
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "takeoff"
	binaryDir  = "bin"
	cmdDir     = "./cmd/takeoff"
	versionVar = "github.com/mesh-intelligence/takeoff/internal/cli.Version"
)

// ldflags stamps the version from TAKEOFF_VERSION when it is set.
func ldflags() string {
	if v := os.Getenv("TAKEOFF_VERSION"); v != "" {
		return "-X " + versionVar + "=" + v
	}
	return ""
}

// Build compiles the takeoff binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
