//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg" // mg contains helpful utility functions, like Deps
	"github.com/magefile/mage/sh"
)

var Default = Build

var (
	buildDir = "bin"
	binName  = "boostd"
)

// Builds the boostd binary for the host platform.
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", filepath.Join(buildDir, binName), ".")
}

// Runs the full test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Runs the daemon locally.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(buildDir, binName))
}

// Prints one scored snapshot without starting the daemon.
func Scan() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(buildDir, binName), "scan")
}

// Cleans up the build directory
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(filepath.Join(buildDir, binName))
}
