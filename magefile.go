//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binaryName = "rsstranslator"

// Default target to run when none is specified
var Default = Build

// Build builds the rsstranslator binary
func Build() error {
	fmt.Println("Building", binaryName, "...")
	return sh.RunV("go", "build", "-o", binaryName, "./cmd/rsstranslator")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestRace runs all tests with the race detector
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install installs the binary to $GOPATH/bin
func Install() error {
	mg.Deps(Build)

	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}

	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryName)
}

// Run builds and translates all registered feeds
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./" + binaryName)
}

// Serve builds and serves the translated feeds
func Serve() error {
	mg.Deps(Build)
	return sh.RunV("./"+binaryName, "serve")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	return os.RemoveAll(binaryName)
}
