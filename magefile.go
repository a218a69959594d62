//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

var binaries = []string{"fairwatch", "fairsim"}

// Build builds the fairwatch client and the fairsim backend
func Build() error {
	fmt.Println("Building...")

	for _, binary := range binaries {
		if err := sh.Run("go", "build", "-o", binary, "./cmd/"+binary); err != nil {
			return err
		}
	}

	return nil
}

// Install installs both binaries
func Install() error {
	fmt.Println("Installing...")
	return sh.Run("go", "install", "./cmd/...")
}

// Sim runs the simulated backend on :7080 with debug logging and no start delay
func Sim() error {
	mg.Deps(Build)
	return run(context.Background(), "./fairsim", "--log-level", "debug", "--start-delay-scale", "0")
}

// Demo submits a small fairness run against a local fairsim and tracks it headlessly
func Demo() error {
	mg.Deps(Build)
	return run(context.Background(), "./fairwatch",
		"--headless", "--submit", "--exit-on-complete",
		"--mode", "fairness", "--workflows", "30",
		"--band", "gold:3", "--band", "tin:1")
}

// Test runs all tests with the race detector
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "-shuffle=on", "-timeout=60s", "./...")
}

// Lint lints the codebase
func Lint() error {
	fmt.Println("Linting...")
	return run(context.Background(), "golangci-lint", "run", "./...")
}

// Fmt formats the code
func Fmt() error {
	fmt.Println("Formatting code...")
	return sh.Run("gofmt", "-s", "-w", "cmd", "internal", "pkg")
}

// Check formats, lints and tests
func Check() {
	mg.SerialDeps(Fmt, Lint, Test)
}

// Clean removes build artifacts
func Clean() {
	fmt.Println("Cleaning...")

	for _, binary := range binaries {
		_ = os.Remove(binary)
	}
}

func run(ctx context.Context, command string, arg ...string) error {
	cmd := exec.CommandContext(ctx, command, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
