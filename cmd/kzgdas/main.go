// Command kzgdas is a developer CLI over the KZG/FK20 data-availability
// façade: committing to and proving blobs (EIP-4844) and computing,
// verifying and recovering data-availability cells (EIP-7594).
//
// Usage:
//
//	kzgdas <subcommand> [flags]
//
// Subcommands:
//
//	commit          blob file -> hex KZG commitment
//	prove-point     blob file + evaluation point -> hex proof and value
//	verify-point    commitment + point + value + proof -> accept/reject
//	prove-blob      blob file + commitment -> hex blob-level proof
//	verify-blob     blob file + commitment + proof -> accept/reject
//	compute-cells   blob file -> hex cells and cell proofs
//	verify-cells    commitments + cell indices + cells + proofs -> accept/reject
//	recover-cells   partial cell set -> full set of cells and proofs
//	version         print version and exit
//
// Every subcommand accepts either -setup <path> to load a real trusted-setup
// file, or -insecure <n> to derive a toy n-point SRS from a fixed, public,
// non-ceremony secret for local experimentation. -insecure MUST NOT be used
// outside of development.
package main

import (
	"fmt"
	"os"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	sub, rest := args[0], args[1:]

	if sub == "version" {
		fmt.Printf("kzgdas %s (commit %s)\n", version, commit)
		return 0
	}

	cmd, ok := subcommands[sub]
	if !ok {
		fmt.Fprintf(os.Stderr, "kzgdas: unknown subcommand %q\n", sub)
		printUsage()
		return 2
	}
	return cmd(rest)
}

var subcommands = map[string]func([]string) int{
	"commit":        runCommit,
	"prove-point":   runProvePoint,
	"verify-point":  runVerifyPoint,
	"prove-blob":    runProveBlob,
	"verify-blob":   runVerifyBlob,
	"compute-cells": runComputeCells,
	"verify-cells":  runVerifyCells,
	"recover-cells": runRecoverCells,
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: kzgdas <subcommand> [flags]

subcommands:
  commit          blob file -> hex KZG commitment
  prove-point     blob file + evaluation point -> hex proof and value
  verify-point    commitment + point + value + proof -> accept/reject
  prove-blob      blob file + commitment -> hex blob-level proof
  verify-blob     blob file + commitment + proof -> accept/reject
  compute-cells   blob file -> hex cells and cell proofs
  verify-cells    commitments + cell indices + cells + proofs -> accept/reject
  recover-cells   partial cell set -> full set of cells and proofs
  version         print version and exit

every subcommand accepts -setup <path> or -insecure <n> to select a KZG
trusted setup (-insecure is for local development only).`)
}
