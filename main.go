// Package main provides the entry point for mipsim.
// mipsim is a pseudo-single-cycle MIPS64 datapath emulator.
//
// For the full CLI, use: go run ./cmd/mipsim
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/mips64sim/datapath"
)

func main() {
	fmt.Println("mipsim - MIPS64 Datapath Emulator")
	fmt.Printf("Stages: %s %s %s %s %s\n",
		datapath.StageInstructionFetch,
		datapath.StageInstructionDecode,
		datapath.StageExecute,
		datapath.StageMemory,
		datapath.StageWriteBack)
	fmt.Println("")
	fmt.Println("Usage: mipsim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to a JSON or YAML session configuration file")
	fmt.Println("  -core      Execution core: datapath or trad")
	fmt.Println("  -stages    Step and trace the datapath one stage at a time")
	fmt.Println("  -max       Stop after this many instructions")
	fmt.Println("  -base      Load address for hex text programs")
	fmt.Println("  -dump      Dump the final datapath state")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mipsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mipsim' instead.")
	}
}
