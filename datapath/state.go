package datapath

import "fmt"

// State holds the data lines threaded between stages. It is cleared when an
// instruction enters Instruction Fetch; no value carries across
// instructions.
type State struct {
	// Instruction is the raw word. Set in Instruction Fetch.
	Instruction uint32

	// Instruction fields. Set in Instruction Decode. For FPU instructions
	// only Rt is set, to the coprocessor's ft field.
	Rs    uint8
	Rt    uint8
	Rd    uint8
	Shamt uint8
	Funct uint8
	Imm   uint16

	// ReadData1 and ReadData2 are the register reads for rs and rt,
	// truncated to 32 bits for word-width instructions. Set in
	// Instruction Decode.
	ReadData1 uint64
	ReadData2 uint64

	// SignExtend is Imm sign-extended to 64 bits. Set in Instruction
	// Decode.
	SignExtend uint64

	// ALUResult is set in Execute.
	ALUResult uint64

	// MemoryData is the memory read result. Set in Memory.
	MemoryData uint64

	// DataResult is the MemToReg multiplexer output. Set in Memory.
	DataResult uint64

	// RegisterWriteData is the DataWrite multiplexer output, the value
	// offered to the register file. Set in WriteBack.
	RegisterWriteData uint64
}

// Stage is a phase of instruction processing.
type Stage uint8

// Stages in execution order. StageInstructionFetch is the initial stage.
const (
	StageInstructionFetch Stage = iota
	StageInstructionDecode
	StageExecute
	StageMemory
	StageWriteBack
)

// numStages is the number of stages in one instruction.
const numStages = 5

// Next returns the following stage, wrapping WriteBack to
// InstructionFetch.
func (s Stage) Next() Stage {
	switch s {
	case StageInstructionFetch:
		return StageInstructionDecode
	case StageInstructionDecode:
		return StageExecute
	case StageExecute:
		return StageMemory
	case StageMemory:
		return StageWriteBack
	default:
		return StageInstructionFetch
	}
}

func (s Stage) String() string {
	switch s {
	case StageInstructionFetch:
		return "IF"
	case StageInstructionDecode:
		return "ID"
	case StageExecute:
		return "EX"
	case StageMemory:
		return "MEM"
	case StageWriteBack:
		return "WB"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// CoreSelect chooses the execution strategy for one call.
type CoreSelect uint8

// Execution strategies.
const (
	// DatapathCore runs the staged datapath.
	DatapathCore CoreSelect = iota
	// TradCore runs the direct interpreter.
	TradCore
)

func (c CoreSelect) String() string {
	if c == TradCore {
		return "trad"
	}
	return "datapath"
}

// ParseCoreSelect parses "datapath" or "trad".
func ParseCoreSelect(name string) (CoreSelect, error) {
	switch name {
	case "", "datapath":
		return DatapathCore, nil
	case "trad", "traditional":
		return TradCore, nil
	default:
		return 0, fmt.Errorf("unknown core %q (want datapath or trad)", name)
	}
}

// FetchFaultPolicy decides what a failed instruction fetch does.
type FetchFaultPolicy uint8

// Fetch fault policies.
const (
	// FetchFaultAbort makes a failed fetch fatal.
	FetchFaultAbort FetchFaultPolicy = iota
	// FetchFaultZero substitutes a zero word instead of failing the fetch.
	// The zero word decodes as SPECIAL with funct 0, which has no control
	// signal mapping, so the staged datapath still halts with a FatalError
	// in Instruction Decode, one stage later. Under TradCore the zero word
	// is a logged no-op. The policy moves the failure out of fetch; it does
	// not let execution run on.
	FetchFaultZero
)

// ParseFetchFaultPolicy parses "abort" or "zero".
func ParseFetchFaultPolicy(name string) (FetchFaultPolicy, error) {
	switch name {
	case "", "abort":
		return FetchFaultAbort, nil
	case "zero":
		return FetchFaultZero, nil
	default:
		return 0, fmt.Errorf("unknown fetch fault policy %q (want abort or zero)", name)
	}
}
