// Package fpu provides the MIPS64 floating-point coprocessor (COP1) that
// rides alongside the main datapath.
//
// The coprocessor does not fetch on its own. The datapath hands it the raw
// instruction word during Instruction Fetch and then calls one hook per
// stage, so both units always work on the same instruction. Words that are
// not COP1 instructions leave the coprocessor idle for that instruction.
package fpu

import (
	"fmt"
	"math"

	"github.com/sarchlab/mips64sim/insts"
)

// NumFPRs is the number of floating-point registers.
const NumFPRs = 32

// Operation selects what the coprocessor does in its execute stage.
type Operation uint8

// Coprocessor operations.
const (
	OpNone Operation = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMoveToFPR
)

// Signals is the coprocessor's control-signal bundle.
type Signals struct {
	// Operation is the execute-stage operation.
	Operation Operation

	// Double is true for 64-bit (fmt D, DMTC1) operations.
	Double bool

	// RegWrite enables the FPR write in the writeback stage.
	RegWrite bool

	// DataWrite, when set, makes the coprocessor's data register win the
	// main processor's register writeback arbitration.
	DataWrite bool
}

// State holds the coprocessor's data lines for the current instruction.
type State struct {
	Instruction    uint32
	Fs, Ft, Fd     uint8
	ReadDataS      uint64
	ReadDataT      uint64
	DataFromMain   uint64
	FPDataFromMain uint64
	Result         uint64
	Destination    uint8
}

// Coprocessor is the floating-point unit.
type Coprocessor struct {
	// FPR holds $f0 through $f31. Single-precision values occupy the low 32
	// bits.
	FPR [NumFPRs]uint64

	decoder *insts.Decoder
	signals Signals
	state   State
}

// New creates an idle coprocessor with zeroed registers.
func New() *Coprocessor {
	return &Coprocessor{decoder: insts.NewDecoder()}
}

// Signals returns the current control signals.
func (c *Coprocessor) Signals() Signals {
	return c.signals
}

// State returns a copy of the current data lines.
func (c *Coprocessor) State() State {
	return c.state
}

// SetInstruction latches the word fetched by the main datapath.
func (c *Coprocessor) SetInstruction(word uint32) {
	c.state = State{Instruction: word}
	c.signals = Signals{}
}

// StageInstructionDecode decodes the latched word. Non-COP1 words leave the
// coprocessor idle. A COP1 encoding the coprocessor does not implement is an
// *insts.UnsupportedError.
func (c *Coprocessor) StageInstructionDecode() error {
	inst, err := c.decoder.Decode(c.state.Instruction)
	if err != nil {
		// The main decoder reports undecodable words.
		return nil
	}

	f, ok := inst.(insts.FpuRType)
	if !ok {
		return nil
	}

	c.state.Fs, c.state.Ft, c.state.Fd = f.Fs, f.Ft, f.Fd
	c.state.ReadDataS = c.FPR[f.Fs]
	c.state.ReadDataT = c.FPR[f.Ft]

	switch f.Fmt {
	case insts.FmtS, insts.FmtD:
		op, ok := arithmeticOps[f.Function]
		if !ok {
			return unsupported(f, "unsupported arithmetic function")
		}
		c.signals = Signals{Operation: op, Double: f.Fmt == insts.FmtD, RegWrite: true}
		c.state.Destination = f.Fd
	case insts.FmtMT, insts.FmtDMT:
		c.signals = Signals{Operation: OpMoveToFPR, Double: f.Fmt == insts.FmtDMT, RegWrite: true}
		c.state.Destination = f.Fs
	default:
		return unsupported(f, fmt.Sprintf("unsupported fmt %d", f.Fmt))
	}

	return nil
}

var arithmeticOps = map[uint8]Operation{
	insts.FpuFunctADD: OpAdd,
	insts.FpuFunctSUB: OpSub,
	insts.FpuFunctMUL: OpMul,
	insts.FpuFunctDIV: OpDiv,
}

func unsupported(f insts.FpuRType, detail string) error {
	return &insts.UnsupportedError{
		Opcode: f.Op, Funct: f.Function, HasFunct: true,
		Detail: "cop1: " + detail,
	}
}

// SetDataFromMainProcessor receives the main datapath's second register
// read, used by MTC1 and DMTC1.
func (c *Coprocessor) SetDataFromMainProcessor(data uint64) {
	c.state.DataFromMain = data
}

// StageExecute performs the floating-point operation.
func (c *Coprocessor) StageExecute() {
	switch c.signals.Operation {
	case OpNone:
	case OpMoveToFPR:
		if c.signals.Double {
			c.state.Result = c.state.DataFromMain
		} else {
			c.state.Result = uint64(uint32(c.state.DataFromMain))
		}
	default:
		if c.signals.Double {
			c.state.Result = arithmetic64(c.signals.Operation, c.state.ReadDataS, c.state.ReadDataT)
		} else {
			c.state.Result = arithmetic32(c.signals.Operation, c.state.ReadDataS, c.state.ReadDataT)
		}
	}
}

func arithmetic64(op Operation, s, t uint64) uint64 {
	a, b := math.Float64frombits(s), math.Float64frombits(t)

	var r float64
	switch op {
	case OpAdd:
		r = a + b
	case OpSub:
		r = a - b
	case OpMul:
		r = a * b
	case OpDiv:
		r = a / b
	}
	return math.Float64bits(r)
}

func arithmetic32(op Operation, s, t uint64) uint64 {
	a, b := math.Float32frombits(uint32(s)), math.Float32frombits(uint32(t))

	var r float32
	switch op {
	case OpAdd:
		r = a + b
	case OpSub:
		r = a - b
	case OpMul:
		r = a * b
	case OpDiv:
		r = a / b
	}
	return uint64(math.Float32bits(r))
}

// StageMemory is the coprocessor's memory stage. No implemented COP1
// instruction touches memory.
func (c *Coprocessor) StageMemory() {}

// SetFPRegisterDataFromMainProcessor receives the main datapath's
// pre-writeback value.
func (c *Coprocessor) SetFPRegisterDataFromMainProcessor(data uint64) {
	c.state.FPDataFromMain = data
}

// StageWriteback writes the coprocessor result to its register file.
func (c *Coprocessor) StageWriteback() {
	if c.signals.RegWrite {
		c.FPR[c.state.Destination] = c.state.Result
	}
}

// DataWrite reports whether the coprocessor claims the main register
// writeback for this instruction.
func (c *Coprocessor) DataWrite() bool {
	return c.signals.DataWrite
}

// DataRegister returns the value offered to the main register writeback:
// the fs register read during decode.
func (c *Coprocessor) DataRegister() uint64 {
	return c.state.ReadDataS
}
