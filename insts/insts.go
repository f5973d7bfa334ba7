// Package insts provides MIPS64 instruction definitions and decoding.
//
// A raw 32-bit word decodes into one of four closed instruction formats,
// selected by the opcode in bits [31:26]:
//   - RType: opcode 0 (SPECIAL), register-register arithmetic and logic
//   - IType: immediate arithmetic, loads and stores, REGIMM, branches
//   - JType: J and JAL
//   - FpuRType: COP1, parsed with the floating-point unit's field layout
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x01294820) // add $t1, $t1, $t1
//	if err != nil {
//		return err
//	}
//	fmt.Println(insts.Disassemble(inst))
package insts

import "fmt"

// Primary opcodes, bits [31:26].
const (
	OpcodeSpecial uint8 = 0x00
	OpcodeRegimm  uint8 = 0x01
	OpcodeJ       uint8 = 0x02
	OpcodeJAL     uint8 = 0x03
	OpcodeBEQ     uint8 = 0x04
	OpcodeBNE     uint8 = 0x05
	OpcodeADDI    uint8 = 0x08
	OpcodeADDIU   uint8 = 0x09
	OpcodeSLTI    uint8 = 0x0a
	OpcodeSLTIU   uint8 = 0x0b
	OpcodeANDI    uint8 = 0x0c
	OpcodeORI     uint8 = 0x0d
	OpcodeAUI     uint8 = 0x0f // LUI when rs is $zero
	OpcodeCOP1    uint8 = 0x11
	OpcodeDADDI   uint8 = 0x18
	OpcodeDADDIU  uint8 = 0x19
	OpcodeLW      uint8 = 0x23
	OpcodeSW      uint8 = 0x2b
	OpcodeLD      uint8 = 0x37
	OpcodeSD      uint8 = 0x3f
)

// Function codes for SPECIAL (R-type) instructions, bits [5:0].
const (
	FunctSOP30 uint8 = 0x18 // MUL, MUH
	FunctSOP31 uint8 = 0x19 // MULU, MUHU
	FunctSOP32 uint8 = 0x1a // DIV, MOD
	FunctSOP33 uint8 = 0x1b // DIVU, MODU
	FunctSOP34 uint8 = 0x1c // DMUL, DMUH
	FunctSOP35 uint8 = 0x1d // DMULU, DMUHU
	FunctSOP36 uint8 = 0x1e // DDIV, DMOD
	FunctSOP37 uint8 = 0x1f // DDIVU, DMODU
	FunctADD   uint8 = 0x20
	FunctADDU  uint8 = 0x21
	FunctSUB   uint8 = 0x22
	FunctSUBU  uint8 = 0x23
	FunctAND   uint8 = 0x24
	FunctOR    uint8 = 0x25
	FunctSLT   uint8 = 0x2a
	FunctSLTU  uint8 = 0x2b
	FunctDADD  uint8 = 0x2c
	FunctDADDU uint8 = 0x2d
	FunctDSUB  uint8 = 0x2e
	FunctDSUBU uint8 = 0x2f
)

// Release 6 sub-function selectors carried in the shamt field of the SOP
// function groups.
const (
	EncMUL  uint8 = 0b00010
	EncMUH  uint8 = 0b00011
	EncMULU uint8 = 0b00010
	EncMUHU uint8 = 0b00011
	EncDIV  uint8 = 0b00010
	EncMOD  uint8 = 0b00011
	EncDIVU uint8 = 0b00010
	EncMODU uint8 = 0b00011
)

// REGIMM selectors carried in the rt field.
const (
	RegimmDAHI uint8 = 0b00110
	RegimmDATI uint8 = 0b11110
)

// COP1 format selectors carried in bits [25:21].
const (
	FmtMF  uint8 = 0b00000
	FmtDMF uint8 = 0b00001
	FmtMT  uint8 = 0b00100
	FmtDMT uint8 = 0b00101
	FmtS   uint8 = 0b10000
	FmtD   uint8 = 0b10001
)

// COP1 arithmetic function codes.
const (
	FpuFunctADD uint8 = 0b000000
	FpuFunctSUB uint8 = 0b000001
	FpuFunctMUL uint8 = 0b000010
	FpuFunctDIV uint8 = 0b000011
)

// Instruction is a decoded MIPS64 instruction. The concrete type is one of
// RType, IType, JType or FpuRType.
type Instruction interface {
	// Opcode returns bits [31:26] of the encoded word.
	Opcode() uint8

	isInstruction()
}

// RType is a SPECIAL register-register instruction.
type RType struct {
	Op    uint8
	Rs    uint8
	Rt    uint8
	Rd    uint8
	Shamt uint8
	Funct uint8
}

// IType is an instruction carrying a 16-bit immediate.
type IType struct {
	Op        uint8
	Rs        uint8
	Rt        uint8
	Immediate uint16
}

// JType is a jump instruction with a 26-bit target.
type JType struct {
	Op     uint8
	Target uint32
}

// FpuRType is a COP1 instruction.
type FpuRType struct {
	Op       uint8
	Fmt      uint8
	Ft       uint8
	Fs       uint8
	Fd       uint8
	Function uint8
}

// Opcode returns the primary opcode.
func (r RType) Opcode() uint8 { return r.Op }

// Opcode returns the primary opcode.
func (i IType) Opcode() uint8 { return i.Op }

// Opcode returns the primary opcode.
func (j JType) Opcode() uint8 { return j.Op }

// Opcode returns the primary opcode.
func (f FpuRType) Opcode() uint8 { return f.Op }

func (RType) isInstruction()    {}
func (IType) isInstruction()    {}
func (JType) isInstruction()    {}
func (FpuRType) isInstruction() {}

// DecodeError reports a word whose opcode has no instruction format.
type DecodeError struct {
	Word   uint32
	Opcode uint8
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unsupported opcode 0x%02x in instruction word 0x%08x", e.Opcode, e.Word)
}

// UnsupportedError reports a decoded instruction that has no execution
// mapping. For R-type instructions Funct and Shamt identify the function
// and sub-function selector; HasFunct is false for other formats.
type UnsupportedError struct {
	Opcode   uint8
	Funct    uint8
	Shamt    uint8
	HasFunct bool
	Detail   string
}

func (e *UnsupportedError) Error() string {
	msg := fmt.Sprintf("unsupported instruction: opcode 0x%02x", e.Opcode)
	if e.HasFunct {
		msg += fmt.Sprintf(", funct 0x%02x, shamt 0x%02x", e.Funct, e.Shamt)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}
