// Package emu provides the MIPS64 architectural state and a direct
// instruction interpreter.
package emu

import (
	"fmt"
	"strings"

	"github.com/sarchlab/mips64sim/insts"
)

// GpRegister names a general-purpose register or the program counter.
type GpRegister uint8

// Register names, in register-file order. RegPC is not part of the GPR
// array.
const (
	RegZero GpRegister = iota
	RegAT
	RegV0
	RegV1
	RegA0
	RegA1
	RegA2
	RegA3
	RegT0
	RegT1
	RegT2
	RegT3
	RegT4
	RegT5
	RegT6
	RegT7
	RegS0
	RegS1
	RegS2
	RegS3
	RegS4
	RegS5
	RegS6
	RegS7
	RegT8
	RegT9
	RegK0
	RegK1
	RegGP
	RegSP
	RegFP
	RegRA
	RegPC
)

// NumGPRs is the number of general-purpose registers.
const NumGPRs = 32

func (r GpRegister) String() string {
	if r == RegPC {
		return "pc"
	}
	return insts.RegisterName(uint8(r))
}

// ParseRegister resolves a register by ABI name ("t1", "$t1", "pc") or by
// number ("$9", "r9").
func ParseRegister(name string) (GpRegister, error) {
	n := strings.ToLower(strings.TrimPrefix(name, "$"))
	if n == "pc" {
		return RegPC, nil
	}
	for i := uint8(0); i < NumGPRs; i++ {
		if insts.RegisterName(i) == n {
			return GpRegister(i), nil
		}
	}

	var index int
	if _, err := fmt.Sscanf(strings.TrimPrefix(n, "r"), "%d", &index); err == nil &&
		index >= 0 && index < NumGPRs {
		return GpRegister(index), nil
	}

	return 0, fmt.Errorf("unknown register %q", name)
}

// RegFile represents the MIPS64 general-purpose register file.
type RegFile struct {
	// GPR holds $zero through $ra. GPR[0] is kept at zero by every writer
	// in this package.
	GPR [NumGPRs]uint64

	// PC is the program counter.
	PC uint64
}

// ReadReg reads a register by index. Index 0 and out-of-range indices
// return 0.
func (r *RegFile) ReadReg(index uint8) uint64 {
	if index == 0 || index >= NumGPRs {
		return 0
	}
	return r.GPR[index]
}

// WriteReg writes a register by index. Writes to $zero are ignored.
func (r *RegFile) WriteReg(index uint8, value uint64) {
	if index == 0 || index >= NumGPRs {
		return
	}
	r.GPR[index] = value
}

// Get reads a register by name.
func (r *RegFile) Get(reg GpRegister) uint64 {
	if reg == RegPC {
		return r.PC
	}
	return r.ReadReg(uint8(reg))
}

// Set writes a register by name. Writes to $zero are ignored.
func (r *RegFile) Set(reg GpRegister, value uint64) {
	if reg == RegPC {
		r.PC = value
		return
	}
	r.WriteReg(uint8(reg), value)
}
