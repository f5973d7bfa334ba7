package emu

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mips64sim/insts"
)

// TradCore executes decoded instructions by dispatching directly on their
// opcode and function fields, without control signals or stages. It is the
// reference model for the staged datapath: on every instruction both
// support, the register and memory effects are identical.
//
// An instruction TradCore does not support leaves all architectural state,
// the PC included, untouched; Execute reports it with a
// *insts.UnsupportedError and logs a warning.
type TradCore struct {
	regFile *RegFile
	memory  *Memory
	logger  *logrus.Logger
}

// TradCoreOption is a functional option for configuring the TradCore.
type TradCoreOption func(*TradCore)

// WithTradLogger sets the logger used for diagnostics.
func WithTradLogger(logger *logrus.Logger) TradCoreOption {
	return func(c *TradCore) {
		c.logger = logger
	}
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

// NewTradCore creates a direct interpreter over the given state.
func NewTradCore(regFile *RegFile, memory *Memory, opts ...TradCoreOption) *TradCore {
	c := &TradCore{
		regFile: regFile,
		memory:  memory,
		logger:  discardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Execute applies one instruction and advances the PC by 4.
func (c *TradCore) Execute(inst insts.Instruction) error {
	var err error

	switch i := inst.(type) {
	case insts.RType:
		err = c.executeRType(i)
	case insts.IType:
		err = c.executeIType(i)
	default:
		err = &insts.UnsupportedError{Opcode: opcodeOf(inst), Detail: "no direct interpreter mapping"}
	}

	// $zero is re-cleared whether or not anything targeted it.
	c.regFile.GPR[0] = 0

	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"pc":          c.regFile.PC,
			"instruction": disassemble(inst),
		}).WithError(err).Warn("Instruction not implemented in direct interpreter")
		return err
	}

	c.regFile.PC += 4
	return nil
}

func opcodeOf(inst insts.Instruction) uint8 {
	if inst == nil {
		return 0
	}
	return inst.Opcode()
}

func disassemble(inst insts.Instruction) string {
	if inst == nil {
		return "<undecodable>"
	}
	return insts.Disassemble(inst)
}

// signExtend32 truncates to the low 32 bits and sign-extends to 64.
func signExtend32(v uint64) uint64 {
	return uint64(int64(int32(uint32(v))))
}

// signExtend16 sign-extends a 16-bit immediate to 64 bits.
func signExtend16(imm uint16) uint64 {
	return uint64(int64(int16(imm)))
}

func (c *TradCore) executeRType(r insts.RType) error {
	rs := c.regFile.ReadReg(r.Rs)
	rt := c.regFile.ReadReg(r.Rt)

	var result uint64

	switch r.Funct {
	case insts.FunctADD, insts.FunctADDU:
		// rs + rt goes into rd, 32-bit wraparound
		result = signExtend32(uint64(uint32(rs) + uint32(rt)))
	case insts.FunctSUB, insts.FunctSUBU:
		result = signExtend32(uint64(uint32(rs) - uint32(rt)))
	case insts.FunctDADD, insts.FunctDADDU:
		result = rs + rt
	case insts.FunctDSUB, insts.FunctDSUBU:
		result = rs - rt
	case insts.FunctAND:
		result = rs & rt
	case insts.FunctOR:
		result = rs | rt
	case insts.FunctSLT:
		result = boolToUint64(int64(rs) < int64(rt))
	case insts.FunctSLTU:
		result = boolToUint64(rs < rt)
	case insts.FunctSOP30, insts.FunctSOP31, insts.FunctSOP32, insts.FunctSOP33,
		insts.FunctSOP34, insts.FunctSOP35, insts.FunctSOP36, insts.FunctSOP37:
		var ok bool
		result, ok = c.executeSOP(r, rs, rt)
		if !ok {
			return &insts.UnsupportedError{
				Opcode: r.Op, Funct: r.Funct, Shamt: r.Shamt, HasFunct: true,
				Detail: "unsupported Release 6 sub-function",
			}
		}
	default:
		return &insts.UnsupportedError{Opcode: r.Op, Funct: r.Funct, Shamt: r.Shamt, HasFunct: true}
	}

	c.regFile.WriteReg(r.Rd, result)
	return nil
}

// executeSOP handles the Release 6 multiply and divide groups, where shamt
// selects the sub-function. Only the low-product and quotient forms exist.
func (c *TradCore) executeSOP(r insts.RType, rs, rt uint64) (uint64, bool) {
	switch r.Funct {
	case insts.FunctSOP30: // mul
		if r.Shamt != insts.EncMUL {
			return 0, false
		}
		return signExtend32(uint64(uint32(int32(rs) * int32(rt)))), true
	case insts.FunctSOP31: // mulu
		if r.Shamt != insts.EncMULU {
			return 0, false
		}
		return signExtend32(uint64(uint32(rs) * uint32(rt))), true
	case insts.FunctSOP32: // div
		if r.Shamt != insts.EncDIV {
			return 0, false
		}
		return signExtend32(divSigned(signExtend32(rs), signExtend32(rt))), true
	case insts.FunctSOP33: // divu
		if r.Shamt != insts.EncDIVU {
			return 0, false
		}
		return signExtend32(divUnsigned(uint64(uint32(rs)), uint64(uint32(rt)))), true
	case insts.FunctSOP34: // dmul
		if r.Shamt != insts.EncMUL {
			return 0, false
		}
		return uint64(int64(rs) * int64(rt)), true
	case insts.FunctSOP35: // dmulu
		if r.Shamt != insts.EncMULU {
			return 0, false
		}
		return rs * rt, true
	case insts.FunctSOP36: // ddiv
		if r.Shamt != insts.EncDIV {
			return 0, false
		}
		return divSigned(rs, rt), true
	case insts.FunctSOP37: // ddivu
		if r.Shamt != insts.EncDIVU {
			return 0, false
		}
		return divUnsigned(rs, rt), true
	}
	return 0, false
}

// divSigned divides with truncation toward zero. A zero divisor yields 0.
func divSigned(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return uint64(int64(a) / int64(b))
}

// divUnsigned divides unsigned. A zero divisor yields 0.
func divUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (c *TradCore) executeIType(i insts.IType) error {
	rs := c.regFile.ReadReg(i.Rs)
	imm := signExtend16(i.Immediate)
	zimm := uint64(i.Immediate)

	switch i.Op {
	case insts.OpcodeADDI, insts.OpcodeADDIU:
		c.regFile.WriteReg(i.Rt, signExtend32(rs+imm))
	case insts.OpcodeDADDI, insts.OpcodeDADDIU:
		c.regFile.WriteReg(i.Rt, rs+imm)
	case insts.OpcodeSLTI:
		c.regFile.WriteReg(i.Rt, boolToUint64(int64(rs) < int64(imm)))
	case insts.OpcodeSLTIU:
		c.regFile.WriteReg(i.Rt, boolToUint64(rs < imm))
	case insts.OpcodeANDI:
		c.regFile.WriteReg(i.Rt, rs&zimm)
	case insts.OpcodeORI:
		c.regFile.WriteReg(i.Rt, rs|zimm)
	case insts.OpcodeAUI:
		c.regFile.WriteReg(i.Rt, signExtend32(rs+imm<<16))
	case insts.OpcodeRegimm:
		return c.executeRegimm(i, rs, imm)
	case insts.OpcodeLW:
		// 32-bit address arithmetic, matching the word-width datapath
		addr := signExtend32(rs + imm)
		word, err := c.memory.LoadWord(addr)
		if err != nil {
			word = 0
		}
		c.regFile.WriteReg(i.Rt, signExtend32(uint64(word)))
	case insts.OpcodeSW:
		addr := signExtend32(rs + imm)
		_ = c.memory.StoreWord(addr, uint32(c.regFile.ReadReg(i.Rt)))
	case insts.OpcodeLD:
		value, err := c.memory.LoadDoubleWord(rs + imm)
		if err != nil {
			value = 0
		}
		c.regFile.WriteReg(i.Rt, value)
	case insts.OpcodeSD:
		_ = c.memory.StoreDoubleWord(rs+imm, c.regFile.ReadReg(i.Rt))
	default:
		return &insts.UnsupportedError{Opcode: i.Op}
	}

	return nil
}

// executeRegimm handles DAHI and DATI, which add a shifted immediate to rs
// in place.
func (c *TradCore) executeRegimm(i insts.IType, rs, imm uint64) error {
	switch i.Rt {
	case insts.RegimmDAHI:
		c.regFile.WriteReg(i.Rs, rs+imm<<32)
	case insts.RegimmDATI:
		c.regFile.WriteReg(i.Rs, rs+imm<<48)
	default:
		return &insts.UnsupportedError{Opcode: i.Op, Detail: "unsupported REGIMM selector"}
	}
	return nil
}
