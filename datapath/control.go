package datapath

import (
	"github.com/sarchlab/mips64sim/insts"
)

// Signal templates shared by instruction families. Derivation copies a
// template and then fills in what the opcode or funct field decides.
var (
	registerRegisterSignals = ControlSignals{
		AluOp:    AluOpUseFunctField,
		AluSrc:   AluSrcReadRegister2,
		MemToReg: MemToRegUseAlu,
		RegDst:   RegDstReg3,
		RegWrite: YesRegWrite,
	}

	immediateArithmeticSignals = ControlSignals{
		AluSrc:   AluSrcSignExtendedImmediate,
		MemToReg: MemToRegUseAlu,
		RegDst:   RegDstReg2,
		RegWrite: YesRegWrite,
	}

	loadSignals = ControlSignals{
		AluOp:    AluOpAddition,
		AluSrc:   AluSrcSignExtendedImmediate,
		MemRead:  YesRead,
		MemToReg: MemToRegUseMemory,
		RegDst:   RegDstReg2,
		RegWrite: YesRegWrite,
	}

	storeSignals = ControlSignals{
		AluOp:       AluOpAddition,
		AluSrc:      AluSrcSignExtendedImmediate,
		MemWrite:    YesWrite,
		MemToReg:    MemToRegUseMemory, // don't care
		MemWriteSrc: MemWriteSrcPrimaryUnit,
		RegDst:      RegDstReg2,
		RegWrite:    NoRegWrite,
	}

	// coprocessorOnlySignals has every main-unit side effect disabled. The
	// doubleword width lets DMTC1 forward a full register to the
	// coprocessor.
	coprocessorOnlySignals = ControlSignals{
		AluOp:    AluOpAddition,
		Branch:   NoBranch,
		Jump:     NoJump,
		MemRead:  NoRead,
		MemWrite: NoWrite,
		RegWidth: RegWidthDoubleWord,
		RegWrite: NoRegWrite,
	}
)

// deriveControlSignals sets the control signals for an instruction from its
// opcode, and for R-type instructions from its funct field. Any combination
// without a mapping is an *insts.UnsupportedError.
func deriveControlSignals(inst insts.Instruction) (ControlSignals, error) {
	switch i := inst.(type) {
	case insts.RType:
		return rTypeControlSignals(i)
	case insts.IType:
		return iTypeControlSignals(i)
	case insts.JType:
		return ControlSignals{}, &insts.UnsupportedError{
			Opcode: i.Op, Detail: "J-type instructions are not supported",
		}
	case insts.FpuRType:
		return coprocessorOnlySignals, nil
	default:
		return ControlSignals{}, &insts.UnsupportedError{Detail: "no instruction decoded"}
	}
}

// rTypeControlSignals sets the register-register template. Only the
// register width depends on funct here; the ALU operation itself is
// resolved later from funct by deriveALUControl.
func rTypeControlSignals(r insts.RType) (ControlSignals, error) {
	width, ok := regWidthByFunct(r.Funct)
	if !ok {
		return ControlSignals{}, &insts.UnsupportedError{
			Opcode: r.Op, Funct: r.Funct, Shamt: r.Shamt, HasFunct: true,
			Detail: "funct code is unsupported for this opcode",
		}
	}

	s := registerRegisterSignals
	s.RegWidth = width
	return s, nil
}

// regWidthByFunct returns the operand width of a SPECIAL function.
func regWidthByFunct(funct uint8) (RegWidth, bool) {
	switch funct {
	case insts.FunctADD, insts.FunctADDU, insts.FunctSUB, insts.FunctSUBU,
		insts.FunctSOP30, insts.FunctSOP31, insts.FunctSOP32, insts.FunctSOP33:
		return RegWidthWord, true
	case insts.FunctDADD, insts.FunctDADDU, insts.FunctDSUB, insts.FunctDSUBU,
		insts.FunctSOP34, insts.FunctSOP35, insts.FunctSOP36, insts.FunctSOP37,
		insts.FunctAND, insts.FunctOR, insts.FunctSLT, insts.FunctSLTU:
		return RegWidthDoubleWord, true
	default:
		return 0, false
	}
}

func iTypeControlSignals(i insts.IType) (ControlSignals, error) {
	var s ControlSignals

	switch i.Op {
	case insts.OpcodeORI:
		s = immediateArithmeticSignals
		s.AluOp = AluOpOr
		s.AluSrc = AluSrcZeroExtendedImmediate
		s.RegWidth = RegWidthDoubleWord

	case insts.OpcodeANDI:
		s = immediateArithmeticSignals
		s.AluOp = AluOpAnd
		s.AluSrc = AluSrcZeroExtendedImmediate
		s.RegWidth = RegWidthDoubleWord

	case insts.OpcodeADDI, insts.OpcodeADDIU:
		s = immediateArithmeticSignals
		s.AluOp = AluOpAddition
		s.RegWidth = RegWidthWord

	case insts.OpcodeDADDI, insts.OpcodeDADDIU:
		s = immediateArithmeticSignals
		s.AluOp = AluOpAddition
		s.RegWidth = RegWidthDoubleWord

	case insts.OpcodeSLTI:
		s = immediateArithmeticSignals
		s.AluOp = AluOpSetOnLessThanSigned
		s.RegWidth = RegWidthDoubleWord

	case insts.OpcodeSLTIU:
		s = immediateArithmeticSignals
		s.AluOp = AluOpSetOnLessThanUnsigned
		s.RegWidth = RegWidthDoubleWord

	case insts.OpcodeAUI:
		s = immediateArithmeticSignals
		s.RegWidth = RegWidthWord
		if i.Rs == 0 {
			// lui
			s.AluOp = AluOpLeftShift16
		} else {
			s.AluOp = AluOpAddition
			s.ImmShift = ImmShift16
		}

	case insts.OpcodeRegimm:
		return regimmControlSignals(i)

	case insts.OpcodeLW:
		s = loadSignals
		s.RegWidth = RegWidthWord

	case insts.OpcodeLD:
		s = loadSignals
		s.RegWidth = RegWidthDoubleWord

	case insts.OpcodeSW:
		s = storeSignals
		s.RegWidth = RegWidthWord

	case insts.OpcodeSD:
		s = storeSignals
		s.RegWidth = RegWidthDoubleWord

	default:
		return ControlSignals{}, &insts.UnsupportedError{
			Opcode: i.Op, Detail: "I-type opcode is unsupported",
		}
	}

	return s, nil
}

// regimmControlSignals handles DAHI and DATI, whose destination is the rs
// field.
func regimmControlSignals(i insts.IType) (ControlSignals, error) {
	s := immediateArithmeticSignals
	s.AluOp = AluOpAddition
	s.RegDst = RegDstReg1
	s.RegWidth = RegWidthDoubleWord

	switch i.Rt {
	case insts.RegimmDAHI:
		s.ImmShift = ImmShift32
	case insts.RegimmDATI:
		s.ImmShift = ImmShift48
	default:
		return ControlSignals{}, &insts.UnsupportedError{
			Opcode: i.Op, Detail: "REGIMM selector is unsupported",
		}
	}

	return s, nil
}

// deriveALUControl resolves the ALU control code from the AluOp signal,
// consulting funct and the shamt sub-selector when AluOp defers to them.
func deriveALUControl(op AluOp, funct, shamt uint8) (AluControl, error) {
	switch op {
	case AluOpAddition:
		return AluControlAddition, nil
	case AluOpSubtraction:
		return AluControlSubtraction, nil
	case AluOpSetOnLessThanSigned:
		return AluControlSetOnLessThanSigned, nil
	case AluOpSetOnLessThanUnsigned:
		return AluControlSetOnLessThanUnsigned, nil
	case AluOpAnd:
		return AluControlAnd, nil
	case AluOpOr:
		return AluControlOr, nil
	case AluOpLeftShift16:
		return AluControlLeftShift16, nil
	case AluOpUseFunctField:
		return aluControlByFunct(funct, shamt)
	default:
		return 0, &insts.UnsupportedError{Detail: "unknown ALU operation signal"}
	}
}

func aluControlByFunct(funct, shamt uint8) (AluControl, error) {
	switch funct {
	case insts.FunctADD, insts.FunctADDU, insts.FunctDADD, insts.FunctDADDU:
		return AluControlAddition, nil
	case insts.FunctSUB, insts.FunctSUBU, insts.FunctDSUB, insts.FunctDSUBU:
		return AluControlSubtraction, nil
	case insts.FunctAND:
		return AluControlAnd, nil
	case insts.FunctOR:
		return AluControlOr, nil
	case insts.FunctSLT:
		return AluControlSetOnLessThanSigned, nil
	case insts.FunctSLTU:
		return AluControlSetOnLessThanUnsigned, nil
	case insts.FunctSOP32, insts.FunctSOP36:
		if shamt == insts.EncDIV {
			return AluControlDivisionSigned, nil
		}
	case insts.FunctSOP33, insts.FunctSOP37:
		if shamt == insts.EncDIVU {
			return AluControlDivisionUnsigned, nil
		}
	case insts.FunctSOP30, insts.FunctSOP34:
		if shamt == insts.EncMUL {
			return AluControlMultiplicationSigned, nil
		}
	case insts.FunctSOP31, insts.FunctSOP35:
		if shamt == insts.EncMULU {
			return AluControlMultiplicationUnsigned, nil
		}
	default:
		return 0, &insts.UnsupportedError{
			Funct: funct, Shamt: shamt, HasFunct: true,
			Detail: "funct code is unsupported on ALU",
		}
	}

	return 0, &insts.UnsupportedError{
		Funct: funct, Shamt: shamt, HasFunct: true,
		Detail: "Release 6 encoding unsupported for this function code",
	}
}
