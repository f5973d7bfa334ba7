package datapath

import "math/bits"

// ALUInput holds the ALU's data lines and the signals steering it.
type ALUInput struct {
	ReadData1  uint64
	ReadData2  uint64
	SignExtend uint64 // immediate sign-extended to 64 bits
	Imm        uint16 // raw immediate, for zero extension

	AluSrc     AluSrc
	ImmShift   ImmShift
	RegWidth   RegWidth
	AluControl AluControl
}

// ALU computes the ALU result. It is a pure function of its input.
//
// There is no overflow exception: addition, subtraction and multiplication
// wrap. Division by zero yields 0. For word-width operations both operands
// are reduced to their low 32 bits first (reinterpreted as signed, or as
// unsigned for the unsigned compare and divide), and the result is
// truncated to 32 bits and sign-extended.
func ALU(in ALUInput) uint64 {
	input1 := in.ReadData1
	input2 := selectOperand2(in)

	var result uint64
	if in.RegWidth == RegWidthWord {
		result = computeWord(in.AluControl, input1, input2)
		result = uint64(int64(int32(uint32(result))))
	} else {
		result = compute(in.AluControl, input1, input2)
	}

	return result
}

// selectOperand2 is the AluSrc multiplexer, with the sign-extended
// immediate pre-shifted by ImmShift.
func selectOperand2(in ALUInput) uint64 {
	switch in.AluSrc {
	case AluSrcSignExtendedImmediate:
		switch in.ImmShift {
		case ImmShift16:
			return in.SignExtend << 16
		case ImmShift32:
			return in.SignExtend << 32
		case ImmShift48:
			return in.SignExtend << 48
		default:
			return in.SignExtend
		}
	case AluSrcZeroExtendedImmediate:
		return uint64(in.Imm)
	default:
		return in.ReadData2
	}
}

// computeWord applies a word-width operation.
func computeWord(control AluControl, input1, input2 uint64) uint64 {
	switch control {
	case AluControlSetOnLessThanUnsigned, AluControlDivisionUnsigned:
		return compute(control, uint64(uint32(input1)), uint64(uint32(input2)))
	default:
		return compute(control,
			uint64(int64(int32(uint32(input1)))),
			uint64(int64(int32(uint32(input2)))))
	}
}

func compute(control AluControl, input1, input2 uint64) uint64 {
	switch control {
	case AluControlAddition:
		return input1 + input2
	case AluControlSubtraction:
		return input1 - input2
	case AluControlSetOnLessThanSigned:
		return boolToUint64(int64(input1) < int64(input2))
	case AluControlSetOnLessThanUnsigned:
		return boolToUint64(input1 < input2)
	case AluControlAnd:
		return input1 & input2
	case AluControlOr:
		return input1 | input2
	case AluControlLeftShift16:
		return input2 << 16
	case AluControlNot:
		return ^input1
	case AluControlMultiplicationSigned:
		return mulSignedLow(input1, input2)
	case AluControlMultiplicationUnsigned:
		_, lo := bits.Mul64(input1, input2)
		return lo
	case AluControlDivisionSigned:
		if input2 == 0 {
			return 0
		}
		return uint64(int64(input1) / int64(input2))
	case AluControlDivisionUnsigned:
		if input2 == 0 {
			return 0
		}
		return input1 / input2
	default:
		return 0
	}
}

// mulSignedLow returns the low 64 bits of the 128-bit signed product. The
// low half of a two's complement product does not depend on signedness.
func mulSignedLow(a, b uint64) uint64 {
	_, lo := bits.Mul64(a, b)
	return lo
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
