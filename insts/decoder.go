package insts

// Decoder decodes MIPS64 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS64 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit MIPS64 instruction word. The format is chosen by
// the opcode alone; an opcode with no known format is a *DecodeError.
func (d *Decoder) Decode(word uint32) (Instruction, error) {
	op := uint8((word >> 26) & 0x3F) // bits [31:26]

	switch op {
	case OpcodeSpecial:
		return d.decodeRType(word), nil
	case OpcodeCOP1:
		return d.decodeFpuRType(word), nil
	case OpcodeJ, OpcodeJAL:
		return JType{Op: op, Target: word & 0x3FFFFFF}, nil
	case OpcodeRegimm, OpcodeBEQ, OpcodeBNE,
		OpcodeADDI, OpcodeADDIU, OpcodeDADDI, OpcodeDADDIU,
		OpcodeSLTI, OpcodeSLTIU, OpcodeANDI, OpcodeORI, OpcodeAUI,
		OpcodeLW, OpcodeSW, OpcodeLD, OpcodeSD:
		return d.decodeIType(word), nil
	default:
		return nil, &DecodeError{Word: word, Opcode: op}
	}
}

// decodeRType slices a SPECIAL instruction.
// Format: 000000 | rs | rt | rd | shamt | funct
func (d *Decoder) decodeRType(word uint32) RType {
	return RType{
		Op:    uint8((word >> 26) & 0x3F),
		Rs:    uint8((word >> 21) & 0x1F), // bits [25:21]
		Rt:    uint8((word >> 16) & 0x1F), // bits [20:16]
		Rd:    uint8((word >> 11) & 0x1F), // bits [15:11]
		Shamt: uint8((word >> 6) & 0x1F),  // bits [10:6]
		Funct: uint8(word & 0x3F),         // bits [5:0]
	}
}

// decodeIType slices an immediate instruction.
// Format: op | rs | rt | imm16
func (d *Decoder) decodeIType(word uint32) IType {
	return IType{
		Op:        uint8((word >> 26) & 0x3F),
		Rs:        uint8((word >> 21) & 0x1F),
		Rt:        uint8((word >> 16) & 0x1F),
		Immediate: uint16(word & 0xFFFF),
	}
}

// decodeFpuRType slices a COP1 instruction.
// Format: 010001 | fmt | ft | fs | fd | function
func (d *Decoder) decodeFpuRType(word uint32) FpuRType {
	return FpuRType{
		Op:       uint8((word >> 26) & 0x3F),
		Fmt:      uint8((word >> 21) & 0x1F),
		Ft:       uint8((word >> 16) & 0x1F),
		Fs:       uint8((word >> 11) & 0x1F),
		Fd:       uint8((word >> 6) & 0x1F),
		Function: uint8(word & 0x3F),
	}
}
