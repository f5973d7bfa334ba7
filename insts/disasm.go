package insts

import "fmt"

var registerNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegisterName returns the ABI name of a general-purpose register, without
// the leading '$'.
func RegisterName(index uint8) string {
	if int(index) >= len(registerNames) {
		return fmt.Sprintf("r%d", index)
	}
	return registerNames[index]
}

var rTypeMnemonics = map[uint8]string{
	FunctADD:   "add",
	FunctADDU:  "addu",
	FunctSUB:   "sub",
	FunctSUBU:  "subu",
	FunctAND:   "and",
	FunctOR:    "or",
	FunctSLT:   "slt",
	FunctSLTU:  "sltu",
	FunctDADD:  "dadd",
	FunctDADDU: "daddu",
	FunctDSUB:  "dsub",
	FunctDSUBU: "dsubu",
}

// sopMnemonics maps a SOP function group to its low/high sub-function names.
var sopMnemonics = map[uint8][2]string{
	FunctSOP30: {"mul", "muh"},
	FunctSOP31: {"mulu", "muhu"},
	FunctSOP32: {"div", "mod"},
	FunctSOP33: {"divu", "modu"},
	FunctSOP34: {"dmul", "dmuh"},
	FunctSOP35: {"dmulu", "dmuhu"},
	FunctSOP36: {"ddiv", "dmod"},
	FunctSOP37: {"ddivu", "dmodu"},
}

var iTypeMnemonics = map[uint8]string{
	OpcodeBEQ:    "beq",
	OpcodeBNE:    "bne",
	OpcodeADDI:   "addi",
	OpcodeADDIU:  "addiu",
	OpcodeDADDI:  "daddi",
	OpcodeDADDIU: "daddiu",
	OpcodeSLTI:   "slti",
	OpcodeSLTIU:  "sltiu",
	OpcodeANDI:   "andi",
	OpcodeORI:    "ori",
	OpcodeLW:     "lw",
	OpcodeSW:     "sw",
	OpcodeLD:     "ld",
	OpcodeSD:     "sd",
}

// Disassemble renders an instruction in assembler syntax. Encodings without
// a mnemonic are rendered by their raw fields.
func Disassemble(inst Instruction) string {
	switch i := inst.(type) {
	case RType:
		return disassembleR(i)
	case IType:
		return disassembleI(i)
	case JType:
		name := "j"
		if i.Op == OpcodeJAL {
			name = "jal"
		}
		return fmt.Sprintf("%s 0x%07x", name, i.Target)
	case FpuRType:
		return disassembleFpu(i)
	default:
		return "<nil>"
	}
}

func reg(index uint8) string {
	return "$" + RegisterName(index)
}

func disassembleR(r RType) string {
	if name, ok := rTypeMnemonics[r.Funct]; ok {
		return fmt.Sprintf("%s %s, %s, %s", name, reg(r.Rd), reg(r.Rs), reg(r.Rt))
	}
	if names, ok := sopMnemonics[r.Funct]; ok {
		switch r.Shamt {
		case 0b00010:
			return fmt.Sprintf("%s %s, %s, %s", names[0], reg(r.Rd), reg(r.Rs), reg(r.Rt))
		case 0b00011:
			return fmt.Sprintf("%s %s, %s, %s", names[1], reg(r.Rd), reg(r.Rs), reg(r.Rt))
		}
	}
	return fmt.Sprintf("special rs=%d rt=%d rd=%d shamt=%d funct=0x%02x",
		r.Rs, r.Rt, r.Rd, r.Shamt, r.Funct)
}

func disassembleI(i IType) string {
	imm := int16(i.Immediate)

	switch i.Op {
	case OpcodeLW, OpcodeSW, OpcodeLD, OpcodeSD:
		return fmt.Sprintf("%s %s, %d(%s)", iTypeMnemonics[i.Op], reg(i.Rt), imm, reg(i.Rs))
	case OpcodeANDI, OpcodeORI:
		return fmt.Sprintf("%s %s, %s, %d", iTypeMnemonics[i.Op], reg(i.Rt), reg(i.Rs), i.Immediate)
	case OpcodeAUI:
		if i.Rs == 0 {
			return fmt.Sprintf("lui %s, %d", reg(i.Rt), imm)
		}
		return fmt.Sprintf("aui %s, %s, %d", reg(i.Rt), reg(i.Rs), imm)
	case OpcodeRegimm:
		switch i.Rt {
		case RegimmDAHI:
			return fmt.Sprintf("dahi %s, %d", reg(i.Rs), imm)
		case RegimmDATI:
			return fmt.Sprintf("dati %s, %d", reg(i.Rs), imm)
		}
		return fmt.Sprintf("regimm rs=%d rt=%d imm=%d", i.Rs, i.Rt, imm)
	case OpcodeBEQ, OpcodeBNE:
		return fmt.Sprintf("%s %s, %s, %d", iTypeMnemonics[i.Op], reg(i.Rs), reg(i.Rt), imm)
	}

	if name, ok := iTypeMnemonics[i.Op]; ok {
		return fmt.Sprintf("%s %s, %s, %d", name, reg(i.Rt), reg(i.Rs), imm)
	}
	return fmt.Sprintf("op=0x%02x rs=%d rt=%d imm=%d", i.Op, i.Rs, i.Rt, imm)
}

func disassembleFpu(f FpuRType) string {
	switch f.Fmt {
	case FmtMT:
		return fmt.Sprintf("mtc1 %s, $f%d", reg(f.Ft), f.Fs)
	case FmtDMT:
		return fmt.Sprintf("dmtc1 %s, $f%d", reg(f.Ft), f.Fs)
	case FmtMF:
		return fmt.Sprintf("mfc1 %s, $f%d", reg(f.Ft), f.Fs)
	case FmtDMF:
		return fmt.Sprintf("dmfc1 %s, $f%d", reg(f.Ft), f.Fs)
	case FmtS, FmtD:
		suffix := "s"
		if f.Fmt == FmtD {
			suffix = "d"
		}
		names := [...]string{"add", "sub", "mul", "div"}
		if int(f.Function) < len(names) {
			return fmt.Sprintf("%s.%s $f%d, $f%d, $f%d", names[f.Function], suffix, f.Fd, f.Fs, f.Ft)
		}
	}
	return fmt.Sprintf("cop1 fmt=%d ft=%d fs=%d fd=%d function=0x%02x",
		f.Fmt, f.Ft, f.Fs, f.Fd, f.Function)
}
