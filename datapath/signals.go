package datapath

// AluOp is the primary ALU operation signal set from the opcode.
type AluOp uint8

// ALU operation classes.
const (
	AluOpAddition AluOp = iota
	AluOpSubtraction
	AluOpSetOnLessThanSigned
	AluOpSetOnLessThanUnsigned
	AluOpAnd
	AluOpOr
	AluOpLeftShift16
	// AluOpUseFunctField defers to the funct field (and, for the Release 6
	// SOP groups, the shamt sub-selector) during ALU control derivation.
	AluOpUseFunctField
)

// AluControl is the operation the ALU actually performs.
type AluControl uint8

// ALU control codes.
const (
	AluControlAddition AluControl = iota
	AluControlSubtraction
	AluControlSetOnLessThanSigned
	AluControlSetOnLessThanUnsigned
	AluControlAnd
	AluControlOr
	AluControlLeftShift16
	AluControlNot
	AluControlMultiplicationSigned
	AluControlMultiplicationUnsigned
	AluControlDivisionSigned
	AluControlDivisionUnsigned
)

var aluControlNames = [...]string{
	"Addition", "Subtraction", "SetOnLessThanSigned", "SetOnLessThanUnsigned",
	"And", "Or", "LeftShift16", "Not",
	"MultiplicationSigned", "MultiplicationUnsigned",
	"DivisionSigned", "DivisionUnsigned",
}

func (c AluControl) String() string {
	if int(c) < len(aluControlNames) {
		return aluControlNames[c]
	}
	return "Unknown"
}

// AluSrc selects the ALU's second operand.
type AluSrc uint8

// ALU operand-2 sources.
const (
	AluSrcReadRegister2 AluSrc = iota
	AluSrcSignExtendedImmediate
	AluSrcZeroExtendedImmediate
)

// ImmShift is the left shift applied to the sign-extended immediate.
type ImmShift uint8

// Immediate shift amounts.
const (
	ImmShift0 ImmShift = iota
	ImmShift16
	ImmShift32
	ImmShift48
)

// Branch enables a conditional PC update.
type Branch uint8

// Branch values.
const (
	NoBranch Branch = iota
	YesBranch
)

// Jump enables an unconditional PC update.
type Jump uint8

// Jump values.
const (
	NoJump Jump = iota
	YesJump
)

// MemRead enables a memory read in the Memory stage.
type MemRead uint8

// MemRead values.
const (
	NoRead MemRead = iota
	YesRead
)

// MemWrite enables a memory write in the Memory stage.
type MemWrite uint8

// MemWrite values.
const (
	NoWrite MemWrite = iota
	YesWrite
)

// MemToReg selects the value heading to register writeback.
type MemToReg uint8

// MemToReg values.
const (
	MemToRegUseAlu MemToReg = iota
	MemToRegUseMemory
)

// MemWriteSrc selects which unit supplies the data for a memory write.
type MemWriteSrc uint8

// MemWriteSrc values.
const (
	MemWriteSrcPrimaryUnit MemWriteSrc = iota
	MemWriteSrcFloatingPointUnit
)

// RegDst selects which instruction field names the destination register.
type RegDst uint8

// RegDst values. Reg1 is rs, Reg2 is rt, Reg3 is rd.
const (
	RegDstReg1 RegDst = iota
	RegDstReg2
	RegDstReg3
)

// RegWidth is the operand width of the instruction.
type RegWidth uint8

// RegWidth values.
const (
	RegWidthWord RegWidth = iota
	RegWidthDoubleWord
)

func (w RegWidth) String() string {
	if w == RegWidthWord {
		return "Word"
	}
	return "DoubleWord"
}

// RegWrite enables the register writeback.
type RegWrite uint8

// RegWrite values.
const (
	NoRegWrite RegWrite = iota
	YesRegWrite
)

// ControlSignals is the bundle of control signals for one instruction.
type ControlSignals struct {
	AluOp       AluOp
	AluControl  AluControl
	AluSrc      AluSrc
	ImmShift    ImmShift
	Branch      Branch
	Jump        Jump
	MemRead     MemRead
	MemWrite    MemWrite
	MemToReg    MemToReg
	MemWriteSrc MemWriteSrc
	RegDst      RegDst
	RegWidth    RegWidth
	RegWrite    RegWrite
}
