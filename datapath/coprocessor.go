package datapath

// Coprocessor is the stage-synchronization contract between the datapath
// and a coprocessor such as the floating-point unit. The datapath calls the
// hooks in this order for every instruction:
//
//	IF:  SetInstruction
//	ID:  StageInstructionDecode, SetDataFromMainProcessor
//	EX:  StageExecute
//	MEM: StageMemory
//	WB:  SetFPRegisterDataFromMainProcessor, DataWrite/DataRegister,
//	     StageWriteback
type Coprocessor interface {
	SetInstruction(word uint32)
	// StageInstructionDecode returns an error for coprocessor encodings the
	// coprocessor cannot execute. Such an error is fatal.
	StageInstructionDecode() error
	SetDataFromMainProcessor(data uint64)
	StageExecute()
	StageMemory()
	SetFPRegisterDataFromMainProcessor(data uint64)
	StageWriteback()

	// DataWrite reports whether the coprocessor claims the main register
	// writeback. When it does, DataRegister supplies the value.
	DataWrite() bool
	DataRegister() uint64
}
