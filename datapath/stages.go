package datapath

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mips64sim/insts"
)

// stageInstructionFetch loads the word at PC and hands it to the
// coprocessor. It clears everything left from the previous instruction.
func (d *Datapath) stageInstructionFetch() error {
	d.state = State{}
	d.signals = ControlSignals{}
	d.instruction = nil

	word, err := d.fetch(d.regFile.PC)
	if err != nil {
		return err
	}

	d.state.Instruction = word
	d.coprocessor.SetInstruction(word)

	return nil
}

// fetch loads an instruction word, applying the fetch fault policy.
func (d *Datapath) fetch(pc uint64) (uint32, error) {
	word, err := d.memory.LoadWord(pc)
	if err == nil {
		return word, nil
	}

	if d.fetchFaultPolicy == FetchFaultZero {
		d.logger.WithField("pc", pc).WithError(err).Warn("Instruction fetch failed, using zero word")
		return 0, nil
	}

	return 0, fmt.Errorf("instruction fetch: %w", err)
}

// stageInstructionDecode decodes the word, derives the control signals and
// reads the source registers.
func (d *Datapath) stageInstructionDecode() error {
	inst, err := d.decoder.Decode(d.state.Instruction)
	if err != nil {
		return err
	}
	d.instruction = inst

	switch i := inst.(type) {
	case insts.RType:
		d.state.Rs = i.Rs
		d.state.Rt = i.Rt
		d.state.Rd = i.Rd
		d.state.Shamt = i.Shamt
		d.state.Funct = i.Funct
	case insts.IType:
		d.state.Rs = i.Rs
		d.state.Rt = i.Rt
		d.state.Imm = i.Immediate
	case insts.FpuRType:
		// MTC1 and DMTC1 move the GPR named by ft.
		d.state.Rt = i.Ft
	}

	d.state.SignExtend = uint64(int64(int16(d.state.Imm)))

	signals, err := deriveControlSignals(inst)
	if err != nil {
		return err
	}

	d.state.ReadData1 = d.regFile.ReadReg(d.state.Rs)
	d.state.ReadData2 = d.regFile.ReadReg(d.state.Rt)
	if signals.RegWidth == RegWidthWord {
		d.state.ReadData1 = uint64(uint32(d.state.ReadData1))
		d.state.ReadData2 = uint64(uint32(d.state.ReadData2))
	}

	signals.AluControl, err = deriveALUControl(signals.AluOp, d.state.Funct, d.state.Shamt)
	if err != nil {
		return err
	}
	d.signals = signals

	if err := d.coprocessor.StageInstructionDecode(); err != nil {
		return err
	}
	d.coprocessor.SetDataFromMainProcessor(d.state.ReadData2)

	return nil
}

func (d *Datapath) stageExecute() {
	d.state.ALUResult = ALU(ALUInput{
		ReadData1:  d.state.ReadData1,
		ReadData2:  d.state.ReadData2,
		SignExtend: d.state.SignExtend,
		Imm:        d.state.Imm,
		AluSrc:     d.signals.AluSrc,
		ImmShift:   d.signals.ImmShift,
		RegWidth:   d.signals.RegWidth,
		AluControl: d.signals.AluControl,
	})

	d.coprocessor.StageExecute()
}

// stageMemory performs the load or store at the ALU result address and
// selects the value heading to writeback. A failed load reads as 0 and a
// failed store is dropped.
func (d *Datapath) stageMemory() {
	addr := d.state.ALUResult
	size := 8
	if d.signals.RegWidth == RegWidthWord {
		size = 4
	}

	if d.signals.MemRead == YesRead {
		d.state.MemoryData = d.readData(addr, size)
	}

	if d.signals.MemWrite == YesWrite {
		value := d.state.ReadData2
		if d.signals.MemWriteSrc == MemWriteSrcFloatingPointUnit {
			value = d.coprocessor.DataRegister()
		}
		d.writeData(addr, size, value)
	}

	switch d.signals.MemToReg {
	case MemToRegUseMemory:
		d.state.DataResult = d.state.MemoryData
	default:
		d.state.DataResult = d.state.ALUResult
	}

	d.coprocessor.StageMemory()
}

func (d *Datapath) readData(addr uint64, size int) uint64 {
	if err := d.memory.CheckAccess(addr, size); err != nil {
		d.logger.WithFields(logrus.Fields{
			"addr": addr,
			"size": size,
		}).WithError(err).Debug("Memory read failed, using zero")
		return 0
	}

	if d.dataCache != nil {
		return d.dataCache.Read(addr, size).Data
	}

	if size == 4 {
		word, _ := d.memory.LoadWord(addr)
		return uint64(word)
	}
	value, _ := d.memory.LoadDoubleWord(addr)
	return value
}

func (d *Datapath) writeData(addr uint64, size int, value uint64) {
	if err := d.memory.CheckAccess(addr, size); err != nil {
		d.logger.WithFields(logrus.Fields{
			"addr": addr,
			"size": size,
		}).WithError(err).Debug("Memory write failed, ignored")
		return
	}

	if d.dataCache != nil {
		d.dataCache.Write(addr, size, value)
		return
	}

	if size == 4 {
		_ = d.memory.StoreWord(addr, uint32(value))
		return
	}
	_ = d.memory.StoreDoubleWord(addr, value)
}

func (d *Datapath) stageWriteBack() {
	d.coprocessor.SetFPRegisterDataFromMainProcessor(d.state.DataResult)
	d.registerWrite()
	d.regFile.PC += 4
	d.coprocessor.StageWriteback()
}

// registerWrite arbitrates between the main unit and the coprocessor and
// writes the destination register.
func (d *Datapath) registerWrite() {
	value := d.state.DataResult
	if d.coprocessor.DataWrite() {
		value = d.coprocessor.DataRegister()
	}

	if d.signals.RegWidth == RegWidthWord {
		value = uint64(int64(int32(uint32(value))))
	}
	d.state.RegisterWriteData = value

	if d.signals.RegWrite == NoRegWrite {
		return
	}

	var dest uint8
	switch d.signals.RegDst {
	case RegDstReg1:
		dest = d.state.Rs
	case RegDstReg2:
		dest = d.state.Rt
	default:
		dest = d.state.Rd
	}

	// WriteReg ignores $zero.
	d.regFile.WriteReg(dest, value)
}
