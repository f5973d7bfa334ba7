// Package datapath provides the pseudo-single-cycle MIPS64 datapath.
//
// One instruction at a time passes through five stages: Instruction Fetch,
// Instruction Decode, Execute, Memory and WriteBack. Each stage is driven by
// the control signals derived during decode. Callers may step the datapath
// one stage at a time to observe the intermediate data lines, or run a
// whole instruction at once. A coprocessor (the floating-point unit by
// default) is notified at every stage so it always works on the same
// instruction as the main unit.
package datapath

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mips64sim/cache"
	"github.com/sarchlab/mips64sim/emu"
	"github.com/sarchlab/mips64sim/fpu"
	"github.com/sarchlab/mips64sim/insts"
)

// InstructionBase is the byte address LoadInstructions stores the first
// instruction word at.
const InstructionBase = 4

// Datapath executes MIPS64 instructions stage by stage.
type Datapath struct {
	regFile     *emu.RegFile
	memory      *emu.Memory
	coprocessor Coprocessor
	fpu         *fpu.Coprocessor
	decoder     *insts.Decoder
	tradCore    *emu.TradCore

	dataCacheConfig *cache.Config
	dataCache       *cache.Cache

	// Per-instruction wiring, cleared in Instruction Fetch.
	instruction insts.Instruction
	signals     ControlSignals
	state       State

	currentStage     Stage
	halted           error
	fetchFaultPolicy FetchFaultPolicy
	instructionCount uint64

	logger *logrus.Logger
}

// Option is a functional option for configuring the Datapath.
type Option func(*Datapath)

// WithRegFile sets the register file the datapath operates on.
func WithRegFile(regFile *emu.RegFile) Option {
	return func(d *Datapath) {
		d.regFile = regFile
	}
}

// WithMemory sets the memory the datapath operates on.
func WithMemory(memory *emu.Memory) Option {
	return func(d *Datapath) {
		d.memory = memory
	}
}

// WithCoprocessor replaces the floating-point unit with another
// coprocessor.
func WithCoprocessor(c Coprocessor) Option {
	return func(d *Datapath) {
		d.coprocessor = c
		d.fpu, _ = c.(*fpu.Coprocessor)
	}
}

// WithLogger sets the logger. Stage traces are logged at debug level.
func WithLogger(logger *logrus.Logger) Option {
	return func(d *Datapath) {
		d.logger = logger
	}
}

// WithFetchFaultPolicy sets what a failed instruction fetch does.
func WithFetchFaultPolicy(policy FetchFaultPolicy) Option {
	return func(d *Datapath) {
		d.fetchFaultPolicy = policy
	}
}

// WithDataCache routes Memory-stage accesses through a write-through data
// cache with the given geometry. New fails when the geometry does not pass
// cache.Config.Validate.
func WithDataCache(config cache.Config) Option {
	return func(d *Datapath) {
		d.dataCacheConfig = &config
	}
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

// New creates a datapath with a zeroed register file, a memory of
// emu.DefaultMemorySize bytes and a floating-point coprocessor.
func New(opts ...Option) (*Datapath, error) {
	coprocessor := fpu.New()

	d := &Datapath{
		regFile:     &emu.RegFile{},
		memory:      emu.NewMemory(),
		coprocessor: coprocessor,
		fpu:         coprocessor,
		decoder:     insts.NewDecoder(),
		logger:      discardLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.tradCore = emu.NewTradCore(d.regFile, d.memory, emu.WithTradLogger(d.logger))

	if d.dataCacheConfig != nil {
		dataCache, err := cache.New(*d.dataCacheConfig, cache.NewMemoryBacking(d.memory))
		if err != nil {
			return nil, fmt.Errorf("data cache: %w", err)
		}
		d.dataCache = dataCache
	}

	return d, nil
}

// RegFile returns the register file.
func (d *Datapath) RegFile() *emu.RegFile {
	return d.regFile
}

// Register reads a register by name.
func (d *Datapath) Register(reg emu.GpRegister) uint64 {
	return d.regFile.Get(reg)
}

// Registers returns a copy of the register file.
func (d *Datapath) Registers() emu.RegFile {
	return *d.regFile
}

// Memory returns a read-only view of memory.
func (d *Datapath) Memory() emu.MemoryReader {
	return d.memory
}

// Coprocessor returns the attached coprocessor.
func (d *Datapath) Coprocessor() Coprocessor {
	return d.coprocessor
}

// FPR reads a floating-point register. It returns 0 when the attached
// coprocessor is not the floating-point unit.
func (d *Datapath) FPR(index uint8) uint64 {
	if d.fpu == nil || int(index) >= fpu.NumFPRs {
		return 0
	}
	return d.fpu.FPR[index]
}

// State returns a copy of the current data lines.
func (d *Datapath) State() State {
	return d.state
}

// Signals returns the control signals of the current instruction.
func (d *Datapath) Signals() ControlSignals {
	return d.signals
}

// Instruction returns the decoded current instruction, or nil before
// decode.
func (d *Datapath) Instruction() insts.Instruction {
	return d.instruction
}

// CurrentStage returns the stage the next ExecuteStage call performs.
func (d *Datapath) CurrentStage() Stage {
	return d.currentStage
}

// Halted returns the fatal error that halted the datapath, or nil.
func (d *Datapath) Halted() error {
	return d.halted
}

// InstructionCount returns the number of instructions completed.
func (d *Datapath) InstructionCount() uint64 {
	return d.instructionCount
}

// DataCacheStats returns the data cache statistics. ok is false when the
// datapath has no data cache.
func (d *Datapath) DataCacheStats() (stats cache.Statistics, ok bool) {
	if d.dataCache == nil {
		return cache.Statistics{}, false
	}
	return d.dataCache.Stats(), true
}

// SetPC positions the program counter.
func (d *Datapath) SetPC(pc uint64) {
	d.regFile.PC = pc
}

// LoadInstructions stores the words at consecutive word addresses starting
// at InstructionBase. It stops at the first failed store.
func (d *Datapath) LoadInstructions(words []uint32) error {
	return d.LoadProgram(InstructionBase, words)
}

// LoadProgram stores the words at consecutive word addresses starting at
// base. It stops at the first failed store.
func (d *Datapath) LoadProgram(base uint64, words []uint32) error {
	for i, word := range words {
		addr := base + 4*uint64(i)
		if err := d.memory.StoreWord(addr, word); err != nil {
			return fmt.Errorf("loading instruction %d at 0x%x: %w", i, addr, err)
		}
	}

	if d.dataCache != nil {
		d.dataCache.InvalidateAll()
	}

	return nil
}

// ExecuteInstruction runs one instruction through the staged datapath. If
// the datapath is mid-instruction it only finishes that instruction.
func (d *Datapath) ExecuteInstruction() error {
	return d.ExecuteInstructionSelect(DatapathCore)
}

// ExecuteInstructionSelect runs one instruction with the chosen core. If
// the datapath is mid-instruction it finishes that instruction through the
// stages and returns, whatever core was chosen.
//
// Under TradCore, an instruction that cannot be decoded or interpreted
// leaves all state unchanged and its error is returned without halting.
func (d *Datapath) ExecuteInstructionSelect(core CoreSelect) error {
	if d.halted != nil {
		return fmt.Errorf("%w: %w", ErrHalted, d.halted)
	}

	if d.currentStage != StageInstructionFetch {
		return d.finishInstruction()
	}

	if core == TradCore {
		return d.executeTrad()
	}

	for i := 0; i < numStages; i++ {
		if err := d.ExecuteStage(); err != nil {
			return err
		}
	}

	return nil
}

func (d *Datapath) finishInstruction() error {
	for d.currentStage != StageInstructionFetch {
		if err := d.ExecuteStage(); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteStage performs the current stage and advances to the next one. A
// failure is returned as a *FatalError and halts the datapath.
func (d *Datapath) ExecuteStage() error {
	if d.halted != nil {
		return fmt.Errorf("%w: %w", ErrHalted, d.halted)
	}

	stage := d.currentStage
	pc := d.regFile.PC

	var err error
	switch stage {
	case StageInstructionFetch:
		err = d.stageInstructionFetch()
	case StageInstructionDecode:
		err = d.stageInstructionDecode()
	case StageExecute:
		d.stageExecute()
	case StageMemory:
		d.stageMemory()
	case StageWriteBack:
		d.stageWriteBack()
	}

	if err != nil {
		return d.halt(stage, pc, err)
	}

	d.logger.WithFields(logrus.Fields{
		"stage":       stage.String(),
		"pc":          pc,
		"instruction": fmt.Sprintf("0x%08x", d.state.Instruction),
	}).Debug("Stage complete")

	if stage == StageWriteBack {
		d.instructionCount++
	}
	d.currentStage = stage.Next()

	return nil
}

func (d *Datapath) halt(stage Stage, pc uint64, err error) error {
	fatal := &FatalError{Stage: stage, PC: pc, Err: err}
	d.halted = fatal
	d.logger.WithFields(logrus.Fields{
		"stage": stage.String(),
		"pc":    pc,
	}).WithError(err).Error("Datapath halted")
	return fatal
}

// executeTrad fetches through the shared fetch path and hands the decoded
// instruction to the direct interpreter.
func (d *Datapath) executeTrad() error {
	pc := d.regFile.PC

	word, err := d.fetch(pc)
	if err != nil {
		return d.halt(StageInstructionFetch, pc, err)
	}

	d.state = State{Instruction: word}
	d.signals = ControlSignals{}
	d.instruction = nil

	inst, err := d.decoder.Decode(word)
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"pc":          pc,
			"instruction": fmt.Sprintf("0x%08x", word),
		}).WithError(err).Warn("Instruction not decodable in direct interpreter")
		return err
	}
	d.instruction = inst

	if err := d.tradCore.Execute(inst); err != nil {
		return err
	}

	// The interpreter writes memory directly.
	if d.dataCache != nil && isStore(inst) {
		d.dataCache.InvalidateAll()
	}

	d.instructionCount++
	return nil
}

func isStore(inst insts.Instruction) bool {
	i, ok := inst.(insts.IType)
	return ok && (i.Op == insts.OpcodeSW || i.Op == insts.OpcodeSD)
}
