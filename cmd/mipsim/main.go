// Package main provides the entry point for mipsim.
// mipsim runs MIPS64 programs on the pseudo-single-cycle datapath.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mips64sim/config"
	"github.com/sarchlab/mips64sim/datapath"
	"github.com/sarchlab/mips64sim/emu"
	"github.com/sarchlab/mips64sim/loader"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	core       string
	stages     bool
	max        uint64
	base       uint64
	dump       bool
	verbose    bool
	program    string
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("mipsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML session configuration file")
	fs.StringVar(&opts.core, "core", "", "Execution core: datapath or trad")
	fs.BoolVar(&opts.stages, "stages", false, "Step the datapath one stage at a time and trace each stage (ignores -core)")
	fs.Uint64Var(&opts.max, "max", 0, "Stop after this many instructions (0 for no limit)")
	fs.Uint64Var(&opts.base, "base", 0, "Load address for hex text programs")
	fs.BoolVar(&opts.dump, "dump", false, "Dump the final data lines, control signals and instruction")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mipsim [options] <program>\n")
		fmt.Fprintf(stderr, "\nThe program is a big-endian MIPS64 ELF file or a text file of hex words.\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one program")
	}
	opts.program = fs.Arg(0)
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})

	return opts, nil
}

// sessionConfig loads the configuration file, if any, and applies the
// flags that were set on the command line.
func sessionConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.set["core"] {
		cfg.Core = opts.core
	}
	if opts.set["max"] {
		cfg.MaxInstructions = opts.max
	}
	if opts.set["base"] {
		cfg.ProgramBase = opts.base
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	logger := logrus.New()
	logger.Out = stderr
	logger.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := sessionConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	core, _ := cfg.CoreSelect()

	prog, err := loader.Open(opts.program, cfg.ProgramBase)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	memory := cfg.NewMemory()
	if err := prog.LoadInto(memory); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	dpOpts, err := cfg.Options(memory)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	dp, err := datapath.New(append(dpOpts, datapath.WithLogger(logger))...)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	dp.SetPC(prog.EntryPoint)

	if opts.verbose {
		fmt.Fprintf(stdout, "Loaded: %s\n", opts.program)
		fmt.Fprintf(stdout, "Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Fprintf(stdout, "Segments: %d\n", len(prog.Segments))
	}

	r := &runner{
		dp:        dp,
		core:      core,
		stages:    opts.stages,
		max:       cfg.MaxInstructions,
		textStart: prog.EntryPoint,
		textEnd:   prog.TextEnd(),
		out:       stdout,
	}
	stopReason, runErr := r.run()

	fmt.Fprintf(stdout, "\nProgram: %s\n", opts.program)
	fmt.Fprintf(stdout, "Core: %s\n", core)
	fmt.Fprintf(stdout, "Instructions executed: %d\n", dp.InstructionCount())
	fmt.Fprintf(stdout, "Stopped: %s\n", stopReason)

	printReport(stdout, dp, prog)

	if opts.dump {
		fmt.Fprintf(stdout, "\nFinal datapath state:\n")
		spew.Fdump(stdout, dp.State(), dp.Signals(), dp.Instruction())
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}

	return 0
}

// runner drives the datapath until the program ends.
type runner struct {
	dp        *datapath.Datapath
	core      datapath.CoreSelect
	stages    bool
	max       uint64
	textStart uint64
	textEnd   uint64
	out       io.Writer
}

func (r *runner) inText(pc uint64) bool {
	return pc >= r.textStart && pc < r.textEnd
}

// run executes instructions until a stop condition holds. A returned error
// means execution failed; the stop reason describes why the run ended.
func (r *runner) run() (string, error) {
	for {
		if r.max > 0 && r.dp.InstructionCount() >= r.max {
			return fmt.Sprintf("instruction limit %d reached", r.max), nil
		}

		pc := r.dp.RegFile().PC
		if !r.inText(pc) {
			return fmt.Sprintf("pc 0x%x left the program", pc), nil
		}

		var err error
		if r.stages {
			err = r.stepStages()
		} else {
			err = r.dp.ExecuteInstructionSelect(r.core)
		}

		if err != nil {
			if datapath.IsFatal(err) {
				return "fatal error", err
			}
			return "unsupported instruction", err
		}
	}
}

// stepStages runs one instruction stage by stage, tracing each stage.
func (r *runner) stepStages() error {
	for {
		stage := r.dp.CurrentStage()
		if err := r.dp.ExecuteStage(); err != nil {
			return err
		}

		state := r.dp.State()
		fmt.Fprintf(r.out, "[%d] %-3s pc=0x%x inst=0x%08x alu=0x%x data=0x%x\n",
			r.dp.InstructionCount(), stage, r.dp.RegFile().PC,
			state.Instruction, state.ALUResult, state.DataResult)

		if r.dp.CurrentStage() == datapath.StageInstructionFetch {
			return nil
		}
	}
}

// printReport prints the register file, the program region of memory and
// the data cache statistics.
func printReport(w io.Writer, dp *datapath.Datapath, prog *loader.Program) {
	regs := dp.Registers()

	fmt.Fprintf(w, "\nRegisters:\n")
	for i := 0; i < emu.NumGPRs; i++ {
		reg := emu.GpRegister(i)
		fmt.Fprintf(w, "  %-4s 0x%016x", reg, regs.Get(reg))
		if i%4 == 3 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "  %-4s 0x%016x\n", emu.RegPC, regs.PC)

	start, end := programRegion(prog)
	fmt.Fprintf(w, "\nMemory [0x%x, 0x%x):\n", start, end)
	fmt.Fprint(w, dp.Memory().FormattedHex(start, end-start))

	if stats, ok := dp.DataCacheStats(); ok {
		fmt.Fprintf(w, "\nData cache:\n")
		fmt.Fprintf(w, "  Reads:     %d\n", stats.Reads)
		fmt.Fprintf(w, "  Writes:    %d\n", stats.Writes)
		fmt.Fprintf(w, "  Hits:      %d\n", stats.Hits)
		fmt.Fprintf(w, "  Misses:    %d\n", stats.Misses)
		fmt.Fprintf(w, "  Evictions: %d\n", stats.Evictions)
	}
}

// programRegion returns the address range covered by the program's
// segments.
func programRegion(prog *loader.Program) (start, end uint64) {
	start, end = prog.EntryPoint, prog.TextEnd()
	for _, seg := range prog.Segments {
		if seg.VirtAddr < start {
			start = seg.VirtAddr
		}
		size := seg.MemSize
		if uint64(len(seg.Data)) > size {
			size = uint64(len(seg.Data))
		}
		if seg.VirtAddr+size > end {
			end = seg.VirtAddr + size
		}
	}
	return start, end
}
