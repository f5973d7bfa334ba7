// Package loader provides program loading for the MIPS64 datapath, from
// big-endian MIPS64 ELF executables or from text files of instruction
// words.
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/mips64sim/emu"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment of a program.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded program ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments.
	Segments []Segment
}

// Open loads a program from path. ELF files are recognized by their magic
// number; anything else is read as hexadecimal instruction words placed at
// textBase.
func Open(path string, textBase uint64) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}

	if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return Load(path)
	}

	return LoadHex(bytes.NewReader(data), textBase)
}

// Load parses a big-endian MIPS64 ELF binary and returns a Program struct
// ready for loading into memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("not a 64-bit ELF file")
	}

	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("not a MIPS ELF file (machine type: %v)", f.Machine)
	}

	if f.Data != elf.ELFDATA2MSB {
		return nil, fmt.Errorf("not a big-endian ELF file (data encoding: %v)", f.Data)
	}

	prog := &Program{
		EntryPoint: f.Entry,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})
	}

	return prog, nil
}

// LoadInto copies every segment into memory, zero-filling the part of each
// segment beyond its file data.
func (p *Program) LoadInto(memory *emu.Memory) error {
	for _, seg := range p.Segments {
		size := seg.MemSize
		if uint64(len(seg.Data)) > size {
			size = uint64(len(seg.Data))
		}

		for i := uint64(0); i < size; i++ {
			var b byte
			if i < uint64(len(seg.Data)) {
				b = seg.Data[i]
			}
			if err := memory.StoreByte(seg.VirtAddr+i, b); err != nil {
				return fmt.Errorf("failed to load segment at 0x%x: %w", seg.VirtAddr, err)
			}
		}
	}

	return nil
}

// TextEnd returns the address just past the last executable segment's file
// data, or EntryPoint when there is none.
func (p *Program) TextEnd() uint64 {
	end := p.EntryPoint
	for _, seg := range p.Segments {
		if seg.Flags&SegmentFlagExecute == 0 {
			continue
		}
		if segEnd := seg.VirtAddr + uint64(len(seg.Data)); segEnd > end {
			end = segEnd
		}
	}
	return end
}
