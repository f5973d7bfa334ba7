package cache

import (
	"github.com/sarchlab/mips64sim/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore. Bytes outside the
// memory read as zero and are not written.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := m.memory.LoadByte(addr + uint64(i))
		if err == nil {
			data[i] = b
		}
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		_ = m.memory.StoreByte(addr+uint64(i), b)
	}
}
