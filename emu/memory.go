package emu

import (
	"encoding/binary"
	"fmt"
)

// DefaultMemorySize is the size of a memory created by NewMemory.
const DefaultMemorySize = 64 * 1024

// MemoryError describes an access that is out of range or misaligned.
type MemoryError struct {
	Addr   uint64
	Size   int
	Reason string
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("invalid %d-byte access at 0x%x: %s", e.Size, e.Addr, e.Reason)
}

// MemoryReader is the read-only view of memory handed to presentation code.
type MemoryReader interface {
	Size() uint64
	LoadByte(addr uint64) (uint8, error)
	LoadWord(addr uint64) (uint32, error)
	LoadDoubleWord(addr uint64) (uint64, error)
	FormattedHex(start, length uint64) string
}

// Memory is a flat, byte-addressable, big-endian store. Word and doubleword
// accesses must be naturally aligned.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of DefaultMemorySize bytes.
func NewMemory() *Memory {
	return NewMemoryWithSize(DefaultMemorySize)
}

// NewMemoryWithSize creates a zeroed memory of the given size in bytes.
func NewMemoryWithSize(size uint64) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// CheckAccess validates an access of size bytes at addr without performing
// it.
func (m *Memory) CheckAccess(addr uint64, size int) error {
	if addr%uint64(size) != 0 {
		return &MemoryError{Addr: addr, Size: size, Reason: "misaligned"}
	}
	if addr > m.Size() || m.Size()-addr < uint64(size) {
		return &MemoryError{Addr: addr, Size: size, Reason: "out of range"}
	}
	return nil
}

// LoadByte reads one byte.
func (m *Memory) LoadByte(addr uint64) (uint8, error) {
	if err := m.CheckAccess(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// StoreByte writes one byte.
func (m *Memory) StoreByte(addr uint64, value uint8) error {
	if err := m.CheckAccess(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// LoadWord reads a 32-bit word.
func (m *Memory) LoadWord(addr uint64) (uint32, error) {
	if err := m.CheckAccess(addr, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.data[addr:]), nil
}

// StoreWord writes a 32-bit word.
func (m *Memory) StoreWord(addr uint64, value uint32) error {
	if err := m.CheckAccess(addr, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(m.data[addr:], value)
	return nil
}

// LoadDoubleWord reads a 64-bit doubleword.
func (m *Memory) LoadDoubleWord(addr uint64) (uint64, error) {
	if err := m.CheckAccess(addr, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(m.data[addr:]), nil
}

// StoreDoubleWord writes a 64-bit doubleword.
func (m *Memory) StoreDoubleWord(addr uint64, value uint64) error {
	if err := m.CheckAccess(addr, 8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(m.data[addr:], value)
	return nil
}
