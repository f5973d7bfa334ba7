package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadHex reads a text program of 32-bit instruction words written in
// hexadecimal, with or without a 0x prefix. Words may share a line. '#'
// and "//" start comments. The words are placed consecutively from base,
// which is also the entry point.
func LoadHex(r io.Reader, base uint64) (*Program, error) {
	if base%4 != 0 {
		return nil, fmt.Errorf("text base 0x%x is not word aligned", base)
	}

	var data []byte
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}

		for _, field := range strings.Fields(text) {
			digits := strings.TrimPrefix(strings.ToLower(field), "0x")
			word, err := strconv.ParseUint(digits, 16, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid instruction word %q: %w", line, field, err)
			}
			data = binary.BigEndian.AppendUint32(data, uint32(word))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text program: %w", err)
	}

	return &Program{
		EntryPoint: base,
		Segments: []Segment{{
			VirtAddr: base,
			Data:     data,
			MemSize:  uint64(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagExecute,
		}},
	}, nil
}
