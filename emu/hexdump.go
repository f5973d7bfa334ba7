package emu

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const hexDumpRowSize = 16

// FormatHex writes a hex dump of [start, start+length) to w, sixteen bytes
// per row, with an ASCII column. Runs of identical rows collapse into a
// single "*" line. The range is clipped to the memory size.
func (m *Memory) FormatHex(w io.Writer, start, length uint64) error {
	end := start + length
	if end > m.Size() || end < start {
		end = m.Size()
	}
	start -= start % hexDumpRowSize

	var prev []byte
	collapsed := false

	for addr := start; addr < end; addr += hexDumpRowSize {
		rowEnd := addr + hexDumpRowSize
		if rowEnd > end {
			rowEnd = end
		}
		row := m.data[addr:rowEnd]

		if prev != nil && bytes.Equal(row, prev) && rowEnd < end {
			if !collapsed {
				if _, err := fmt.Fprintln(w, "*"); err != nil {
					return err
				}
				collapsed = true
			}
			continue
		}
		collapsed = false
		prev = row

		if _, err := fmt.Fprintf(w, "0x%08x: %s |%s|\n", addr, hexColumns(row), asciiColumn(row)); err != nil {
			return err
		}
	}

	return nil
}

// FormattedHex returns the FormatHex output as a string.
func (m *Memory) FormattedHex(start, length uint64) string {
	var sb strings.Builder
	_ = m.FormatHex(&sb, start, length)
	return sb.String()
}

func hexColumns(row []byte) string {
	var sb strings.Builder
	for i := 0; i < hexDumpRowSize; i++ {
		if i > 0 && i%4 == 0 {
			sb.WriteByte(' ')
		}
		if i < len(row) {
			fmt.Fprintf(&sb, "%02x", row[i])
		} else {
			sb.WriteString("  ")
		}
	}
	return sb.String()
}

func asciiColumn(row []byte) string {
	out := make([]byte, len(row))
	for i, b := range row {
		if b >= 0x20 && b < 0x7f {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
