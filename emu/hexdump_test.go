package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips64sim/emu"
)

var _ = Describe("FormattedHex", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemoryWithSize(256)
	})

	It("should print rows with an ASCII column", func() {
		Expect(memory.StoreWord(0x0, 0x4D495053)).To(Succeed()) // "MIPS"

		out := memory.FormattedHex(0, 16)

		Expect(out).To(Equal(
			"0x00000000: 4d495053 00000000 00000000 00000000 |MIPS............|\n"))
	})

	It("should collapse repeated rows", func() {
		Expect(memory.StoreWord(0x40, 0x01020304)).To(Succeed())

		out := memory.FormattedHex(0, 0x60)

		Expect(out).To(Equal(
			"0x00000000: 00000000 00000000 00000000 00000000 |................|\n" +
				"*\n" +
				"0x00000040: 01020304 00000000 00000000 00000000 |................|\n" +
				"0x00000050: 00000000 00000000 00000000 00000000 |................|\n"))
	})

	It("should clip to the memory size", func() {
		out := memory.FormattedHex(0xF0, 0x100)
		Expect(out).To(HavePrefix("0x000000f0: "))
		Expect(out).To(HaveSuffix("|\n"))
	})
})
