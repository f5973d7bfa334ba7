package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips64sim/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read and write registers by index", func() {
		regFile.WriteReg(9, 0xDEADBEEF)
		Expect(regFile.ReadReg(9)).To(Equal(uint64(0xDEADBEEF)))
		Expect(regFile.GPR[9]).To(Equal(uint64(0xDEADBEEF)))
	})

	It("should keep $zero at zero", func() {
		regFile.WriteReg(0, 42)
		regFile.Set(emu.RegZero, 42)

		Expect(regFile.ReadReg(0)).To(BeZero())
		Expect(regFile.Get(emu.RegZero)).To(BeZero())
		Expect(regFile.GPR[0]).To(BeZero())
	})

	It("should ignore out-of-range indices", func() {
		regFile.WriteReg(32, 1)
		Expect(regFile.ReadReg(32)).To(BeZero())
	})

	It("should address the PC by name", func() {
		regFile.Set(emu.RegPC, 0x40)
		Expect(regFile.PC).To(Equal(uint64(0x40)))
		Expect(regFile.Get(emu.RegPC)).To(Equal(uint64(0x40)))
	})

	DescribeTable("String",
		func(reg emu.GpRegister, expected string) {
			Expect(reg.String()).To(Equal(expected))
		},
		Entry("zero", emu.RegZero, "zero"),
		Entry("t1", emu.RegT1, "t1"),
		Entry("ra", emu.RegRA, "ra"),
		Entry("pc", emu.RegPC, "pc"),
	)

	DescribeTable("ParseRegister",
		func(name string, expected emu.GpRegister) {
			reg, err := emu.ParseRegister(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(reg).To(Equal(expected))
		},
		Entry("ABI name", "t1", emu.RegT1),
		Entry("ABI name with $", "$s0", emu.RegS0),
		Entry("upper case", "$SP", emu.RegSP),
		Entry("number", "$9", emu.RegT1),
		Entry("r-number", "r31", emu.RegRA),
		Entry("pc", "pc", emu.RegPC),
	)

	It("should reject unknown register names", func() {
		_, err := emu.ParseRegister("x5")
		Expect(err).To(HaveOccurred())

		_, err = emu.ParseRegister("$32")
		Expect(err).To(HaveOccurred())
	})
})
