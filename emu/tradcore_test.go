package emu_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/mips64sim/emu"
	"github.com/sarchlab/mips64sim/insts"
)

var _ = Describe("TradCore", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		core    *emu.TradCore
		logBuf  *bytes.Buffer
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		logBuf = &bytes.Buffer{}
		logger := logrus.New()
		logger.Out = logBuf
		core = emu.NewTradCore(regFile, memory, emu.WithTradLogger(logger))
	})

	rType := func(rs, rt, rd, shamt, funct uint8) insts.RType {
		return insts.RType{Rs: rs, Rt: rt, Rd: rd, Shamt: shamt, Funct: funct}
	}

	iType := func(op, rs, rt uint8, imm uint16) insts.IType {
		return insts.IType{Op: op, Rs: rs, Rt: rt, Immediate: imm}
	}

	Context("register-register arithmetic", func() {
		It("should add and advance the PC", func() {
			regFile.Set(emu.RegT1, 5)

			Expect(core.Execute(rType(9, 9, 9, 0, insts.FunctADD))).To(Succeed())

			Expect(regFile.Get(emu.RegT1)).To(Equal(uint64(10)))
			Expect(regFile.PC).To(Equal(uint64(4)))
		})

		It("should truncate and sign-extend word adds", func() {
			regFile.Set(emu.RegT4, 0x92492492)

			Expect(core.Execute(rType(12, 12, 12, 0, insts.FunctADD))).To(Succeed())

			Expect(regFile.Get(emu.RegT4)).To(Equal(uint64(613566756)))
		})

		It("should sign-extend a negative word result", func() {
			regFile.Set(emu.RegT0, 1)
			regFile.Set(emu.RegT1, 2)

			Expect(core.Execute(rType(8, 9, 10, 0, insts.FunctSUB))).To(Succeed())

			Expect(regFile.Get(emu.RegT2)).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
		})

		It("should keep doubleword results whole", func() {
			regFile.Set(emu.RegT0, 0x100000000)
			regFile.Set(emu.RegT1, 0x100000000)

			Expect(core.Execute(rType(8, 9, 10, 0, insts.FunctDADDU))).To(Succeed())

			Expect(regFile.Get(emu.RegT2)).To(Equal(uint64(0x200000000)))
		})

		It("should divide signed doublewords toward zero", func() {
			dividend := int64(-6245352518120328878)
			regFile.Set(emu.RegA2, uint64(dividend))
			regFile.Set(emu.RegA1, 123)

			Expect(core.Execute(rType(6, 5, 7, insts.EncDIV, insts.FunctSOP36))).To(Succeed())

			Expect(int64(regFile.Get(emu.RegA3))).To(Equal(int64(-50775223724555519)))
		})

		It("should yield zero for division by zero", func() {
			regFile.Set(emu.RegT0, 9)
			regFile.Set(emu.RegT2, 1)

			Expect(core.Execute(rType(8, 0, 10, insts.EncDIVU, insts.FunctSOP33))).To(Succeed())

			Expect(regFile.Get(emu.RegT2)).To(BeZero())
		})

		It("should keep the low bits of a product", func() {
			regFile.Set(emu.RegT0, 0xFFFFFFFFFFFFFFFF)

			Expect(core.Execute(rType(8, 8, 9, insts.EncMULU, insts.FunctSOP35))).To(Succeed())

			Expect(regFile.Get(emu.RegT1)).To(Equal(uint64(1)))
		})
	})

	Context("immediate instructions", func() {
		It("should or an immediate", func() {
			Expect(core.Execute(iType(insts.OpcodeORI, 0, 16, 12345))).To(Succeed())
			Expect(regFile.Get(emu.RegS0)).To(Equal(uint64(12345)))
		})

		It("should add a negative immediate", func() {
			regFile.Set(emu.RegT0, 10)

			Expect(core.Execute(iType(insts.OpcodeDADDIU, 8, 9, 0xFFFF))).To(Succeed())

			Expect(regFile.Get(emu.RegT1)).To(Equal(uint64(9)))
		})

		It("should add to the upper halves with dahi and dati", func() {
			Expect(core.Execute(iType(insts.OpcodeRegimm, 4, insts.RegimmDAHI, 2))).To(Succeed())
			Expect(core.Execute(iType(insts.OpcodeRegimm, 4, insts.RegimmDATI, 3))).To(Succeed())

			Expect(regFile.Get(emu.RegA0)).To(Equal(uint64(0x0003000200000000)))
		})
	})

	Context("loads and stores", func() {
		It("should round-trip a word", func() {
			regFile.Set(emu.RegT0, 4)
			regFile.Set(emu.RegT1, 0xff)

			Expect(core.Execute(iType(insts.OpcodeSW, 8, 9, 4))).To(Succeed())
			Expect(memory.LoadWord(8)).To(Equal(uint32(0xff)))

			Expect(core.Execute(iType(insts.OpcodeLW, 8, 10, 4))).To(Succeed())
			Expect(regFile.Get(emu.RegT2)).To(Equal(uint64(0xff)))
		})

		It("should round-trip a doubleword", func() {
			regFile.Set(emu.RegT0, 0x100)
			regFile.Set(emu.RegT1, 0x0123456789ABCDEF)

			Expect(core.Execute(iType(insts.OpcodeSD, 8, 9, 0xFFF8))).To(Succeed())
			Expect(memory.LoadDoubleWord(0xF8)).To(Equal(uint64(0x0123456789ABCDEF)))

			Expect(core.Execute(iType(insts.OpcodeLD, 8, 10, 0xFFF8))).To(Succeed())
			Expect(regFile.Get(emu.RegT2)).To(Equal(uint64(0x0123456789ABCDEF)))
		})

		It("should read zero from an invalid address", func() {
			regFile.Set(emu.RegT1, 5)

			Expect(core.Execute(iType(insts.OpcodeLW, 0, 9, 0x2))).To(Succeed())

			Expect(regFile.Get(emu.RegT1)).To(BeZero())
		})
	})

	Context("unsupported instructions", func() {
		It("should leave state unchanged and warn", func() {
			regFile.Set(emu.RegT1, 3)
			before := *regFile

			err := core.Execute(rType(9, 9, 9, 0, 0x00))

			var unsupported *insts.UnsupportedError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
			Expect(*regFile).To(Equal(before))
			Expect(logBuf.String()).To(ContainSubstring("level=warning"))
			Expect(logBuf.String()).To(ContainSubstring("pc=0"))
		})

		It("should reject an unknown sub-function", func() {
			err := core.Execute(rType(9, 9, 9, insts.EncMOD, insts.FunctSOP36))
			Expect(err).To(HaveOccurred())
			Expect(regFile.PC).To(BeZero())
		})

		It("should reject jumps", func() {
			err := core.Execute(insts.JType{Op: insts.OpcodeJ, Target: 4})
			Expect(err).To(HaveOccurred())
		})
	})

	It("should re-clear $zero after every instruction", func() {
		regFile.GPR[0] = 99

		Expect(core.Execute(iType(insts.OpcodeORI, 0, 8, 1))).To(Succeed())

		Expect(regFile.GPR[0]).To(BeZero())
		Expect(regFile.Get(emu.RegT0)).To(Equal(uint64(1)))
	})
})
