package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips64sim/insts"
)

var _ = Describe("Disassemble", func() {
	DescribeTable("renders assembler syntax",
		func(inst insts.Instruction, expected string) {
			Expect(insts.Disassemble(inst)).To(Equal(expected))
		},
		Entry("add", insts.RType{Rs: 9, Rt: 9, Rd: 9, Funct: insts.FunctADD}, "add $t1, $t1, $t1"),
		Entry("ddiv", insts.RType{Rs: 6, Rt: 5, Rd: 7, Shamt: insts.EncDIV, Funct: insts.FunctSOP36},
			"ddiv $a3, $a2, $a1"),
		Entry("dmod", insts.RType{Rs: 6, Rt: 5, Rd: 7, Shamt: insts.EncMOD, Funct: insts.FunctSOP36},
			"dmod $a3, $a2, $a1"),
		Entry("ori", insts.IType{Op: insts.OpcodeORI, Rt: 16, Immediate: 12345}, "ori $s0, $zero, 12345"),
		Entry("lw", insts.IType{Op: insts.OpcodeLW, Rs: 8, Rt: 9, Immediate: 0xFFFC}, "lw $t1, -4($t0)"),
		Entry("lui", insts.IType{Op: insts.OpcodeAUI, Rt: 8, Immediate: 1}, "lui $t0, 1"),
		Entry("dati", insts.IType{Op: insts.OpcodeRegimm, Rs: 4, Rt: insts.RegimmDATI, Immediate: 2},
			"dati $a0, 2"),
		Entry("add.s", insts.FpuRType{Op: insts.OpcodeCOP1, Fmt: insts.FmtS, Ft: 2, Fs: 1, Fd: 0},
			"add.s $f0, $f1, $f2"),
		Entry("dmtc1", insts.FpuRType{Op: insts.OpcodeCOP1, Fmt: insts.FmtDMT, Ft: 8, Fs: 3},
			"dmtc1 $t0, $f3"),
		Entry("j", insts.JType{Op: insts.OpcodeJ, Target: 0x40}, "j 0x0000040"),
	)

	It("should name registers by ABI convention", func() {
		Expect(insts.RegisterName(0)).To(Equal("zero"))
		Expect(insts.RegisterName(29)).To(Equal("sp"))
		Expect(insts.RegisterName(40)).To(Equal("r40"))
	})
})
