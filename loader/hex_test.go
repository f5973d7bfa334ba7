package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips64sim/emu"
	"github.com/sarchlab/mips64sim/loader"
)

var _ = Describe("Hex Loader", func() {
	It("should read words with comments and prefixes", func() {
		src := `# ori $s0, $zero, 12345
0x34103039
01294820 // add $t1, $t1, $t1

0xAC000008 0x8C0A0008
`
		prog, err := loader.LoadHex(strings.NewReader(src), 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.EntryPoint).To(Equal(uint64(4)))
		Expect(prog.Segments).To(HaveLen(1))
		Expect(prog.Segments[0].VirtAddr).To(Equal(uint64(4)))
		Expect(prog.Segments[0].Data).To(HaveLen(16))
		Expect(prog.TextEnd()).To(Equal(uint64(20)))

		memory := emu.NewMemory()
		Expect(prog.LoadInto(memory)).To(Succeed())
		Expect(memory.LoadWord(4)).To(Equal(uint32(0x34103039)))
		Expect(memory.LoadWord(8)).To(Equal(uint32(0x01294820)))
		Expect(memory.LoadWord(16)).To(Equal(uint32(0x8C0A0008)))
	})

	It("should report the offending line", func() {
		_, err := loader.LoadHex(strings.NewReader("0x34103039\nnope\n"), 0)
		Expect(err).To(MatchError(ContainSubstring("line 2")))
	})

	It("should reject words wider than 32 bits", func() {
		_, err := loader.LoadHex(strings.NewReader("0x123456789"), 0)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a misaligned base", func() {
		_, err := loader.LoadHex(strings.NewReader("0x0"), 2)
		Expect(err).To(HaveOccurred())
	})

	It("should load a text file through Open", func() {
		tempDir, err := os.MkdirTemp("", "hex-loader-test")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = os.RemoveAll(tempDir) }()

		path := filepath.Join(tempDir, "prog.hex")
		Expect(os.WriteFile(path, []byte("34103039\n"), 0644)).To(Succeed())

		prog, err := loader.Open(path, 0x40)

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.EntryPoint).To(Equal(uint64(0x40)))
		Expect(prog.Segments[0].Data).To(Equal([]byte{0x34, 0x10, 0x30, 0x39}))
	})
})
