package config_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips64sim/config"
	"github.com/sarchlab/mips64sim/datapath"
	"github.com/sarchlab/mips64sim/emu"
	"github.com/sarchlab/mips64sim/insts"
)

var _ = Describe("Config", func() {
	Describe("Default", func() {
		It("should describe the standard session", func() {
			c := config.Default()

			Expect(c.MemorySize).To(Equal(uint64(emu.DefaultMemorySize)))
			Expect(c.Core).To(Equal("datapath"))
			Expect(c.FetchFaultPolicy).To(Equal("abort"))
			Expect(c.ProgramBase).To(Equal(uint64(4)))
			Expect(c.DataCache).To(BeNil())
			Expect(c.Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		var c *config.Config

		BeforeEach(func() {
			c = config.Default()
		})

		It("should reject an empty memory", func() {
			c.MemorySize = 0
			Expect(c.Validate()).To(MatchError(ContainSubstring("memory_size")))
		})

		It("should reject a misaligned program base", func() {
			c.ProgramBase = 6
			Expect(c.Validate()).To(MatchError(ContainSubstring("program_base")))
		})

		It("should reject a program base outside memory", func() {
			c.ProgramBase = c.MemorySize
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should reject an unknown core", func() {
			c.Core = "superscalar"
			Expect(c.Validate()).To(MatchError(ContainSubstring("unknown core")))
		})

		It("should reject an unknown fetch fault policy", func() {
			c.FetchFaultPolicy = "retry"
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should reject a bad cache geometry", func() {
			c.DataCache = &config.CacheConfig{Size: 1000, Associativity: 4, BlockSize: 32}
			Expect(c.Validate()).To(MatchError(ContainSubstring("data_cache: size 1000")))

			c.DataCache = &config.CacheConfig{Size: 1024, Associativity: 4, BlockSize: 24}
			Expect(c.Validate()).To(MatchError(ContainSubstring("data_cache: block size 24")))
		})
	})

	Describe("Clone", func() {
		It("should copy the data cache settings", func() {
			c := config.Default()
			c.DataCache = &config.CacheConfig{Size: 4096, Associativity: 4, BlockSize: 32}

			clone := c.Clone()
			clone.DataCache.Size = 8192
			clone.Core = "trad"

			Expect(c.DataCache.Size).To(Equal(4096))
			Expect(c.Core).To(Equal("datapath"))
		})
	})

	Describe("Load and Save", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		for _, name := range []string{"session.json", "session.yaml", "session.yml"} {
			It("should round-trip "+name, func() {
				path := filepath.Join(tempDir, name)
				original := config.Default()
				original.Core = "trad"
				original.MaxInstructions = 100
				original.DataCache = &config.CacheConfig{Size: 4096, Associativity: 4, BlockSize: 32}

				Expect(original.Save(path)).To(Succeed())

				loaded, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(loaded).To(Equal(original))
			})
		}

		It("should keep defaults for missing YAML fields", func() {
			path := filepath.Join(tempDir, "partial.yaml")
			Expect(os.WriteFile(path, []byte("core: trad\nfetch_fault_policy: zero\n"), 0644)).To(Succeed())

			loaded, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Core).To(Equal("trad"))
			Expect(loaded.FetchFaultPolicy).To(Equal("zero"))
			Expect(loaded.MemorySize).To(Equal(uint64(emu.DefaultMemorySize)))
		})

		It("should fail on a missing file", func() {
			_, err := config.Load("/nonexistent/path/session.json")
			Expect(err).To(HaveOccurred())
		})

		It("should fail on malformed JSON", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte("not valid json"), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})

	Describe("Options", func() {
		It("should build a datapath over the given memory", func() {
			c := config.Default()
			c.MemorySize = 1024
			c.DataCache = &config.CacheConfig{Size: 256, Associativity: 2, BlockSize: 16}
			memory := c.NewMemory()

			opts, err := c.Options(memory)
			Expect(err).NotTo(HaveOccurred())

			d, err := datapath.New(opts...)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Memory().Size()).To(Equal(uint64(1024)))

			Expect(memory.StoreWord(0, insts.EncodeI(insts.OpcodeLW, 0, 8, 0x100))).To(Succeed())
			Expect(d.ExecuteInstruction()).To(Succeed())

			stats, ok := d.DataCacheStats()
			Expect(ok).To(BeTrue())
			Expect(stats.Reads).To(Equal(uint64(1)))
		})

		It("should apply the fetch fault policy", func() {
			c := config.Default()
			c.MemorySize = 64
			c.FetchFaultPolicy = "zero"

			opts, err := c.Options(nil)
			Expect(err).NotTo(HaveOccurred())

			d, err := datapath.New(opts...)
			Expect(err).NotTo(HaveOccurred())
			d.SetPC(64)
			err = d.ExecuteInstruction()

			var fatal *datapath.FatalError
			Expect(errors.As(err, &fatal)).To(BeTrue())
			Expect(fatal.Stage).To(Equal(datapath.StageInstructionDecode))
		})

		It("should refuse an invalid configuration", func() {
			c := config.Default()
			c.Core = "bogus"

			_, err := c.Options(nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
