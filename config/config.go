// Package config provides file-backed session configuration for the
// datapath.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/mips64sim/cache"
	"github.com/sarchlab/mips64sim/datapath"
	"github.com/sarchlab/mips64sim/emu"
)

// CacheConfig is the data cache geometry.
type CacheConfig struct {
	// Size is the total capacity in bytes.
	Size int `json:"size" yaml:"size"`

	// Associativity is the number of ways per set.
	Associativity int `json:"associativity" yaml:"associativity"`

	// BlockSize is the cache line size in bytes.
	BlockSize int `json:"block_size" yaml:"block_size"`
}

// Config holds the settings for one emulation session.
type Config struct {
	// MemorySize is the memory size in bytes. Default: 64 KiB.
	MemorySize uint64 `json:"memory_size" yaml:"memory_size"`

	// Core is the execution strategy, "datapath" or "trad".
	// Default: datapath.
	Core string `json:"core" yaml:"core"`

	// FetchFaultPolicy is what a failed instruction fetch does, "abort" or
	// "zero". Default: abort.
	FetchFaultPolicy string `json:"fetch_fault_policy" yaml:"fetch_fault_policy"`

	// ProgramBase is where text programs are loaded and where execution
	// starts. Default: 4.
	ProgramBase uint64 `json:"program_base" yaml:"program_base"`

	// MaxInstructions bounds a run. 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions" yaml:"max_instructions"`

	// DataCache enables the data cache when set.
	DataCache *CacheConfig `json:"data_cache,omitempty" yaml:"data_cache,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MemorySize:       emu.DefaultMemorySize,
		Core:             datapath.DatapathCore.String(),
		FetchFaultPolicy: "abort",
		ProgramBase:      datapath.InstructionBase,
	}
}

// isYAML reports whether the path names a YAML file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads a configuration from a JSON or YAML file, chosen by extension.
// Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the configuration to a JSON or YAML file, chosen by
// extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a runnable session.
func (c *Config) Validate() error {
	if c.MemorySize == 0 || c.MemorySize%8 != 0 {
		return fmt.Errorf("memory_size must be a positive multiple of 8")
	}
	if c.ProgramBase%4 != 0 {
		return fmt.Errorf("program_base must be word aligned")
	}
	if c.ProgramBase >= c.MemorySize {
		return fmt.Errorf("program_base must be inside memory")
	}
	if _, err := datapath.ParseCoreSelect(c.Core); err != nil {
		return err
	}
	if _, err := datapath.ParseFetchFaultPolicy(c.FetchFaultPolicy); err != nil {
		return err
	}
	if c.DataCache != nil {
		if err := c.DataCache.geometry().Validate(); err != nil {
			return fmt.Errorf("data_cache: %w", err)
		}
	}
	return nil
}

func (c *CacheConfig) geometry() cache.Config {
	return cache.Config{
		Size:          c.Size,
		Associativity: c.Associativity,
		BlockSize:     c.BlockSize,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.DataCache != nil {
		dataCache := *c.DataCache
		clone.DataCache = &dataCache
	}
	return &clone
}

// CoreSelect returns the parsed execution strategy.
func (c *Config) CoreSelect() (datapath.CoreSelect, error) {
	return datapath.ParseCoreSelect(c.Core)
}

// NewMemory creates a zeroed memory of the configured size.
func (c *Config) NewMemory() *emu.Memory {
	return emu.NewMemoryWithSize(c.MemorySize)
}

// Options translates the configuration into datapath options operating on
// memory. A nil memory gets a fresh one from NewMemory.
func (c *Config) Options(memory *emu.Memory) ([]datapath.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if memory == nil {
		memory = c.NewMemory()
	}

	policy, _ := datapath.ParseFetchFaultPolicy(c.FetchFaultPolicy)

	opts := []datapath.Option{
		datapath.WithMemory(memory),
		datapath.WithFetchFaultPolicy(policy),
	}

	if c.DataCache != nil {
		opts = append(opts, datapath.WithDataCache(c.DataCache.geometry()))
	}

	return opts, nil
}
