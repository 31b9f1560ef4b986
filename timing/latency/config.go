package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds per-class instruction latencies for the cycle
// estimator. Values model a simple in-order RV32 core.
type TimingConfig struct {
	// ALULatency is the latency for arithmetic and logic operations,
	// including the upper-immediate instructions. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// ShiftLatency is the latency for shift operations. Default: 1 cycle.
	ShiftLatency uint64 `json:"shift_latency"`

	// LoadLatency is the load-to-use latency assuming a cache hit.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for stores. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// BranchLatency is the base latency for conditional branches, not
	// including the redirect penalty. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchTakenPenalty is the extra cycles charged when control flow
	// diverges (taken branch or jump) and the fetch stream restarts.
	// Default: 2 cycles.
	BranchTakenPenalty uint64 `json:"branch_taken_penalty"`

	// JumpLatency is the base latency for JAL and JALR. Default: 1 cycle.
	JumpLatency uint64 `json:"jump_latency"`

	// MemoryLatency is the flat main-memory access latency used by the
	// cache model for misses. Default: 20 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig with in-order core defaults.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:         1,
		ShiftLatency:       1,
		LoadLatency:        2,
		StoreLatency:       1,
		BranchLatency:      1,
		BranchTakenPenalty: 2,
		JumpLatency:        1,
		MemoryLatency:      20,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.ShiftLatency == 0 {
		return fmt.Errorf("shift_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.JumpLatency == 0 {
		return fmt.Errorf("jump_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
