package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the root configuration structure.
type Config struct {
	Report ReportConfig `json:"report"`
	Git    GitConfig    `json:"git"`
}

// ReportConfig holds merge report defaults.
type ReportConfig struct {
	// Path is the default path of interest (doublestar glob). The tool
	// started life hard-wired to the BPF verifier; that stays the default.
	Path string `json:"path"`

	// ExcludeSubjects drops merges whose subject contains any of these
	// substrings.
	ExcludeSubjects []string `json:"excludeSubjects"`
}

// GitConfig holds repository access options.
type GitConfig struct {
	// Backend selects the repository reader: "gogit" or "cli".
	Backend string `json:"backend"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Path:            "kernel/bpf/verifier.c",
			ExcludeSubjects: []string{"Merge tag"},
		},
		Git: GitConfig{
			Backend: "gogit",
		},
	}
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{".merge-report.json"}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, ".merge-report.json"))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, ".merge-report.json"))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
