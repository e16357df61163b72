// Package config holds the process-wide immutable catalogs and thresholds
// used by the analysis engine. A Config is constructed once (Default or
// Load) and passed explicitly into the orchestrator; it is never mutated
// after construction, so it is safe to share across workers.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config collects every tunable of the engine. Zero values in a loaded
// file fall back to the defaults.
type Config struct {
	// HeaderBytes is the size of the identification header read.
	HeaderBytes int `yaml:"headerBytes"`

	// ContentWindow caps how much of a file content scans may read.
	ContentWindow int64 `yaml:"contentWindow"`

	// ScanWindow caps sliding signature scans (hidden-content detection).
	ScanWindow int `yaml:"scanWindow"`

	// ToolTimeout bounds every external tool invocation.
	ToolTimeout time.Duration `yaml:"toolTimeout"`

	// SensitiveScoreThreshold marks a result as sensitive when the risk
	// score reaches it. Kept separate from the risk-level table so
	// callers can tune it independently.
	SensitiveScoreThreshold float64 `yaml:"sensitiveScoreThreshold"`

	// HighEntropyThreshold flags content entropy above it, unless the
	// file extension is in HighEntropyAllowlist.
	HighEntropyThreshold float64 `yaml:"highEntropyThreshold"`

	// ArchiveBombRatio flags archives whose compressed/uncompressed
	// ratio falls below it.
	ArchiveBombRatio float64 `yaml:"archiveBombRatio"`

	// ArchiveBombEntries flags archives with more entries than this.
	ArchiveBombEntries int `yaml:"archiveBombEntries"`

	// ArchiveNestingDepth flags archive entries nested deeper than this.
	ArchiveNestingDepth int `yaml:"archiveNestingDepth"`

	// StegoImageSize flags images larger than this (bytes) as potential
	// steganography carriers.
	StegoImageSize int64 `yaml:"stegoImageSize"`

	DangerousExtensions  []string `yaml:"dangerousExtensions"`
	SensitiveKeywords    []string `yaml:"sensitiveKeywords"`
	HackingTools         []string `yaml:"hackingTools"`
	HighEntropyAllowlist []string `yaml:"highEntropyAllowlist"`
	SensitiveTableNames  []string `yaml:"sensitiveTableNames"`
}

// Default returns the standard engine configuration.
func Default() *Config {
	return &Config{
		HeaderBytes:             64,
		ContentWindow:           1 << 20, // 1 MiB
		ScanWindow:              10000,
		ToolTimeout:             10 * time.Second,
		SensitiveScoreThreshold: 50,
		HighEntropyThreshold:    7.5,
		ArchiveBombRatio:        0.01,
		ArchiveBombEntries:      1000,
		ArchiveNestingDepth:     5,
		StegoImageSize:          5 << 20, // 5 MiB

		DangerousExtensions: []string{
			".exe", ".dll", ".so", ".dylib", ".sys", ".bat", ".cmd", ".ps1",
			".vbs", ".js", ".jar", ".app", ".deb", ".rpm", ".msi", ".scr",
		},
		SensitiveKeywords: []string{
			"pass", "pwd", "secret", "credential", "login", "auth", "token", "key",
			"backup", "dump", "export", "private", "confidential",
			"salary", "payroll", "admin", "root",
		},
		HackingTools: []string{
			"mimikatz", "procdump", "psexec", "cobaltstrike", "meterpreter",
			"beacon", "sharphound",
		},
		HighEntropyAllowlist: []string{
			".zip", ".7z", ".rar", ".gz", ".jpg", ".jpeg", ".png", ".mp4",
			".pdf", ".docx", ".xlsx",
		},
		SensitiveTableNames: []string{
			"user", "password", "credential", "token", "client", "customer",
			"employee", "payment", "card",
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores defaults for numeric fields explicitly zeroed by
// the loaded file, since zero is never a usable value for them.
func (c *Config) applyDefaults() {
	d := Default()
	if c.HeaderBytes <= 0 {
		c.HeaderBytes = d.HeaderBytes
	}
	if c.ContentWindow <= 0 {
		c.ContentWindow = d.ContentWindow
	}
	if c.ScanWindow <= 0 {
		c.ScanWindow = d.ScanWindow
	}
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = d.ToolTimeout
	}
	if c.SensitiveScoreThreshold <= 0 {
		c.SensitiveScoreThreshold = d.SensitiveScoreThreshold
	}
	if c.HighEntropyThreshold <= 0 {
		c.HighEntropyThreshold = d.HighEntropyThreshold
	}
	if c.ArchiveBombRatio <= 0 {
		c.ArchiveBombRatio = d.ArchiveBombRatio
	}
	if c.ArchiveBombEntries <= 0 {
		c.ArchiveBombEntries = d.ArchiveBombEntries
	}
	if c.ArchiveNestingDepth <= 0 {
		c.ArchiveNestingDepth = d.ArchiveNestingDepth
	}
	if c.StegoImageSize <= 0 {
		c.StegoImageSize = d.StegoImageSize
	}
}
