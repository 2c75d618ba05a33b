// Package config provides XML-based configuration management for the circuit designer server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/circuit-designer/backend/internal/models"
	"github.com/pkg/errors"
)

// FileName is the configuration file created next to the executable.
const FileName = "CircuitDesigner.config"

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"CircuitDesigner"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Editor defaults for new sessions
	Editor EditorConfig `xml:"Editor"`

	// Session lifetime
	Sessions SessionsConfig `xml:"Sessions"`

	// Transition journal
	Journal JournalConfig `xml:"Journal"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// EditorConfig selects the mode and pin policy of sessions created without
// explicit ones. An empty PinPolicy means the mode's own default.
type EditorConfig struct {
	DefaultMode string `xml:"DefaultMode"`
	PinPolicy   string `xml:"PinPolicy"`
}

type SessionsConfig struct {
	MaxSessions            int `xml:"MaxSessions"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

type JournalConfig struct {
	Enabled     bool   `xml:"Enabled"`
	Threads     int    `xml:"DuckDBThreads"`
	MemoryLimit string `xml:"DuckDBMemoryLimit"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	EnableCompression    bool   `xml:"EnableCompression"`
	CompressionLevel     int    `xml:"CompressionLevel"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "1M",
		},
		Editor: EditorConfig{
			DefaultMode: string(models.ModeGeneral),
		},
		Sessions: SessionsConfig{
			MaxSessions:            64,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Journal: JournalConfig{
			Enabled:     true,
			Threads:     1,
			MemoryLimit: "256MB",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			EnableCompression:    true,
			CompressionLevel:     5,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
		config.applyEnvironmentOverrides()
		return config, config.Validate()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	config.applyEnvironmentOverrides()
	return config, config.Validate()
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	header := []byte(xml.Header + "\n<!-- Circuit Designer Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
	if mode := os.Getenv("EDITOR_MODE"); mode != "" {
		c.Editor.DefaultMode = mode
	}
	if policy := os.Getenv("PIN_POLICY"); policy != "" {
		c.Editor.PinPolicy = policy
	}
}

// Validate rejects editor settings outside the known modes and policies.
func (c *AppConfig) Validate() error {
	if !c.EditorMode().Valid() {
		return errors.Errorf("invalid DefaultMode %q", c.Editor.DefaultMode)
	}
	if c.Editor.PinPolicy != "" && !c.PinPolicy().Valid() {
		return errors.Errorf("invalid PinPolicy %q", c.Editor.PinPolicy)
	}
	return nil
}

// EditorMode returns the configured default mode.
func (c *AppConfig) EditorMode() models.EditorMode {
	return models.EditorMode(strings.ToLower(strings.TrimSpace(c.Editor.DefaultMode)))
}

// PinPolicy returns the configured pin policy, empty when unset.
func (c *AppConfig) PinPolicy() models.PinPolicy {
	return models.PinPolicy(strings.ToLower(strings.TrimSpace(c.Editor.PinPolicy)))
}

// SessionTimeout is how long an untouched session lives.
func (c *AppConfig) SessionTimeout() time.Duration {
	return time.Duration(c.Sessions.SessionTimeoutMinutes) * time.Minute
}

// CleanupInterval is the period of the idle session sweep.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Sessions.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Sessions.CleanupIntervalMinutes) * time.Minute
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}
