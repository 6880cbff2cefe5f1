// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ffaa/internal/analysis"
	applog "ffaa/internal/log"
)

// DefaultPath is the config file looked for when no path is given.
const DefaultPath = "ffaa.yaml"

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Band analyzer layout.
	Audio     AudioConfig     `yaml:"audio"`     // Live input settings.
	Recording RecordingConfig `yaml:"recording"` // Raw input recording.
	Transport TransportConfig `yaml:"transport"` // Band frame publishing.
	TUI       TUIConfig       `yaml:"tui"`       // Terminal band view.
}

// AnalysisConfig mirrors analysis.Config with names suitable for YAML.
type AnalysisConfig struct {
	SamplesSize int     `yaml:"samples_size"` // Analysis window length (power of 2).
	Bands       int     `yaml:"bands"`        // Number of output bands.
	MinFreq     float64 `yaml:"min_freq"`     // Lower edge of the first band in Hz.
	MaxFreq     float64 `yaml:"max_freq"`     // Upper edge of the last band in Hz ("fixed" ceiling).
	Ceiling     string  `yaml:"ceiling"`      // "fixed" or "nyquist".
	Window      string  `yaml:"window"`       // Window function name (e.g., "hann", "hamming").
	Engine      string  `yaml:"engine"`       // Transform engine ("gonum" or "gofft").
	SampleRate  int     `yaml:"sample_rate"`  // Sample rate in Hz (e.g., 44100, 48000).
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	InputDevice int  `yaml:"input_device"` // PortAudio device index for audio input (-1 for default).
	LowLatency  bool `yaml:"low_latency"`  // Request low latency settings from PortAudio device.
}

// RecordingConfig holds settings related to audio recording functionality.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record the raw input to a WAV file.
	OutputFile string `yaml:"output_file"` // Output path; empty derives a timestamped name.
}

// TransportConfig holds settings related to sending band frames over the network.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending band frames over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	SendInterval     time.Duration `yaml:"send_interval"`      // Interval between published frames.
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve band frames to WebSocket clients.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the WebSocket server.
}

// TUIConfig holds settings for the terminal band view.
type TUIConfig struct {
	Enabled     bool          `yaml:"enabled"`      // Show the band view while capturing.
	RefreshRate time.Duration `yaml:"refresh_rate"` // Interval between redraws.
	LogFile     string        `yaml:"log_file"`     // Log destination while the view owns the terminal.
}

// Default returns the built-in configuration.
func Default() *Config {
	def := analysis.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			SamplesSize: def.SamplesSize,
			Bands:       def.Bands,
			MinFreq:     def.MinFreq,
			MaxFreq:     def.MaxFreq,
			Ceiling:     def.Ceiling.String(),
			Window:      def.Window.String(),
			Engine:      def.Engine.String(),
			SampleRate:  def.SampleRate,
		},
		Audio: AudioConfig{
			InputDevice: -1, // -1 for default device.
		},
		Transport: TransportConfig{
			UDPTargetAddress: "127.0.0.1:9090",
			SendInterval:     33 * time.Millisecond, // ~30Hz.
			WebSocketAddress: "127.0.0.1:8080",
		},
		TUI: TUIConfig{
			RefreshRate: 50 * time.Millisecond,
			LogFile:     "ffaa.log",
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it looks for DefaultPath in the working directory and falls back
// to built-in defaults when that is missing. Environment overrides are
// applied after the file, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every section and the analyzer layout it describes.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level '%s' is not one of debug, info, warn, error, fatal", c.LogLevel)
	}
	if _, err := c.AnalyzerConfig(); err != nil {
		return err
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTargetAddress == "" {
		return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return fmt.Errorf("transport.websocket_address must be set when WebSocket is enabled")
	}
	if (c.Transport.UDPEnabled || c.Transport.WebSocketEnabled) && c.Transport.SendInterval <= 0 {
		return fmt.Errorf("transport.send_interval must be positive, got %s", c.Transport.SendInterval)
	}
	if c.TUI.Enabled && c.TUI.RefreshRate <= 0 {
		return fmt.Errorf("tui.refresh_rate must be positive, got %s", c.TUI.RefreshRate)
	}
	return nil
}

// AnalyzerConfig converts the analysis section into a validated
// analysis.Config.
func (c *Config) AnalyzerConfig() (analysis.Config, error) {
	a := c.Analysis
	ceiling, err := analysis.ParseCeiling(a.Ceiling)
	if err != nil {
		return analysis.Config{}, fmt.Errorf("analysis.ceiling: %w", err)
	}
	window, err := analysis.ParseWindowFunc(a.Window)
	if err != nil {
		return analysis.Config{}, fmt.Errorf("analysis.window: %w", err)
	}
	engine, err := analysis.ParseEngine(a.Engine)
	if err != nil {
		return analysis.Config{}, fmt.Errorf("analysis.engine: %w", err)
	}

	out := analysis.Config{
		SamplesSize: a.SamplesSize,
		Bands:       a.Bands,
		MinFreq:     a.MinFreq,
		MaxFreq:     a.MaxFreq,
		Ceiling:     ceiling,
		SampleRate:  a.SampleRate,
		Window:      window,
		Engine:      engine,
	}
	if err := out.Validate(); err != nil {
		return analysis.Config{}, fmt.Errorf("analysis: %w", err)
	}
	return out, nil
}

// applyEnvOverrides applies FFAA_* variables on top of file values. A
// variable that is set but cannot be parsed is an error.
func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"FFAA_LOG_LEVEL":          &c.LogLevel,
		"FFAA_WINDOW":             &c.Analysis.Window,
		"FFAA_ENGINE":             &c.Analysis.Engine,
		"FFAA_CEILING":            &c.Analysis.Ceiling,
		"FFAA_UDP_TARGET_ADDRESS": &c.Transport.UDPTargetAddress,
		"FFAA_WEBSOCKET_ADDRESS":  &c.Transport.WebSocketAddress,
	}
	for name, dst := range strs {
		if val, ok := os.LookupEnv(name); ok {
			*dst = val
			applog.Debugf("configuration: Overriding %s from env: %s", name, val)
		}
	}

	ints := map[string]*int{
		"FFAA_SAMPLE_RATE":  &c.Analysis.SampleRate,
		"FFAA_SAMPLES_SIZE": &c.Analysis.SamplesSize,
		"FFAA_BANDS":        &c.Analysis.Bands,
		"FFAA_INPUT_DEVICE": &c.Audio.InputDevice,
	}
	for name, dst := range ints {
		if val, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
			applog.Debugf("configuration: Overriding %s from env: %d", name, n)
		}
	}

	floats := map[string]*float64{
		"FFAA_MIN_FREQ": &c.Analysis.MinFreq,
		"FFAA_MAX_FREQ": &c.Analysis.MaxFreq,
	}
	for name, dst := range floats {
		if val, ok := os.LookupEnv(name); ok {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = f
			applog.Debugf("configuration: Overriding %s from env: %g", name, f)
		}
	}

	bools := map[string]*bool{
		"FFAA_LOW_LATENCY":       &c.Audio.LowLatency,
		"FFAA_UDP_ENABLED":       &c.Transport.UDPEnabled,
		"FFAA_WEBSOCKET_ENABLED": &c.Transport.WebSocketEnabled,
		"FFAA_TUI":               &c.TUI.Enabled,
	}
	for name, dst := range bools {
		if val, ok := os.LookupEnv(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = b
			applog.Debugf("configuration: Overriding %s from env: %v", name, b)
		}
	}

	if val, ok := os.LookupEnv("FFAA_SEND_INTERVAL"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("FFAA_SEND_INTERVAL: %w", err)
		}
		c.Transport.SendInterval = d
		applog.Debugf("configuration: Overriding FFAA_SEND_INTERVAL from env: %s", d)
	}
	return nil
}
