package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "Chronoscope"

	// Scope ring in stereo frames.
	ScopeRingSize = 4096

	// Panel layout
	PanelMargin   = 20
	PlanetPanelW  = 420
	PlanetPanelH  = 360
	FaderWidth    = 220
	FaderHeight   = 14
	FaderSpacing  = 34
	HeaderHeight  = 60
	NewsPanelH    = 140
	ScopeHeight   = 60
	LineHeight    = 18
	SelectorWidth = 8
	FontSize      = 14

	// Visualization parameters
	StarCount    = 200
	VoidDotCount = 30
)

const (
	defaultConfigPath = "~/.config/chronoscope/config.toml"
	defaultAPIKey     = "DEMO_KEY"
	defaultSampleRate = 44100
	defaultStartYear  = 1995
	defaultTPS        = 60
	defaultLogLevel   = "info"
)

// Faders holds the initial base levels of the four modulated effects.
type Faders struct {
	Delay  float64 `toml:"delay"`
	Chorus float64 `toml:"chorus"`
	Reverb float64 `toml:"reverb"`
	Drone  float64 `toml:"drone"`
}

// Config is the runtime configuration of the viewer.
type Config struct {
	NASAAPIKey string
	SampleRate int
	StartYear  int
	TPS        int
	LogLevel   string
	Faders     Faders
}

// DefaultFaders returns the initial fader positions.
func DefaultFaders() Faders {
	return Faders{Delay: 0.3, Chorus: 0.2, Reverb: 0.4, Drone: 0}
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		NASAAPIKey: defaultAPIKey,
		SampleRate: defaultSampleRate,
		StartYear:  defaultStartYear,
		TPS:        defaultTPS,
		LogLevel:   defaultLogLevel,
		Faders:     DefaultFaders(),
	}
}

// Load reads the TOML config at path, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		NASAAPIKey string  `toml:"nasa_api_key"`
		SampleRate int     `toml:"sample_rate"`
		StartYear  int     `toml:"start_year"`
		TPS        int     `toml:"tps"`
		LogLevel   string  `toml:"log_level"`
		Faders     *Faders `toml:"faders"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if key := strings.TrimSpace(raw.NASAAPIKey); key != "" {
		cfg.NASAAPIKey = key
	}
	if raw.SampleRate > 0 {
		cfg.SampleRate = raw.SampleRate
	}
	if raw.StartYear > 0 {
		cfg.StartYear = raw.StartYear
	}
	if raw.TPS > 0 {
		cfg.TPS = raw.TPS
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if raw.Faders != nil {
		cfg.Faders = Faders{
			Delay:  clamp01(raw.Faders.Delay),
			Chorus: clamp01(raw.Faders.Chorus),
			Reverb: clamp01(raw.Faders.Reverb),
			Drone:  clamp01(raw.Faders.Drone),
		}
	}

	return cfg, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
