package config

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"pixelfight/src/battlefield"
	"pixelfight/src/game"
)

const (
	DefWidth    = battlefield.DefWidth
	DefHeight   = battlefield.DefHeight
	DefGlyph    = string(game.DefGlyph)
	DefTickRate = game.DefTickRate
	DefEngine   = "base"
	DefFrontend = FrontendConsole
)

//frontends
const (
	FrontendConsole  = "console"
	FrontendScreen   = "screen"
	FrontendHeadless = "headless"
)

var Frontends = []string{FrontendConsole, FrontendScreen, FrontendHeadless}

//ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Glyph    string `yaml:"glyph"`
	TickRate int    `yaml:"tick_rate"`
	Seed     int64  `yaml:"seed"`
	Engine   string `yaml:"engine"`
	Frontend string `yaml:"frontend"`
	MaxTicks int    `yaml:"max_ticks"`
	LogFile  string `yaml:"log_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:    DefWidth,
		Height:   DefHeight,
		Glyph:    DefGlyph,
		TickRate: DefTickRate,
		Engine:   DefEngine,
		Frontend: DefFrontend,
	}
}

//Load reads the yaml file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalid, c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalid, c.Height)
	}
	if utf8.RuneCountInString(c.Glyph) != 1 {
		return fmt.Errorf("%w: glyph must be a single character, got %q", ErrInvalid, c.Glyph)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate must be positive, got %d", ErrInvalid, c.TickRate)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("%w: max ticks must not be negative, got %d", ErrInvalid, c.MaxTicks)
	}
	if _, ok := battlefield.NewEngine(c.Engine); !ok {
		return fmt.Errorf("%w: unknown engine %q", ErrInvalid, c.Engine)
	}
	if !knownFrontend(c.Frontend) {
		return fmt.Errorf("%w: unknown frontend %q", ErrInvalid, c.Frontend)
	}
	return nil
}

//GlyphRune returns the display glyph, the config must be valid
func (c *Config) GlyphRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Glyph)
	return r
}

//GameOptions converts the configuration to the game options
func (c *Config) GameOptions() game.Options {
	return game.Options{
		Width:    c.Width,
		Height:   c.Height,
		Glyph:    c.GlyphRune(),
		TickRate: c.TickRate,
		MaxTicks: c.MaxTicks,
	}
}

func knownFrontend(name string) bool {
	for _, f := range Frontends {
		if f == name {
			return true
		}
	}
	return false
}
