package gconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"
)

const cfgFile = "evilboard/config.json"

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

type Config struct {
	Theme       string `json:"theme"`       // light/dark
	Orientation string `json:"orientation"` // primary/flipped
	Size        int    `json:"size"`        // output side in pixels
	Coordinates bool   `json:"coordinates"` // draw file/rank labels
	PieceFont   string `json:"piece_font"`  // ttf with chess glyphs for png output
	Candidates  int    `json:"candidates"`  // candidate arrows taken from a snapshot
	UCIPath     string `json:"uci_path"`    // external engine for view analysis
	LogLevel    string `json:"log_level"`   // debug/info/warn/error
	Debug       bool   `json:"debug"`       //
}

func DefaultConfig() Config {
	return Config{
		Theme:       "light",
		Orientation: "primary",
		Size:        640,
		Coordinates: true,
		PieceFont:   "",
		Candidates:  3,
		UCIPath:     "",
		LogLevel:    "info",
		Debug:       false,
	}
}

// NewConfig looks the config file up in the XDG config dirs and falls back
// to the defaults when there is none.
func NewConfig() (*Config, error) {
	path, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		def := DefaultConfig()
		return &def, nil
	}
	return Load(path)
}

// Load reads an explicit config file. Out of range values are corrected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &InvalidConfig{fmt.Sprintf("no config file at %s", path)}
	} else if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error decode config %s: %w", path, err)
	}
	c.Correct()
	return &c, nil
}

// Save writes the config to the user's XDG config dir.
func (c *Config) Save() (string, error) {
	path, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return "", err
	}
	return path, c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	jsonData, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, jsonData, 0644)
}

// Correct resets every invalid field to its default.
func (c *Config) Correct() {
	def := DefaultConfig()
	if c.Theme != "light" && c.Theme != "dark" {
		c.Theme = def.Theme
	}
	if c.Orientation != "primary" && c.Orientation != "flipped" {
		c.Orientation = def.Orientation
	}
	if c.Size < 64 || c.Size > 4096 {
		c.Size = def.Size
	}
	if c.Candidates < 0 || c.Candidates > 16 {
		c.Candidates = def.Candidates
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = def.LogLevel
	}
}
