package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"

	"weekplan/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "weekplan.db"
	DefaultDataDir        = "data"
	DefaultColor          = "#3b82f6"

	// EnvConfigPath overrides the config location.
	EnvConfigPath = "WEEKPLAN_CONFIG"
)

// DefaultPalette is the set of colors the TUI cycles tasks through.
var DefaultPalette = []string{"#b4c6dc", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6", "#e9bdbe"}

type Keymap struct {
	Quit     string `toml:"quit"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Left     string `toml:"left"`
	Right    string `toml:"right"`
	Add      string `toml:"add"`
	AddList  string `toml:"add_list"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Rename   string `toml:"rename"`
	Color    string `toml:"color"`
	Daily    string `toml:"daily"`
	Items    string `toml:"items"`
	AddItem  string `toml:"add_item"`
	PrevWeek string `toml:"prev_week"`
	NextWeek string `toml:"next_week"`
	Today    string `toml:"today"`
	Month    string `toml:"month"`
	Fitness  string `toml:"fitness"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
	Weight   string `toml:"weight"`
	Steps    string `toml:"steps"`
	Water    string `toml:"water"`
}

type Config struct {
	Backend      string   `toml:"backend"`
	DBPath       string   `toml:"db_path"`
	DataDir      string   `toml:"data_dir"`
	LogPath      string   `toml:"log_path"`
	LogLevel     string   `toml:"log_level"`
	DefaultColor string   `toml:"default_color"`
	Palette      []string `toml:"palette"`
	Keys         Keymap   `toml:"keys"`
}

// ResolveConfigPath picks the config file: $WEEKPLAN_CONFIG, then
// ~/.config/weekplan/config.toml, then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if expanded, err := homedir.Expand(p); err == nil {
			return expanded
		}
		return p
	}
	home, err := homedir.Dir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", "weekplan", DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there first if it does not
// exist. Relative storage paths are resolved against the config directory.
func LoadOrCreate(path string) (Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand %s: %w", path, err)
	}
	path = expanded
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg.resolve(filepath.Dir(path))
}

// StoragePath is the location the configured backend opens.
func (c Config) StoragePath() string {
	if c.Backend == storage.KindDisk {
		return c.DataDir
	}
	return c.DBPath
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DefaultColor == "" {
		c.DefaultColor = def.DefaultColor
	}
	if len(c.Palette) == 0 {
		c.Palette = def.Palette
	}
	fillKeys(&c.Keys, def.Keys)
}

// fillKeys keeps user bindings and falls back to the defaults for the rest.
func fillKeys(k *Keymap, def Keymap) {
	pairs := []struct {
		dst *string
		src string
	}{
		{&k.Quit, def.Quit}, {&k.Up, def.Up}, {&k.Down, def.Down},
		{&k.Left, def.Left}, {&k.Right, def.Right}, {&k.Add, def.Add},
		{&k.AddList, def.AddList}, {&k.Toggle, def.Toggle}, {&k.Delete, def.Delete},
		{&k.Rename, def.Rename}, {&k.Color, def.Color}, {&k.Daily, def.Daily},
		{&k.Items, def.Items}, {&k.AddItem, def.AddItem}, {&k.PrevWeek, def.PrevWeek},
		{&k.NextWeek, def.NextWeek}, {&k.Today, def.Today}, {&k.Month, def.Month},
		{&k.Fitness, def.Fitness}, {&k.Confirm, def.Confirm}, {&k.Cancel, def.Cancel},
		{&k.Weight, def.Weight}, {&k.Steps, def.Steps}, {&k.Water, def.Water},
	}
	for _, p := range pairs {
		if *p.dst == "" {
			*p.dst = p.src
		}
	}
}

func (c Config) resolve(base string) (Config, error) {
	for _, p := range []*string{&c.DBPath, &c.DataDir, &c.LogPath} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return c, fmt.Errorf("config: expand %s: %w", *p, err)
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(base, expanded)
		}
		*p = expanded
	}
	return c, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Backend:      storage.KindSQLite,
		DBPath:       DefaultDBName,
		DataDir:      DefaultDataDir,
		LogLevel:     "info",
		DefaultColor: DefaultColor,
		Palette:      append([]string(nil), DefaultPalette...),
		Keys: Keymap{
			Quit:     "q",
			Up:       "k",
			Down:     "j",
			Left:     "h",
			Right:    "l",
			Add:      "a",
			AddList:  "t",
			Toggle:   " ",
			Delete:   "d",
			Rename:   "r",
			Color:    "c",
			Daily:    "*",
			Items:    "enter",
			AddItem:  "i",
			PrevWeek: "[",
			NextWeek: "]",
			Today:    "g",
			Month:    "m",
			Fitness:  "tab",
			Confirm:  "enter",
			Cancel:   "esc",
			Weight:   "w",
			Steps:    "s",
			Water:    "v",
		},
	}
}
