package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"

	"factoriowiki/internal"
)

const DefaultFile = "factorio_config.json"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DataDir           string `json:"data_dir"`
	CSVFile           string `json:"csv_file"`
	JSONDir           string `json:"json_dir"`
	Locale            string `json:"locale"`
	GameMode          string `json:"game_mode"`
	LogLevel          string `json:"log_level"`
	WikiBaseURL       string `json:"wiki_base_url"`
	WikiMaterialsPage string `json:"wiki_materials_page"`
	DBFile            string `json:"db_file"`
	OutputDir         string `json:"output_dir"`
	FetchTimeoutMs    int    `json:"fetch_timeout_ms"`
	FetchRateLimitRPS int    `json:"fetch_rate_limit_rps"`
	UserAgent         string `json:"user_agent"`

	// File is the config file that was read, if any.
	File string `json:"-"`
}

func Defaults() Config {
	return Config{
		DataDir:           "data",
		CSVFile:           "factorio_items.csv",
		JSONDir:           "json",
		Locale:            string(internal.LocaleJA),
		GameMode:          string(internal.ModeSpaceAge),
		LogLevel:          "INFO",
		WikiBaseURL:       "https://wiki.factorio.com/",
		WikiMaterialsPage: "Materials_and_recipes/ja",
		DBFile:            "factoriowiki.db",
		OutputDir:         "out",
		FetchTimeoutMs:    30000,
		FetchRateLimitRPS: 2,
		UserAgent:         "factoriowiki/1.0",
	}
}

// Load layers defaults, the config file (path, else $FACTORIO_CONFIG, else
// factorio_config.json), an optional <name>.local.<ext> next to it, and
// FACTORIO_* environment variables. A missing file is not an error.
// Callers apply flag overrides and then Validate.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		path = getEnv("FACTORIO_CONFIG", DefaultFile)
	}

	fileCfg, err := readFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Warn("config file not found, using defaults", "path", path)
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
			return Config{}, err
		}
		cfg.File = path
	}

	cfg.applyEnv()
	return cfg, nil
}

func readFile(name string) (Config, error) {
	var out Config
	found := false

	blob, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(blob) > 0 {
		if err := json5.Unmarshal(blob, &out); err != nil {
			return out, err
		}
		found = true
	}

	ext := filepath.Ext(name)
	localName := strings.TrimSuffix(name, ext) + ".local" + ext
	localBlob, err := os.ReadFile(localName)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localBlob) > 0 {
		var override Config
		if err := json5.Unmarshal(localBlob, &override); err != nil {
			return out, err
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localName)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("FACTORIO_DATA_DIR", c.DataDir)
	c.CSVFile = getEnv("FACTORIO_CSV_FILE", c.CSVFile)
	c.JSONDir = getEnv("FACTORIO_JSON_DIR", c.JSONDir)
	c.Locale = getEnv("FACTORIO_LOCALE", c.Locale)
	c.GameMode = getEnv("FACTORIO_GAME_MODE", c.GameMode)
	c.LogLevel = getEnv("FACTORIO_LOG_LEVEL", c.LogLevel)
	c.WikiBaseURL = getEnv("FACTORIO_WIKI_BASE_URL", c.WikiBaseURL)
	c.WikiMaterialsPage = getEnv("FACTORIO_WIKI_MATERIALS_PAGE", c.WikiMaterialsPage)
	c.DBFile = getEnv("FACTORIO_DB_FILE", c.DBFile)
	c.OutputDir = getEnv("FACTORIO_OUTPUT_DIR", c.OutputDir)
	c.FetchTimeoutMs = getEnvInt("FACTORIO_FETCH_TIMEOUT_MS", c.FetchTimeoutMs)
	c.FetchRateLimitRPS = getEnvInt("FACTORIO_FETCH_RATE_LIMIT_RPS", c.FetchRateLimitRPS)
}

func (c Config) Validate() error {
	if !c.LocaleValue().Valid() {
		return fmt.Errorf("%w: locale %q (want ja or en)", ErrInvalid, c.Locale)
	}
	if !c.GameModeValue().Valid() {
		return fmt.Errorf("%w: game_mode %q (want Base or SpaceAge)", ErrInvalid, c.GameMode)
	}
	if _, err := url.Parse(c.WikiBaseURL); err != nil || strings.TrimSpace(c.WikiBaseURL) == "" {
		return fmt.Errorf("%w: wiki_base_url %q", ErrInvalid, c.WikiBaseURL)
	}
	if c.FetchTimeoutMs <= 0 {
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalid)
	}
	return nil
}

func (c Config) LocaleValue() internal.Locale {
	return internal.Locale(strings.ToLower(strings.TrimSpace(c.Locale)))
}

func (c Config) GameModeValue() internal.GameMode {
	return internal.GameMode(strings.TrimSpace(c.GameMode))
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) CSVPath() string {
	if c.DataDir == "" || filepath.IsAbs(c.CSVFile) {
		return c.CSVFile
	}
	return filepath.Join(c.DataDir, c.CSVFile)
}

func (c Config) JSONPath() string {
	if c.DataDir == "" || filepath.IsAbs(c.JSONDir) {
		return c.JSONDir
	}
	return filepath.Join(c.DataDir, c.JSONDir)
}

func (c Config) DBPath() string {
	if c.DataDir == "" || filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

func (c Config) MaterialsURL() (string, error) {
	base, err := url.Parse(c.WikiBaseURL)
	if err != nil {
		return "", err
	}
	page, err := url.Parse(c.WikiMaterialsPage)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(page).String(), nil
}

// JSON renders the settings the way config files are written.
func (c Config) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteDefault(path string) error {
	blob, err := Defaults().JSON()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, blob, 0o644)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
