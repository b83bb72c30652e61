package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/iacctl/internal/logging"
	"github.com/danmuck/iacctl/internal/protocol/deeplink"
	"github.com/danmuck/iacctl/internal/protocol/message"
)

// Config is the resolved iacctl runtime configuration.
type Config struct {
	ChunkSize       int
	EnvelopeVersion int
	DeepLinkHost    string
	DeepLinkParam   string
	// SchemaDir adds schema documents from disk on top of the embedded set.
	SchemaDir string
	LogLevel  string
}

// iacctl.toml key mapping to Config.
type fileConfig struct {
	ChunkSize       int    `toml:"chunk_size"`
	EnvelopeVersion int    `toml:"envelope_version"`
	DeepLinkHost    string `toml:"deeplink_host"`
	DeepLinkParam   string `toml:"deeplink_param"`
	SchemaDir       string `toml:"schema_dir"`
	LogLevel        string `toml:"log_level"`
}

func Default() Config {
	return Config{
		ChunkSize:       350,
		EnvelopeVersion: message.VersionCurrent,
		DeepLinkHost:    deeplink.DefaultHost,
		DeepLinkParam:   deeplink.DefaultParam,
		LogLevel:        "info",
	}
}

// Load overlays the keys present in path onto Default and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("chunk_size") {
		cfg.ChunkSize = raw.ChunkSize
	}
	if meta.IsDefined("envelope_version") {
		cfg.EnvelopeVersion = raw.EnvelopeVersion
	}
	if meta.IsDefined("deeplink_host") {
		cfg.DeepLinkHost = strings.TrimSpace(raw.DeepLinkHost)
	}
	if meta.IsDefined("deeplink_param") {
		cfg.DeepLinkParam = strings.TrimSpace(raw.DeepLinkParam)
	}
	if meta.IsDefined("schema_dir") {
		cfg.SchemaDir = strings.TrimSpace(raw.SchemaDir)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be >= 0, got %d", cfg.ChunkSize)
	}
	if _, err := message.CodecFor(cfg.EnvelopeVersion); err != nil {
		return fmt.Errorf("envelope_version: %w", err)
	}
	if strings.TrimSpace(cfg.DeepLinkHost) == "" {
		return fmt.Errorf("deeplink_host is required")
	}
	if strings.TrimSpace(cfg.DeepLinkParam) == "" {
		return fmt.Errorf("deeplink_param is required")
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not a known level", cfg.LogLevel)
	}
	return nil
}
