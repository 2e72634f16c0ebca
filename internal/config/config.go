// Package config loads daemon configuration from a yaml file with
// environment overrides. File values win over defaults, CLIPSYNC_* env vars
// win over the file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device DeviceConfig `yaml:"device"`
	Relay  RelayConfig  `yaml:"relay"`
	Sync   SyncConfig   `yaml:"sync"`
}

type DeviceConfig struct {
	Name    string `yaml:"name"`
	DataDir string `yaml:"dataDir"`
}

type RelayConfig struct {
	Enabled  *bool  `yaml:"enabled"`
	URL      string `yaml:"url"`
	RoomID   string `yaml:"roomId"`
	Password string `yaml:"password"`
}

type SyncConfig struct {
	Text      *bool `yaml:"text"`
	Images    *bool `yaml:"images"`
	MaxSizeMB int   `yaml:"maxSizeMb"`
}

// Resolved is the config after defaults, file and env are folded together.
type Resolved struct {
	DeviceName   string
	DataDir      string
	RelayEnabled bool
	RelayURL     string
	RoomID       string
	RoomPassword string
	SyncText     bool
	SyncImages   bool
	MaxSizeMB    int
}

func Default() Resolved {
	return Resolved{
		DataDir:    defaultDataDir(),
		SyncText:   true,
		SyncImages: true,
		MaxSizeMB:  10,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clipsync"
	}
	return filepath.Join(home, ".clipsync")
}

// LoadFromPath reads the first readable candidate file and folds it over the
// defaults. A missing or unparsable file is not an error; defaults plus env
// overrides still apply.
func LoadFromPath(configPath string) Resolved {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/config.yaml",
			filepath.Join(defaultDataDir(), "config.yaml"),
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merged := cfg
		Merge(&merged, parsed)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *Resolved, src Config) {
	if src.Device.Name != "" {
		dst.DeviceName = src.Device.Name
	}
	if src.Device.DataDir != "" {
		dst.DataDir = src.Device.DataDir
	}
	if src.Relay.Enabled != nil {
		dst.RelayEnabled = *src.Relay.Enabled
	}
	if src.Relay.URL != "" {
		dst.RelayURL = src.Relay.URL
	}
	if src.Relay.RoomID != "" {
		dst.RoomID = src.Relay.RoomID
	}
	if src.Relay.Password != "" {
		dst.RoomPassword = src.Relay.Password
	}
	if src.Sync.Text != nil {
		dst.SyncText = *src.Sync.Text
	}
	if src.Sync.Images != nil {
		dst.SyncImages = *src.Sync.Images
	}
	if src.Sync.MaxSizeMB != 0 {
		dst.MaxSizeMB = src.Sync.MaxSizeMB
	}
}

func ApplyEnvOverrides(cfg *Resolved) {
	if v := envString("CLIPSYNC_DEVICE_NAME"); v != "" {
		cfg.DeviceName = v
	}
	if v := envString("CLIPSYNC_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := envString("CLIPSYNC_RELAY_URL"); v != "" {
		cfg.RelayURL = v
	}
	if v := envString("CLIPSYNC_ROOM_ID"); v != "" {
		cfg.RoomID = v
	}
	if v := envString("CLIPSYNC_ROOM_PASSWORD"); v != "" {
		cfg.RoomPassword = v
	}
	cfg.RelayEnabled = envBoolWithFallback("CLIPSYNC_RELAY_ENABLED", cfg.RelayEnabled)
	cfg.SyncText = envBoolWithFallback("CLIPSYNC_SYNC_TEXT", cfg.SyncText)
	cfg.SyncImages = envBoolWithFallback("CLIPSYNC_SYNC_IMAGES", cfg.SyncImages)
	cfg.MaxSizeMB = envIntWithFallback("CLIPSYNC_MAX_SIZE_MB", cfg.MaxSizeMB)
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envBoolWithFallback(key string, fallback bool) bool {
	raw := strings.ToLower(envString(key))
	switch raw {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envIntWithFallback(key string, fallback int) int {
	raw := envString(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
