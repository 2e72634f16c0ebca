package config

import (
	"os"
	"path/filepath"
	"testing"
)

func boolPtr(v bool) *bool {
	return &v
}

func TestMergeAppliesFileValues(t *testing.T) {
	dst := Default()
	src := Config{
		Device: DeviceConfig{Name: "laptop", DataDir: "/tmp/clip"},
		Relay: RelayConfig{
			Enabled:  boolPtr(true),
			URL:      "wss://relay.example.com",
			RoomID:   "shared-room",
			Password: "hunter2",
		},
		Sync: SyncConfig{MaxSizeMB: 25},
	}

	Merge(&dst, src)

	if dst.DeviceName != "laptop" {
		t.Fatalf("expected deviceName=laptop, got %q", dst.DeviceName)
	}
	if dst.DataDir != "/tmp/clip" {
		t.Fatalf("expected dataDir=/tmp/clip, got %q", dst.DataDir)
	}
	if !dst.RelayEnabled {
		t.Fatal("expected relayEnabled=true after merge")
	}
	if dst.RelayURL != "wss://relay.example.com" {
		t.Fatalf("expected relay url, got %q", dst.RelayURL)
	}
	if dst.RoomID != "shared-room" || dst.RoomPassword != "hunter2" {
		t.Fatalf("room fields wrong: %q %q", dst.RoomID, dst.RoomPassword)
	}
	if dst.MaxSizeMB != 25 {
		t.Fatalf("expected maxSizeMb=25, got %d", dst.MaxSizeMB)
	}
}

func TestMergeDoesNotOverwriteBoolDefaultsWhenUnset(t *testing.T) {
	dst := Default()
	if !dst.SyncText || !dst.SyncImages {
		t.Fatal("expected sync defaults to be enabled")
	}

	Merge(&dst, Config{Device: DeviceConfig{Name: "x"}})

	if !dst.SyncText || !dst.SyncImages {
		t.Fatal("unset bool fields must not overwrite existing defaults")
	}
}

func TestMergeAppliesExplicitBoolFalse(t *testing.T) {
	dst := Default()
	src := Config{
		Sync: SyncConfig{Text: boolPtr(true), Images: boolPtr(false)},
	}

	Merge(&dst, src)

	if !dst.SyncText {
		t.Fatal("expected syncText=true from explicit config")
	}
	if dst.SyncImages {
		t.Fatal("expected syncImages=false from explicit config")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CLIPSYNC_DEVICE_NAME", "env-device")
	t.Setenv("CLIPSYNC_ROOM_ID", "env-room")
	t.Setenv("CLIPSYNC_ROOM_PASSWORD", "env-pw")
	t.Setenv("CLIPSYNC_RELAY_ENABLED", "true")
	t.Setenv("CLIPSYNC_SYNC_IMAGES", "off")
	t.Setenv("CLIPSYNC_MAX_SIZE_MB", "5")

	cfg := Default()
	ApplyEnvOverrides(&cfg)

	if cfg.DeviceName != "env-device" {
		t.Fatalf("expected deviceName=env-device, got %q", cfg.DeviceName)
	}
	if cfg.RoomID != "env-room" || cfg.RoomPassword != "env-pw" {
		t.Fatalf("room fields wrong: %q %q", cfg.RoomID, cfg.RoomPassword)
	}
	if !cfg.RelayEnabled {
		t.Fatal("expected relayEnabled=true from env override")
	}
	if cfg.SyncImages {
		t.Fatal("expected syncImages=false from env override")
	}
	if cfg.MaxSizeMB != 5 {
		t.Fatalf("expected maxSizeMb=5, got %d", cfg.MaxSizeMB)
	}
}

func TestApplyEnvOverridesIgnoresInvalidValues(t *testing.T) {
	t.Setenv("CLIPSYNC_SYNC_TEXT", "invalid")
	t.Setenv("CLIPSYNC_MAX_SIZE_MB", "not-a-number")

	cfg := Default()
	ApplyEnvOverrides(&cfg)

	if !cfg.SyncText {
		t.Fatal("invalid env value must not change syncText")
	}
	if cfg.MaxSizeMB != 10 {
		t.Fatalf("invalid env value must not change maxSizeMb, got %d", cfg.MaxSizeMB)
	}
}

func TestLoadFromPathReadsYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("device:\n  name: desk\nrelay:\n  enabled: true\n  roomId: office\nsync:\n  images: false\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := LoadFromPath(path)

	if cfg.DeviceName != "desk" {
		t.Fatalf("expected deviceName=desk, got %q", cfg.DeviceName)
	}
	if !cfg.RelayEnabled || cfg.RoomID != "office" {
		t.Fatalf("relay fields wrong: %v %q", cfg.RelayEnabled, cfg.RoomID)
	}
	if cfg.SyncImages {
		t.Fatal("expected syncImages=false from file")
	}
	if !cfg.SyncText {
		t.Fatal("expected syncText default to survive")
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))

	def := Default()
	if cfg.SyncText != def.SyncText || cfg.MaxSizeMB != def.MaxSizeMB {
		t.Fatalf("missing file must fall back to defaults, got %+v", cfg)
	}
}
