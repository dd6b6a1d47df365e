package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"voxelworld/internal/config"
)

func TestWriteConfigFromEnvJSON(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")

	cfg := config.Default()
	cfg.Server.ID = "json-config"
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var decoded config.Config
	if err := json.Unmarshal(contents, &decoded); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if decoded.Server.ID != "json-config" {
		t.Fatalf("unexpected server id: %q", decoded.Server.ID)
	}
}

func TestWriteConfigFromEnvYAMLToTOML(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ID = "yaml-config"
	cfg.Server.TickRate = config.Duration(20 * time.Millisecond)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString(data))

	path := filepath.Join(t.TempDir(), "world.toml")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if loaded.Server.ID != "yaml-config" {
		t.Fatalf("unexpected server id: %q", loaded.Server.ID)
	}
	if loaded.Server.TickRate.Duration() != 20*time.Millisecond {
		t.Fatalf("expected 20ms tick rate, got %s", loaded.Server.TickRate)
	}
}

func TestWriteConfigFromEnvRequiresPath(t *testing.T) {
	t.Setenv(envConfigJSON, "{}")
	t.Setenv(envConfigYAMLB64, "")

	if _, err := writeConfigFromEnv(""); err == nil {
		t.Fatalf("expected error without config path")
	}
}

func TestWriteConfigFromEnvNoop(t *testing.T) {
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, "")

	wrote, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "config.json"))
	if err != nil || wrote {
		t.Fatalf("expected no-op, got wrote=%v err=%v", wrote, err)
	}
}

func TestWriteConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")
	t.Setenv(envConfigJSON, `{"server":{"id":""}}`)

	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := writeConfigFromEnv(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written, stat err=%v", err)
	}
}
