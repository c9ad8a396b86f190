package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/NERVsystems/geoviewport/pkg/config"
)

func TestGenerateClientConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name     string
		path     string
		existing string
		env      map[string]string
		wantErr  bool
	}{
		{
			name: "valid path",
			path: "config.json",
		},
		{
			name: "nested directory",
			path: filepath.Join("claude", "config.json"),
			env:  map[string]string{"GEOVIEWPORT_GEOCODER_API_KEY": "secret"},
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
		{
			name:    "non-json extension",
			path:    "config.txt",
			wantErr: true,
		},
		{
			name:    "path with ..",
			path:    filepath.Join("..", "config.json"),
			wantErr: true,
		},
		{
			name:     "merge with existing",
			path:     "merge.json",
			existing: `{"existing_key":"existing_value","mcpServers":{"other":{"command":"x"}}}`,
		},
		{
			name:     "invalid existing json",
			path:     "broken.json",
			existing: `{not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.existing != "" {
				if err := os.WriteFile(tt.path, []byte(tt.existing), 0o644); err != nil {
					t.Fatalf("Failed to write existing config: %v", err)
				}
			}

			err := generateClientConfig(tt.path, tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("generateClientConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			info, err := os.Stat(tt.path)
			if err != nil {
				t.Fatalf("Failed to stat config file: %v", err)
			}
			if mode := info.Mode().Perm(); mode != 0o600 {
				t.Errorf("Config file has wrong permissions: %v, want 0600", mode)
			}

			data, err := os.ReadFile(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			var config map[string]any
			if err := json.Unmarshal(data, &config); err != nil {
				t.Fatalf("Failed to parse config JSON: %v", err)
			}

			servers, ok := config["mcpServers"].(map[string]any)
			if !ok {
				t.Fatal("Config missing 'mcpServers' section")
			}
			entry, ok := servers[serverKey].(map[string]any)
			if !ok {
				t.Fatalf("Config missing %q server", serverKey)
			}
			if cmd, _ := entry["command"].(string); !filepath.IsAbs(cmd) {
				t.Errorf("command %q is not absolute", cmd)
			}

			if tt.env != nil {
				env, _ := entry["env"].(map[string]any)
				if env["GEOVIEWPORT_GEOCODER_API_KEY"] != "secret" {
					t.Errorf("env = %v", entry["env"])
				}
			} else if _, ok := entry["env"]; ok {
				t.Error("empty env should be omitted")
			}

			if tt.name == "merge with existing" {
				if val, ok := config["existing_key"]; !ok || val != "existing_value" {
					t.Error("Merge failed to preserve existing content")
				}
				if _, ok := servers["other"]; !ok {
					t.Error("Merge dropped other servers")
				}
			}
		})
	}
}

func TestKeyEnv(t *testing.T) {
	cfg := config.Default()
	cfg.Geocoder.APIKey = "g"
	cfg.StaticMaps.APIKey = "m"

	env := keyEnv(cfg)
	if len(env) != 2 {
		t.Fatalf("keyEnv() = %v, want 2 entries", env)
	}
	if env["GEOVIEWPORT_GEOCODER_API_KEY"] != "g" || env["GEOVIEWPORT_STATIC_MAPS_API_KEY"] != "m" {
		t.Errorf("keyEnv() = %v", env)
	}
}
