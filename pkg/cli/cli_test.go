package cli

import (
	"errors"
	"flag"
	"log/slog"
	"testing"

	"github.com/NERVsystems/geoviewport/pkg/version"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{[]string{"Москва,", "ул.", "Ак.", "Королева,", "12"}, "Москва, ул. Ак. Королева, 12", false},
		{[]string{"  Казань  "}, "Казань", false},
		{nil, "", true},
		{[]string{" ", ""}, "", true},
	}
	for _, tt := range tests {
		got, err := Address(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("Address(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUsage) {
			t.Errorf("Address(%q) error %v is not ErrUsage", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("Address(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestRegisterFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs, true)
	if err := fs.Parse([]string{"-debug", "-no-view", "-out", "/tmp/maps", "-config", "c.yaml", "Тверская", "1"}); err != nil {
		t.Fatal(err)
	}
	if !f.Debug || !f.NoView || f.OutputDir != "/tmp/maps" || f.ConfigPath != "c.yaml" {
		t.Errorf("flags = %+v", f)
	}
	if fs.NArg() != 2 {
		t.Errorf("NArg() = %d, want 2", fs.NArg())
	}

	fs = flag.NewFlagSet("mcp", flag.ContinueOnError)
	RegisterFlags(fs, false)
	if fs.Lookup("no-view") != nil {
		t.Error("-no-view registered for a command without images")
	}
}

func TestSetupMissingKeys(t *testing.T) {
	t.Setenv("GEOVIEWPORT_GEOCODER_API_KEY", "")
	t.Chdir(t.TempDir())

	_, err := Setup(&Flags{}, "geocoder")
	if err == nil {
		t.Fatal("Setup() without a geocoder key succeeded")
	}
}

func TestSetup(t *testing.T) {
	t.Setenv("GEOVIEWPORT_GEOCODER_API_KEY", "k1")
	t.Setenv("GEOVIEWPORT_STATIC_MAPS_API_KEY", "k2")
	t.Chdir(t.TempDir())
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	prevVersion := version.BuildVersion
	version.BuildVersion = "9.9.9-test"
	t.Cleanup(func() { version.BuildVersion = prevVersion })

	env, err := Setup(&Flags{Debug: true}, "geocoder", "static_maps")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if env.Config.HTTP.UserAgent != "geoviewport/9.9.9-test" {
		t.Errorf("user agent = %q, want the build version", env.Config.HTTP.UserAgent)
	}
	if env.Config.Geocoder.APIKey != "k1" {
		t.Errorf("geocoder key = %q", env.Config.Geocoder.APIKey)
	}
	if env.Client() == nil {
		t.Error("Client() returned nil")
	}
	s, err := env.Surface(&Flags{NoView: true}, t.TempDir())
	if err != nil || s == nil {
		t.Errorf("Surface() = %v, %v", s, err)
	}
}
