// Package cli holds the flag and startup handling shared by the commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/NERVsystems/geoviewport/pkg/config"
	"github.com/NERVsystems/geoviewport/pkg/display"
	"github.com/NERVsystems/geoviewport/pkg/logging"
	"github.com/NERVsystems/geoviewport/pkg/version"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// ErrUsage marks errors caused by bad command-line arguments.
var ErrUsage = errors.New("usage")

// Flags are the options every command accepts.
type Flags struct {
	Version    bool
	Debug      bool
	ConfigPath string
	NoView     bool
	OutputDir  string
}

// RegisterFlags adds the common flags to fs. Commands that show images get
// -no-view and -out as well.
func RegisterFlags(fs *flag.FlagSet, images bool) *Flags {
	f := &Flags{}
	fs.BoolVar(&f.Version, "version", false, "Display version information")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.ConfigPath, "config", "", "Path to a YAML config file (default: ./geoviewport.yaml if present)")
	if images {
		fs.BoolVar(&f.NoView, "no-view", false, "Save images without opening a viewer")
		fs.StringVar(&f.OutputDir, "out", "", "Directory for map images (default: a temp dir)")
	}
	return f
}

// Env is what a command needs after startup.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
}

// Setup loads configuration, installs the logger and checks that the
// services the command calls have API keys.
func Setup(f *Flags, services ...string) (*Env, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if f.Debug {
		level = "debug"
	}
	logger := logging.Setup(level, cfg.Log.Format)

	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = version.UserAgent()
	}
	if err := cfg.RequireKeys(services...); err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Logger: logger}, nil
}

// Client builds the API client for the loaded configuration.
func (e *Env) Client() *ymaps.Client {
	return ymaps.NewClient(ymaps.ConfigFrom(e.Config), ymaps.WithLogger(e.Logger))
}

// Surface builds the image surface for dir, honoring -no-view.
func (e *Env) Surface(f *Flags, dir string) (*display.Surface, error) {
	opts := []display.Option{display.WithLogger(e.Logger)}
	if f.NoView {
		opts = append(opts, display.WithViewer(nil))
	}
	return display.NewSurface(dir, opts...)
}

// Address joins positional arguments into a single address, so quoting is
// optional on the command line.
func Address(args []string) (string, error) {
	address := strings.TrimSpace(strings.Join(args, " "))
	if address == "" {
		return "", fmt.Errorf("%w: an address is required", ErrUsage)
	}
	return address, nil
}

// Context returns a context canceled on SIGINT or SIGTERM.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Main runs a command body and exits with a status code: 0 on success, 2 on
// usage errors, 1 otherwise.
func Main(program string, f *Flags, usage string, stderr io.Writer, run func(ctx context.Context) error) {
	if f.Version {
		fmt.Println(version.String(program))
		return
	}

	ctx, cancel := Context()
	err := run(ctx)
	cancel()

	switch {
	case err == nil:
		return
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(stderr, "%s: %v\nusage: %s %s\n", program, err, program, usage)
		os.Exit(2)
	default:
		slog.Error("command failed", "program", program, "error", err)
		os.Exit(1)
	}
}
