// Package display stores fetched map images on disk and hands them to the
// operating system's image viewer.
package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	// Register decoders for the formats the static map API can return.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrNotImage is returned when the bytes are not a PNG, JPEG or GIF image.
var ErrNotImage = errors.New("data is not a supported image")

// Viewer presents a saved image file.
type Viewer func(ctx context.Context, path string) error

// Image describes a saved file.
type Image struct {
	Path   string
	Format string
	Width  int
	Height int
}

// Surface is a directory of images plus an optional viewer.
type Surface struct {
	dir    string
	viewer Viewer
	logger *slog.Logger
}

// Option configures a Surface.
type Option func(*Surface)

// WithViewer replaces the system viewer. A nil viewer disables viewing.
func WithViewer(v Viewer) Option {
	return func(s *Surface) { s.viewer = v }
}

// WithLogger sets the logger for the surface.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) { s.logger = logger }
}

// NewSurface creates dir if needed. An empty dir means a fresh directory
// under the system temp dir.
func NewSurface(dir string, opts ...Option) (*Surface, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "geoviewport-")
		if err != nil {
			return nil, fmt.Errorf("create image dir: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	s := &Surface{dir: dir, viewer: OpenFile, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory images are written to.
func (s *Surface) Dir() string { return s.dir }

// Save validates data as an image and writes it as name plus the extension
// of its detected format.
func (s *Surface) Save(name string, data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	base := sanitize(name)
	if base == "" {
		base = "map"
	}
	path := filepath.Join(s.dir, base+extension(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}

	s.logger.Debug("saved image", "path", path, "format", format,
		"width", cfg.Width, "height", cfg.Height)
	return Image{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Show saves the image and opens it in the viewer, if any. A viewer failure
// is logged and the saved image is still returned.
func (s *Surface) Show(ctx context.Context, name string, data []byte) (Image, error) {
	img, err := s.Save(name, data)
	if err != nil {
		return Image{}, err
	}
	if s.viewer == nil {
		return img, nil
	}
	if err := s.viewer(ctx, img.Path); err != nil {
		s.logger.Warn("could not open image viewer", "path", img.Path, "error", err)
	}
	return img, nil
}

// OpenFile launches the platform's default viewer for path without waiting
// for it to exit.
func OpenFile(ctx context.Context, path string) error {
	name, args := viewerCommand(runtime.GOOS, path)
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

func viewerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "gif":
		return ".gif"
	default:
		return ".png"
	}
}

// sanitize keeps a name usable as a single path element.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
}
