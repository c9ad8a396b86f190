package testutil

import (
	"bytes"
	"image/png"
	"sync"
	"testing"
)

func TestNewTestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewTestLogger(buf)
	logger.Debug("test message", "key", "value")
	if buf.Len() == 0 {
		t.Error("logger did not write debug output to buffer")
	}

	// nil writer discards
	NewTestLogger(nil).Info("ignored")
}

func TestCaptureLogger(t *testing.T) {
	logger, buf := CaptureLogger()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Warn("skipping city", "index", i)
		}()
	}
	wg.Wait()
	logger.Info("done")

	if got := buf.Count("skipping city"); got != 8 {
		t.Errorf("Count(skipping city) = %d, want 8", got)
	}
	if got := buf.Count("missing"); got != 0 {
		t.Errorf("Count(missing) = %d, want 0", got)
	}
}

func TestPNG(t *testing.T) {
	cfg, err := png.DecodeConfig(bytes.NewReader(PNG(4, 3)))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("size = %dx%d, want 4x3", cfg.Width, cfg.Height)
	}
}
