// Command geomcp serves the geocoding, viewport and map tools over MCP stdio.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/cli"
	"github.com/NERVsystems/geoviewport/pkg/config"
	"github.com/NERVsystems/geoviewport/pkg/server"
	"github.com/NERVsystems/geoviewport/pkg/tools"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// serverKey is the entry name under mcpServers in the client config.
const serverKey = "geoviewport"

var generateConfig string

func main() {
	flags := cli.RegisterFlags(flag.CommandLine, false)
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
	flag.Parse()

	cli.Main("geomcp", flags, "[flags]", os.Stderr, func(ctx context.Context) error {
		env, err := cli.Setup(flags)
		if err != nil {
			return err
		}
		logger := env.Logger

		// Generate Claude Desktop config if requested
		if generateConfig != "" {
			if err := generateClientConfig(generateConfig, keyEnv(env.Config)); err != nil {
				return fmt.Errorf("generate config: %w", err)
			}
			logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
			return nil
		}

		// Tools fail individually when a key is missing; the server still starts.
		if err := env.Config.RequireKeys(ymaps.ServiceGeocoder, ymaps.ServiceSearch, ymaps.ServiceStaticMaps); err != nil {
			logger.Warn("some tools will fail", "error", err)
		}

		registry := tools.NewRegistry(env.Client(), env.Config.Sampler, nil, logger)
		srv, err := server.NewServer(registry, logger)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}

		logger.Info("server initialized, waiting for requests")
		return srv.Run()
	})
}

// keyEnv collects the configured API keys as environment variables so the
// client config can pass them to the server process.
func keyEnv(cfg *config.Config) map[string]string {
	env := make(map[string]string)
	for svc, key := range map[string]string{
		ymaps.ServiceGeocoder:   cfg.Geocoder.APIKey,
		ymaps.ServiceSearch:     cfg.Search.APIKey,
		ymaps.ServiceStaticMaps: cfg.StaticMaps.APIKey,
	} {
		if key != "" {
			env[config.EnvPrefix+"_"+strings.ToUpper(svc)+"_API_KEY"] = key
		}
	}
	return env
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, keeping any other servers already listed in it.
func generateClientConfig(outputPath string, env map[string]string) error {
	logger := slog.Default()

	if outputPath == "" {
		return errors.New("output path is empty")
	}
	if filepath.Ext(outputPath) != ".json" {
		return fmt.Errorf("config file %q must have a .json extension", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain ..", outputPath)
		}
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	serverConfig := map[string]any{
		"command": absExecPath,
		"args":    []string{},
	}
	if len(env) > 0 {
		serverConfig["env"] = env
	}

	doc := make(map[string]any)
	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			doc = make(map[string]any)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	mcpServers, ok := doc["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		doc["mcpServers"] = mcpServers
	}
	mcpServers[serverKey] = serverConfig

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may carry API keys.
	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(outputPath, 0o600)
}
