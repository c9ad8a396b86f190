// Command guesscity plays "guess the city" with partial map views.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/cli"
	"github.com/NERVsystems/geoviewport/pkg/demo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

func main() {
	flags := cli.RegisterFlags(flag.CommandLine, true)
	cities := flag.String("cities", "", "Comma-separated cities (default from config)")
	flag.Parse()

	cli.Main("guesscity", flags, "[flags]", os.Stderr, func(ctx context.Context) error {
		env, err := cli.Setup(flags, ymaps.ServiceGeocoder, ymaps.ServiceStaticMaps)
		if err != nil {
			return err
		}
		cfg := env.Config

		list := cfg.Game.Cities
		if *cities != "" {
			list = nil
			for _, c := range strings.Split(*cities, ",") {
				if c = strings.TrimSpace(c); c != "" {
					list = append(list, c)
				}
			}
		}

		base := flags.OutputDir
		if base == "" {
			base = cfg.Game.OutputDir
		}
		if base == "" {
			base = os.TempDir()
		}
		session, dir := demo.SessionDir(base)
		surface, err := env.Surface(flags, dir)
		if err != nil {
			return err
		}
		env.Logger.Info("starting game", "session", session, "dir", surface.Dir(), "cities", len(list))

		client := env.Client()
		game := &demo.Game{
			Geocoder: client,
			Maps:     client,
			Display:  surface,
			Config: demo.GameConfig{
				Cities:      list,
				Width:       cfg.Game.Width,
				Height:      cfg.Game.Height,
				Concurrency: cfg.Game.Concurrency,
				Sampler:     cfg.Sampler,
			},
			Out:    os.Stdout,
			Logger: env.Logger,
		}

		slides, err := game.Prepare(ctx)
		if err != nil {
			return err
		}
		_, err = game.Play(ctx, slides, os.Stdin)
		return err
	})
}
