// Command pharmacies shows the pharmacies near an address, colored by
// opening hours.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/NERVsystems/geoviewport/pkg/cli"
	"github.com/NERVsystems/geoviewport/pkg/demo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

func main() {
	flags := cli.RegisterFlags(flag.CommandLine, true)
	count := flag.Int("n", demo.DefaultPharmacyCount, "Number of pharmacies to show")
	flag.Parse()

	cli.Main("pharmacies", flags, "[flags] ADDRESS", os.Stderr, func(ctx context.Context) error {
		address, err := cli.Address(flag.Args())
		if err != nil {
			return err
		}
		env, err := cli.Setup(flags, ymaps.ServiceGeocoder, ymaps.ServiceSearch, ymaps.ServiceStaticMaps)
		if err != nil {
			return err
		}
		surface, err := env.Surface(flags, flags.OutputDir)
		if err != nil {
			return err
		}

		runner := demo.NewRunner(env.Client(), surface, os.Stdout, env.Logger)
		_, err = runner.Pharmacies(ctx, address, *count)
		return err
	})
}
