// Command district prints the city district an address belongs to.
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
	flags := cli.RegisterFlags(flag.CommandLine, false)
	flag.Parse()

	cli.Main("district", flags, "[flags] ADDRESS", os.Stderr, func(ctx context.Context) error {
		address, err := cli.Address(flag.Args())
		if err != nil {
			return err
		}
		env, err := cli.Setup(flags, ymaps.ServiceGeocoder)
		if err != nil {
			return err
		}

		runner := demo.NewRunner(env.Client(), nil, os.Stdout, env.Logger)
		_, err = runner.FindDistrict(ctx, address)
		return err
	})
}
