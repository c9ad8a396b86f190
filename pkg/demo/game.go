package demo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// ErrNoSlides is returned when no city could be turned into a slide.
var ErrNoSlides = errors.New("no slides could be prepared")

// SessionDir returns a fresh session id and the directory under base where
// that session's slides are written.
func SessionDir(base string) (id, dir string) {
	id = uuid.NewString()
	return id, filepath.Join(base, id)
}

// Slide is one obscured city map.
type Slide struct {
	City     string
	Viewport geo.ViewportSpec
	Image    []byte
}

// GameConfig tunes slide preparation.
type GameConfig struct {
	Cities      []string
	Width       int
	Height      int
	Concurrency int
	Sampler     geo.SamplerConfig
}

// Game is the guess-the-city slideshow.
type Game struct {
	Geocoder Geocoder
	Maps     MapFetcher
	Display  Display
	Config   GameConfig
	Rand     geo.Rand // nil means the global source
	Out      io.Writer
	Logger   *slog.Logger
}

func (g *Game) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Game) printf(format string, args ...any) {
	if g.Out != nil {
		fmt.Fprintf(g.Out, format, args...)
	}
}

func (g *Game) rand() geo.Rand {
	if g.Rand == nil {
		return geo.GlobalRand()
	}
	return geo.LockedRand(g.Rand)
}

// Prepare builds one slide per city, skipping cities that fail to geocode
// or render, and returns them shuffled. Cities are processed concurrently.
func (g *Game) Prepare(ctx context.Context) ([]Slide, error) {
	cities := g.Config.Cities
	limit := g.Config.Concurrency
	if limit <= 0 {
		limit = 1
	}
	rng := g.rand()

	slides := make([]*Slide, len(cities))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, city := range cities {
		eg.Go(func() error {
			slide, err := g.prepareSlide(egCtx, city, rng)
			if err != nil {
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				g.logger().Warn("skipping city", "city", city, "error", err)
				return nil
			}
			slides[i] = slide
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]Slide, 0, len(slides))
	for _, s := range slides {
		if s != nil {
			out = append(out, *s)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSlides
	}

	shuffle(out, rng)
	g.logger().Info("slides prepared", "count", len(out), "cities", len(cities))
	return out, nil
}

func (g *Game) prepareSlide(ctx context.Context, city string, rng geo.Rand) (*Slide, error) {
	top, err := g.Geocoder.GeocodeOne(ctx, ymaps.GeocodeRequest{
		Query:   city,
		Kind:    ymaps.KindLocality,
		Results: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	vp, err := geo.ObscuredViewportFromGeoObject(top.Raw, g.Config.Sampler, rng)
	if err != nil {
		return nil, fmt.Errorf("viewport: %w", err)
	}

	data, err := g.Maps.FetchMap(ctx, ymaps.MapRequest{
		Viewport: &vp,
		Width:    g.Config.Width,
		Height:   g.Config.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}

	g.logger().Debug("slide ready", "city", city, "ll", vp.LL(), "spn", vp.SPN())
	return &Slide{City: city, Viewport: vp, Image: data}, nil
}

// shuffle is a Fisher-Yates shuffle over the narrow Rand interface.
func shuffle(slides []Slide, rng geo.Rand) {
	for i := len(slides) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		slides[i], slides[j] = slides[j], slides[i]
	}
}

// Score is the outcome of a play session.
type Score struct {
	Guesses int
	Correct int
}

// Play runs the console loop over slides. An empty line advances to the next
// slide, wrapping around at the end; "q" quits; any other line is a guess
// for the current slide, compared case-insensitively. The loop also ends at
// EOF or when ctx is canceled.
func (g *Game) Play(ctx context.Context, slides []Slide, in io.Reader) (Score, error) {
	var score Score
	if len(slides) == 0 {
		return score, ErrNoSlides
	}

	g.printf("%d slides ready. Press Enter for the next slide, type a city to guess, q to quit.\n", len(slides))

	readCtx, stop := context.WithCancel(ctx)
	defer stop()
	lines, readErr := readLines(readCtx, in)
	current := -1
	solved := make([]bool, len(slides))
	for {
		var line string
		select {
		case <-ctx.Done():
			return score, ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return score, err
				}
				g.printf("Game over: %d of %d guesses correct.\n", score.Correct, score.Guesses)
				return score, nil
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case strings.EqualFold(line, "q"):
			g.printf("Game over: %d of %d guesses correct.\n", score.Correct, score.Guesses)
			return score, nil

		case line == "":
			current = (current + 1) % len(slides)
			g.show(ctx, slides, current)

		case current < 0:
			g.printf("Press Enter to see the first slide.\n")

		default:
			score.Guesses++
			if strings.EqualFold(line, slides[current].City) {
				if !solved[current] {
					solved[current] = true
					score.Correct++
				}
				g.printf("Correct, it is %s!\n", slides[current].City)
			} else {
				g.printf("No, that is not it. Try again or press Enter.\n")
			}
		}
	}
}

// readLines scans in on its own goroutine so that a blocked read does not
// delay cancellation. The error channel receives exactly one value before
// lines is closed: the read error, ctx.Err(), or nil at EOF. A read that
// never returns keeps the goroutine alive until in is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- fmt.Errorf("read input: %w", err)
			return
		}
		errc <- nil
	}()
	return lines, errc
}

func (g *Game) show(ctx context.Context, slides []Slide, i int) {
	name := fmt.Sprintf("slide-%02d", i+1)
	if _, err := g.Display.Show(ctx, name, slides[i].Image); err != nil {
		g.logger().Warn("could not show slide", "slide", i+1, "error", err)
	}
	g.printf("Slide %d/%d. Which city is this?\n", i+1, len(slides))
}
