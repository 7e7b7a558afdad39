// Command sos watches stdin for the emergency key sequence. Press the
// trigger key twice within the window (default "v", 2s) to raise an alert.
package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ayusutra-api/internal/app"
	"github.com/jwalitptl/ayusutra-api/internal/config"
	"github.com/jwalitptl/ayusutra-api/internal/keyboard"
	"github.com/jwalitptl/ayusutra-api/internal/service/alert"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, app.NewLogger(cfg.Log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer a.Close()

	log.Info().Str("trigger_key", cfg.SOS.TriggerKey).Dur("window", cfg.SOS.Window).Msg("SOS console ready")

	if err := run(ctx, os.Stdin, a.Alerts); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("SOS console stopped")
	}
	log.Info().Msg("SOS console exited")
}

// run listens on in until EOF or ctx ends. The subscription exists before
// the first key is read, and at EOF every key already read is handled
// before run returns.
func run(ctx context.Context, in io.Reader, alerts *alert.Service) error {
	bus := keyboard.NewBus(0)
	keys, release := bus.Subscribe()

	pumpErr := make(chan error, 1)
	go func() {
		pumpErr <- pump(ctx, in, bus)
		release()
	}()

	if err := alerts.Run(ctx, keys); err != nil {
		return err
	}
	// keys only closes after pump has returned.
	return <-pumpErr
}

// pump publishes every rune read from r as a key press until EOF or ctx ends.
func pump(ctx context.Context, r io.Reader, bus *keyboard.Bus) error {
	in := bufio.NewReader(r)
	for ctx.Err() == nil {
		ch, _, err := in.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ch == '\n' || ch == '\r' {
			continue
		}
		bus.Publish(string(ch))
	}
	return nil
}
