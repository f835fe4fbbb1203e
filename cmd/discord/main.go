// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/economy-bot/internal/app"
	"github.com/keshon/economy-bot/internal/config"
	"github.com/keshon/economy-bot/internal/discord"
	"github.com/keshon/economy-bot/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	logs, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatal().Err(err).Msg("configuring logs")
	}
	defer logs.Close()

	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	info := app.BuildInfo()
	log.Info().
		Str("version", info.Version).
		Str("commit", info.Commit).
		Str("go", info.GoVersion).
		Str("platform", info.Platform).
		Msgf("starting %s bot", info.Project)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	a, err := app.New(ctx, cfg, app.Options{Latency: session.HeartbeatLatency})
	if err != nil {
		log.Fatal().Err(err).Msg("starting application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("closing application")
		}
	}()

	dispatcher := a.Dispatcher(discord.NewNotifier(session, cfg.NoticeRate, cfg.NoticeBurst))
	tiers := discord.TierResolver{Owners: cfg.OwnerIDs, ModRoles: a.Settings}
	bot := discord.NewBot(session, dispatcher, tiers, cfg.HandlerTimeout)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Stringer("signal", s).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}

	log.Info().Msg("discord bot exited cleanly")
}
