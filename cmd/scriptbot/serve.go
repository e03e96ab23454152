package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keepmind9/scriptbot/internal/bot"
	"github.com/keepmind9/scriptbot/internal/core"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	configFile string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot",
		Long:  "Connect to the Discord gateway and answer script search commands until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			config, err := core.LoadConfig(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
				os.Exit(1)
			}

			if err := logger.InitLogger(config.LoggerConfig()); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				os.Exit(1)
			}

			logger.WithFields(logrus.Fields{
				"config_file": configFile,
				"log_level":   config.Logging.Level,
				"log_file":    config.Logging.File,
				"prefix":      config.Discord.Prefix,
			}).Info("logger-initialized")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, config); err != nil {
				logger.WithField("error", err).Error("scriptbot-stopped-with-error")
				os.Exit(1)
			}
			logger.Info("scriptbot-stopped")
		},
	}
)

// serve runs the engine with every configured bot until ctx is cancelled.
func serve(ctx context.Context, config *core.Config) error {
	engine := core.NewEngine(config)
	engine.RegisterBot("discord", bot.NewDiscordBot(bot.DiscordOptions{
		Token:   config.Discord.Token,
		Prefix:  config.Discord.Prefix,
		GuildID: config.Discord.GuildID,
		Status:  config.Discord.Status,
	}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown-requested")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
}
