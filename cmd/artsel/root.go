package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/artwork-select/internal/config"
	"github.com/Sternrassler/artwork-select/pkg/logging"
	"github.com/Sternrassler/artwork-select/pkg/session"
	"github.com/Sternrassler/artwork-select/pkg/source"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is everything a command needs: configuration and a ready session.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	redis   *redis.Client
	session *session.Session
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "artsel",
		Short:        "Browse and bulk-select artworks of the Art Institute of Chicago collection",
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default ./artsel.yaml or ~/.config/artsel/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(), newPageCmd(), newSelectCmd())

	return cmd
}

// newApp loads configuration, sets up logging and builds the session.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if !logging.ValidLevel(level) {
			return nil, fmt.Errorf("invalid --log-level %q", level)
		}
		cfg.Log.Level = level
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)
	logger := logging.NewLogger("cli")

	a := &app{cfg: cfg, logger: logger}

	if opts := cfg.RedisOptions(); opts != nil {
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			// Caching is optional; run without it
			logger.Warn().Err(err).Str("addr", opts.Addr).Msg("Redis unavailable, continuing without cache")
			rdb.Close()
		} else {
			logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
			a.redis = rdb
		}
	}

	client, err := source.New(cfg.SourceConfig(a.redis))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create source client: %w", err)
	}

	sess, err := session.New(client, cfg.SessionConfig())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	a.session = sess

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
}
