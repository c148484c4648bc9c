package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tunequiz/tunequiz/internal/api"
	"github.com/tunequiz/tunequiz/internal/factory"
	"github.com/tunequiz/tunequiz/internal/services/grading"
	"github.com/tunequiz/tunequiz/internal/services/round"
	"github.com/tunequiz/tunequiz/internal/services/session"
	redisstorage "github.com/tunequiz/tunequiz/internal/storage/redis"
)

type serverConfig struct {
	bind        string
	port        int
	tracksPath  string
	storageType string
	redisURL    string
	postgresDSN string

	roundTimeLimit    time.Duration
	shuffle           bool
	closeCounts       bool
	firstCorrectBonus bool
	basePoints        int
	bonusPoints       int
	maxDistance       int

	verbose bool
}

func newCmd(cfg *serverConfig) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TUNEQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "tunequiz-server",
		Short:         "Networked music trivia: guess the title and artist of the playing track.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TUNEQUIZ_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TUNEQUIZ_PORT)")
	fs.StringVar(&cfg.tracksPath, "tracks", "data/tracks.json", "path to the JSON track library (env: TUNEQUIZ_TRACKS)")
	fs.StringVar(&cfg.storageType, "storage", factory.StorageTypeMemory, "game history backend: memory, redis or postgres (env: TUNEQUIZ_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: TUNEQUIZ_REDIS_URL)")
	fs.StringVar(&cfg.postgresDSN, "postgres-dsn", "", "postgres connection string (env: TUNEQUIZ_POSTGRES_DSN)")

	fs.DurationVar(&cfg.roundTimeLimit, "round-time-limit", 60*time.Second, "per-round guessing time, 0 disables the timer (env: TUNEQUIZ_ROUND_TIME_LIMIT)")
	fs.BoolVar(&cfg.shuffle, "shuffle", true, "randomize track order per game (env: TUNEQUIZ_SHUFFLE)")
	fs.BoolVar(&cfg.closeCounts, "close-counts", true, "count close matches as correct (env: TUNEQUIZ_CLOSE_COUNTS)")
	fs.BoolVar(&cfg.firstCorrectBonus, "first-correct-bonus", true, "award a bonus to the first correct answer (env: TUNEQUIZ_FIRST_CORRECT_BONUS)")
	fs.IntVar(&cfg.basePoints, "base-points", 1, "points for a correct round (env: TUNEQUIZ_BASE_POINTS)")
	fs.IntVar(&cfg.bonusPoints, "bonus-points", 1, "extra points for the first correct answer (env: TUNEQUIZ_BONUS_POINTS)")
	fs.IntVar(&cfg.maxDistance, "max-distance", 2, "maximum edit distance for a close match (env: TUNEQUIZ_MAX_DISTANCE)")

	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging (env: TUNEQUIZ_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *serverConfig) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	gradingCfg := grading.DefaultConfig()
	gradingCfg.MaxDistance = cfg.maxDistance

	factoryCfg := factory.Config{
		TracksPath: cfg.tracksPath,
		SessionConfig: session.Config{
			RoundTimeLimit: cfg.roundTimeLimit,
			Shuffle:        cfg.shuffle,
			Policy: round.Policy{
				CloseCountsAsCorrect: cfg.closeCounts,
				BasePoints:           cfg.basePoints,
				BonusPoints:          cfg.bonusPoints,
				FirstCorrectBonus:    cfg.firstCorrectBonus,
			},
		},
		GradingConfig: gradingCfg,
		Logger:        logger,
		StorageType:   cfg.storageType,
		PostgresDSN:   cfg.postgresDSN,
	}

	if cfg.storageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if cfg.redisURL != "" {
			redisCfg.URL = cfg.redisURL
		}
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return fmt.Errorf("wiring application: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Sessions: app.Sessions,
		History:  app.Recorder,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.bind
	serverCfg.Port = cfg.port
	server := api.NewServer(router, serverCfg, logger)

	shutdownCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		return err
	case <-shutdownCtx.Done():
		return server.Shutdown(context.Background())
	}
}

func main() {
	cfg := &serverConfig{}
	if err := newCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
