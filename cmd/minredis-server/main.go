package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Pessina/minredis/internal/core/command"
	"github.com/Pessina/minredis/internal/infra/buildinfo"
	"github.com/Pessina/minredis/internal/infra/confloader"
	"github.com/Pessina/minredis/internal/infra/shutdown"
	"github.com/Pessina/minredis/internal/server/config"
	"github.com/Pessina/minredis/internal/server/redisserver"
	"github.com/Pessina/minredis/internal/storage"
	"github.com/Pessina/minredis/internal/storage/snapshot"
	"github.com/Pessina/minredis/internal/telemetry/logger"
	"github.com/Pessina/minredis/internal/telemetry/metric"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "minredis-server",
		Usage:   "in-memory key-value server speaking a RESP subset",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"MINREDIS_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (overrides log.level)",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Snapshot directory (overrides storage.dir)",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, &flags{
				configFile: c.String("config"),
				addr:       c.String("addr"),
				logLevel:   c.String("log-level"),
				dir:        c.String("dir"),
			})
		},
	}
}

type flags struct {
	configFile string
	addr       string
	logLevel   string
	dir        string
}

// overrides returns the flags that were set as dotted config keys.
func (f *flags) overrides() map[string]any {
	m := map[string]any{}
	if f.addr != "" {
		m["server.addr"] = f.addr
	}
	if f.logLevel != "" {
		m["log.level"] = f.logLevel
	}
	if f.dir != "" {
		m["storage.dir"] = f.dir
	}
	return m
}

func run(parent context.Context, f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := logger.Slog(log)

	bi := buildinfo.Get()
	log.Info("starting minredis-server",
		"version", bi.Version,
		"commit", bi.Commit,
		"config", f.configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	cipher, err := snapshot.CipherFromKey(cfg.Storage.EncryptionKey)
	if err != nil {
		return fmt.Errorf("snapshot encryption: %w", err)
	}

	storageCfg := storage.DefaultConfig()
	storageCfg.Dir = cfg.Storage.Dir
	storageCfg.SnapshotName = cfg.Storage.SnapshotName
	storageCfg.LoadOnStart = cfg.Storage.LoadOnStart
	storageCfg.Cipher = cipher
	storageCfg.Logger = slogLogger

	engine, err := storage.New(storageCfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	metrics := metric.NewRegistry()
	if err := metrics.Register(metric.NewKeysCollector(engine.Store())); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	executor := command.New(engine.Store(),
		command.WithSaver(engine),
		command.WithMetrics(metrics),
		command.WithLogger(log.With("component", "command")),
	)

	srv := redisserver.New(redisserver.Config{
		Addr:           cfg.Server.Addr,
		ReadBufferSize: cfg.Server.ReadBufferSize,
		RateLimit:      cfg.Server.RateLimit,
		IdleTimeout:    cfg.Server.IdleTimeout,
	}, executor,
		redisserver.WithLogger(log.With("component", "redisserver")),
		redisserver.WithMetrics(metrics),
	)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, slogLogger)

	// Hooks run in reverse: stop accepting, then stop metrics, then save.
	if cfg.Storage.SaveOnShutdown {
		shutdownHandler.OnShutdown("snapshot", func(context.Context) error {
			_, err := engine.Save("")
			metrics.SnapshotSaved(err)
			return err
		})
	}

	if cfg.Metrics.Enabled {
		metricSrv := metric.NewServer(cfg.Metrics.Addr, metrics, slogLogger)
		if err := metricSrv.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		log.Info("metrics listening", "addr", metricSrv.Addr().String())
		shutdownHandler.OnShutdown("metrics", metricSrv.Shutdown)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	shutdownHandler.OnShutdown("redisserver", srv.Shutdown)

	if f.configFile != "" {
		watcher, err := watchConfig(f, slogLogger)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	if err := shutdownHandler.Wait(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// loadConfig layers defaults, environment, the config file and flags, then
// verifies the result.
func loadConfig(f *flags) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if f.configFile != "" {
		opts = append(opts, confloader.WithConfigFile(f.configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if o := f.overrides(); len(o) > 0 {
		if err := loader.LoadMap(o); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig reloads the config file on change and applies log.level.
// Other settings need a restart.
func watchConfig(f *flags, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(f.configFile); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(f)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
