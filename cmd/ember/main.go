package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dm-vev/ember/server"
	"github.com/dm-vev/ember/server/cmd/builtin"
	"github.com/dm-vev/ember/server/console"
	"github.com/pelletier/go-toml"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "path to the server configuration file")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	conf, err := readConfig(*configPath, log)
	if err != nil {
		log.Error("Failed reading config.", "error", err)
		os.Exit(1)
	}
	srv := conf.New()
	builtin.Register(srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go console.New(srv.World(), log).Run(ctx)
	go func() {
		if err := srv.ServeQuery(ctx); err != nil {
			log.Error("Failed answering query requests.", "error", err)
		}
	}()
	log.Info("Server running.", "name", srv.Name(), "world", srv.World().Name())

	select {
	case <-ctx.Done():
	case <-srv.Closed():
	}
	if err := srv.Close(); err != nil {
		log.Error("Failed closing server.", "error", err)
	}
}

// readConfig reads the configuration from the file at path. If the file does
// not exist, the default configuration is written to it first.
func readConfig(path string, log *slog.Logger) (server.Config, error) {
	c := server.DefaultConfig()
	var zero server.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return zero, fmt.Errorf("encode default config: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return zero, fmt.Errorf("create default config: %v", err)
		}
		return c.Config(log)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read config: %v", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return zero, fmt.Errorf("decode config: %v", err)
	}
	return c.Config(log)
}
