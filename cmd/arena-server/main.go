package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/lox/holdem-arena/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"arena.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Listen address (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	// Environment overrides, including the LLM API key, may live in a
	// local .env file.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.Addr != "" {
		host, portStr, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			fmt.Printf("Invalid addr %q: %v\n", CLI.Addr, err)
			kctx.Exit(1)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			fmt.Printf("Invalid port %q: %v\n", portStr, err)
			kctx.Exit(1)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		kctx.Exit(1)
	}

	logger.Info("starting arena server", "addr", cfg.Addr(), "max_games", cfg.Games.MaxConcurrent)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server exited", "error", err)
		kctx.Exit(1)
	}
}
