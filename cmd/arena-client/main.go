package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/holdem-arena/internal/tui"
)

var CLI struct {
	Server   string `short:"s" long:"server" default:"http://localhost:8080" help:"Arena server base URL"`
	Game     string `short:"g" long:"game" help:"Existing game id to join"`
	Preset   string `short:"p" long:"preset" help:"Create a new game from this preset"`
	Seat     int    `long:"seat" default:"-1" help:"Seat (player id) to control, -1 to spectate"`
	LogFile  string `long:"log-file" default:"arena-client.log" help:"Log file path"`
	LogLevel string `short:"l" long:"log-level" default:"info" help:"Log level"`
}

func main() {
	kctx := kong.Parse(&CLI)

	if CLI.Game == "" && CLI.Preset == "" {
		fmt.Println("Either --game or --preset is required")
		kctx.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger := log.New(logFile)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	lipgloss.SetColorProfile(termenv.ColorProfile())

	ctx := context.Background()

	gameID := CLI.Game
	seat := CLI.Seat
	if gameID == "" {
		state, err := tui.CreateGame(ctx, CLI.Server, tui.CreateGameRequest{Preset: CLI.Preset})
		if err != nil {
			fmt.Printf("Failed to create game: %v\n", err)
			kctx.Exit(1)
		}
		gameID = state.GameID
		fmt.Printf("Created game %s\n", gameID)

		// Default to the first human seat when the caller did not pick one.
		if seat < 0 {
			for _, s := range state.Seats {
				if s.Agent == "human" {
					seat = s.PlayerID
					break
				}
			}
		}
	}

	client := tui.NewClient(CLI.Server, gameID, logger)
	if err := client.Connect(ctx); err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		kctx.Exit(1)
	}
	defer client.Close()

	logger.Info("joined game", "game", gameID, "seat", seat)

	model := tui.New(client, seat, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Printf("TUI error: %v\n", err)
		kctx.Exit(1)
	}
}
