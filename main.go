package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-sessions/internal"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
)

// main - is the entry point of the application. It loads .env, parses the command line and runs the selected mode.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env file: %v\n", err)
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

func newCommand() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "path to the yaml config file",
		Value:   "config.yml",
		Sources: cli.EnvVars("CONFIG_PATH"),
	}

	serve := func(_ context.Context, cmd *cli.Command) error {
		conf := initConfig(cmd.String("config"))
		return app.RunApp(initLogger(conf, os.Stdout), conf)
	}

	return &cli.Command{
		Name:   "tictactoe",
		Usage:  "tic-tac-toe game session service",
		Flags:  []cli.Flag{configFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server with the REST API, websocket feed and /mcp endpoint",
				Action: serve,
			},
			{
				Name:  "mcp-stdio",
				Usage: "serve the MCP tools over stdin/stdout",
				Action: func(_ context.Context, cmd *cli.Command) error {
					conf := initConfig(cmd.String("config"))
					// stdout carries the JSON-RPC stream
					return app.RunMCPStdio(initLogger(conf, os.Stderr), conf)
				},
			},
		},
	}
}

// initialize config.
func initConfig(path string) *config.Config {
	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config, out io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}
