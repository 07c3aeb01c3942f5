package main

import (
	"log/slog"
	"os"

	"github.com/hello-bedrock/promptimage/cmd/promptimage/commands"
)

func main() {
	// Bootstrap logger until config is loaded by the root command
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	commands.Execute()
}
