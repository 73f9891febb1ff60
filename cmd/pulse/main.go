// Pulse CLI — инструмент командной строки для уровней, локальных
// прогонов графов и проверок через HTTP API.
//
// Использование:
//
//	pulse [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	level     Встроенные уровни
//	solve     Локальный прогон графа на тестах уровня
//	solution  Управление решениями
//	grade     Проверки решений
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Pulse/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "pulse",
		Short:         "Pulse CLI — token dataflow puzzles",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("PULSE_API_URL"); v != "" {
		defaultURL = v
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewLevelCmd(outputFn),
		cli.NewSolveCmd(outputFn),
		cli.NewSolutionCmd(clientFn, outputFn),
		cli.NewGradeCmd(clientFn, outputFn),
	)

	// Ctrl+C прерывает solve между фазами
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
