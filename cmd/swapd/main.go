package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MinterTeam/minter-swap/cmd/swapd/cmd"
	"github.com/MinterTeam/minter-swap/cmd/utils"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := cmd.RootCmd
	rootCmd.PersistentFlags().StringVar(&utils.SwapHome, "home-dir", "", "base dir (default is $HOME/.swap)")
	rootCmd.PersistentFlags().StringVar(&utils.SwapConfig, "config", "", "path to config (default is $(home-dir)/config/config.toml)")

	rootCmd.AddCommand(
		cmd.Fixture,
		cmd.RunAPI,
		cmd.ExportCommand,
		cmd.Version)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
