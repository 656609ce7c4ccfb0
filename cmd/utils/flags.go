package utils

import (
	"os"
	"path/filepath"
)

var (
	SwapHome   string
	SwapConfig string
)

func GetSwapHome() string {
	if SwapHome != "" {
		return SwapHome
	}

	home := os.Getenv("SWAPHOME")

	if home != "" {
		return home
	}

	return os.ExpandEnv(filepath.Join("$HOME", ".swap"))
}

func GetSwapConfigPath() string {
	if SwapConfig != "" {
		return SwapConfig
	}

	return GetSwapHome() + "/config/config.toml"
}
