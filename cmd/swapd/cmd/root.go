package cmd

import (
	"strings"

	"github.com/MinterTeam/minter-swap/cmd/utils"
	"github.com/MinterTeam/minter-swap/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:           "swapd",
	Short:         "Constant-product exchange engine",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetConfigFile(utils.GetSwapConfigPath())
		v.SetEnvPrefix("SWAP")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		cfg = config.GetConfig()

		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "read config")
		}

		if err := v.Unmarshal(cfg); err != nil {
			return errors.Wrap(err, "decode config")
		}

		if cfg.KeepLastStates < 1 {
			return errors.New("keep_last_states field should be greater than 0")
		}

		return nil
	},
}
