package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MinterTeam/minter-swap/coreV2/fixture"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/helpers"
	"github.com/MinterTeam/minter-swap/log"
	"github.com/MinterTeam/minter-swap/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Fixture deploys the reference exchange graph into a fresh state and commits it.
var Fixture = &cobra.Command{
	Use:   "fixture",
	Short: "Deploy the reference exchange graph",
	RunE:  runFixture,
}

func init() {
	Fixture.Flags().String("wallet", fixture.DefaultOptions().Wallet.String(), "deployer and owner of the graph")
}

func fixtureOptions(cmd *cobra.Command) (fixture.Options, error) {
	opts := fixture.DefaultOptions()

	wallet, err := cmd.Flags().GetString("wallet")
	if err != nil {
		return opts, err
	}
	if !types.IsHexAddress(wallet) {
		return opts, errors.Errorf("invalid wallet %q", wallet)
	}
	opts.Wallet = types.HexToAddress(wallet)

	if cfg.FeeToSetter != "" {
		if !types.IsHexAddress(cfg.FeeToSetter) {
			return opts, errors.Errorf("invalid fee_to_setter %q", cfg.FeeToSetter)
		}
		opts.FeeToSetter = types.HexToAddress(cfg.FeeToSetter)
	}

	opts.Genesis = cfg.Rewards.Genesis
	opts.RewardAmount = helpers.ExpandTo18Decimals(cfg.Rewards.Amount)
	opts.Duration = cfg.Rewards.Duration

	return opts, nil
}

func runFixture(cmd *cobra.Command, _ []string) error {
	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}

	opts, err := fixtureOptions(cmd)
	if err != nil {
		return err
	}

	s, appDB, closer, err := openState(0, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	if _, ok, err := appDB.GetDeployment(); err != nil {
		return err
	} else if ok {
		return errors.Errorf("graph already deployed in %s", cfg.DBDir())
	}

	f, err := fixture.V2Fixture(s, opts)
	if err != nil {
		return err
	}
	hash, err := s.Commit()
	if err != nil {
		return err
	}

	height := uint64(s.Height())
	if err := appDB.SetLastHeight(height); err != nil {
		return err
	}
	if err := appDB.AddVersion(version.Version, height); err != nil {
		return err
	}
	if err := appDB.SaveVersions(); err != nil {
		return err
	}
	deployment := f.Deployment()
	if err := appDB.SetDeployment(deployment); err != nil {
		return err
	}

	logger.Info("fixture committed", "height", height, "hash", fmt.Sprintf("%X", hash))

	out, err := json.MarshalIndent(deployment, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
