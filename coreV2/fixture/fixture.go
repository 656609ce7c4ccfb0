// Package fixture deploys the complete exchange graph into a state: tokens,
// the legacy and pair factories, routers, migrator and funded rewards pools.
package fixture

import (
	"github.com/MinterTeam/minter-swap/coreV2/appdb"
	"github.com/MinterTeam/minter-swap/coreV2/migrator"
	"github.com/MinterTeam/minter-swap/coreV2/router"
	"github.com/MinterTeam/minter-swap/coreV2/state"
	"github.com/MinterTeam/minter-swap/coreV2/state/exchange"
	"github.com/MinterTeam/minter-swap/coreV2/state/staking"
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/helpers"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	DefaultGenesis  = 1641907057
	DefaultDuration = 86400
)

type Options struct {
	Wallet       types.Address
	FeeToSetter  types.Address
	Genesis      uint64
	RewardAmount *uint256.Int
	Duration     uint64
	TokenSupply  *uint256.Int
	RewardSupply *uint256.Int
	NativeSupply *uint256.Int
}

func DefaultOptions() Options {
	return Options{
		Wallet:       types.HexToAddress("Mx00000000000000000000000000000000000000a1"),
		Genesis:      DefaultGenesis,
		RewardAmount: helpers.ExpandTo18Decimals(10000),
		Duration:     DefaultDuration,
		TokenSupply:  helpers.ExpandTo18Decimals(10000),
		RewardSupply: helpers.ExpandTo18Decimals(1000000),
		NativeSupply: helpers.ExpandTo18Decimals(10000),
	}
}

type Fixture struct {
	State  *state.State
	Wallet types.Address

	Token0      types.Address
	Token1      types.Address
	RewardToken types.Address
	WETH        types.Address
	WETHPartner types.Address

	FactoryV1             types.Address
	FactoryV2             types.Address
	StakingRewardsFactory types.Address

	Router01        *router.Router
	Router02        *router.Router
	Router          *router.Router
	LiquidityStaker *router.LiquidityStaker
	Migrator        *migrator.Migrator

	WETHExchangeV1    *exchange.Exchange
	Pair              *swap.Pair
	WETHPair          *swap.Pair
	StakingRewards    *staking.Distributor
	StakingRewardsEth *staking.Distributor
}

// V2Fixture deploys the graph with the wallet of opts as the deployer and
// owner of everything. The block time is moved to the rewards genesis when
// it is behind.
func V2Fixture(s *state.State, opts Options) (*Fixture, error) {
	if s.BlockTime() < opts.Genesis {
		if err := s.SetBlockTime(opts.Genesis); err != nil {
			return nil, err
		}
	}

	f := &Fixture{State: s, Wallet: opts.Wallet}
	err := s.Exec(func() error {
		return f.deploy(opts)
	})
	if err != nil {
		return nil, errors.Wrap(err, "deploy fixture")
	}

	s.Logger().Info("fixture deployed",
		"factory_v1", f.FactoryV1.String(),
		"factory_v2", f.FactoryV2.String(),
		"router", f.Router.Address().String(),
		"pair", f.Pair.Address().String(),
		"weth_pair", f.WETHPair.Address().String())

	return f, nil
}

func (f *Fixture) token(symbol string, supply *uint256.Int) (types.Address, error) {
	s, wallet := f.State, f.Wallet

	address := s.Deploy(wallet)
	if err := s.Assets.Create(address, symbol, types.DefaultDecimals, wallet); err != nil {
		return types.Address{}, err
	}
	if err := s.Assets.Mint(address, wallet, wallet, supply); err != nil {
		return types.Address{}, err
	}
	return address, nil
}

func (f *Fixture) deploy(opts Options) error {
	s, wallet := f.State, f.Wallet

	if err := s.Assets.AddNative(wallet, opts.NativeSupply); err != nil {
		return err
	}

	// tokens
	tokenA, err := f.token("TKA", opts.TokenSupply)
	if err != nil {
		return err
	}
	tokenB, err := f.token("TKB", opts.TokenSupply)
	if err != nil {
		return err
	}
	if f.RewardToken, err = f.token("RWD", opts.RewardSupply); err != nil {
		return err
	}
	f.WETH = s.Deploy(wallet)
	if err := s.Assets.CreateWrapped(f.WETH, "WETH"); err != nil {
		return err
	}
	if f.WETHPartner, err = f.token("WPT", opts.TokenSupply); err != nil {
		return err
	}

	// factories
	f.FactoryV1 = s.Deploy(wallet)
	if err := s.Exchanges.Deploy(f.FactoryV1); err != nil {
		return err
	}
	feeToSetter := opts.FeeToSetter
	if feeToSetter.IsZero() {
		feeToSetter = wallet
	}
	f.FactoryV2 = s.Deploy(wallet)
	if err := s.Swap.Deploy(f.FactoryV2, feeToSetter); err != nil {
		return err
	}
	f.StakingRewardsFactory = s.Deploy(wallet)
	if err := s.Staking.Init(f.StakingRewardsFactory, f.RewardToken, opts.Genesis, wallet); err != nil {
		return err
	}

	// routers
	f.Router01 = router.NewLegacy(s.Deploy(wallet), s.Swap, f.WETH, s.Assets, s)
	f.Router02 = router.New(s.Deploy(wallet), s.Swap, f.WETH, s.Assets, s)
	f.Router = f.Router02
	f.LiquidityStaker = router.NewLiquidityStaker(s.Deploy(wallet), s.Swap, f.WETH, s.Assets, s, s.Staking)
	f.Migrator = migrator.New(s.Deploy(wallet), s.Exchanges, f.Router01, s.Bus())

	// legacy exchange
	if f.WETHExchangeV1, err = s.Exchanges.CreateExchange(f.WETHPartner); err != nil {
		return err
	}

	// pairs
	if f.Pair, err = s.Swap.CreatePair(tokenA, tokenB); err != nil {
		return err
	}
	f.Token0, f.Token1 = f.Pair.Token0, f.Pair.Token1
	if f.WETHPair, err = s.Swap.CreatePair(f.WETH, f.WETHPartner); err != nil {
		return err
	}

	// rewards pools
	if f.StakingRewards, err = f.fund(f.Pair.Address(), opts); err != nil {
		return errors.Wrap(err, "fund pair rewards")
	}
	if f.StakingRewardsEth, err = f.fund(f.WETHPair.Address(), opts); err != nil {
		return errors.Wrap(err, "fund native pair rewards")
	}

	return nil
}

func (f *Fixture) fund(stakingToken types.Address, opts Options) (*staking.Distributor, error) {
	s, wallet := f.State, f.Wallet

	distributor, err := s.Staking.Deploy(wallet, stakingToken, opts.RewardAmount, opts.Duration)
	if err != nil {
		return nil, err
	}
	if err := s.Assets.Transfer(f.RewardToken, wallet, f.StakingRewardsFactory, opts.RewardAmount); err != nil {
		return nil, err
	}
	if err := s.Staking.NotifyRewardAmounts(); err != nil {
		return nil, err
	}
	return distributor, nil
}

// Deployment returns the handles of the graph for storing alongside the state.
func (f *Fixture) Deployment() *appdb.Deployment {
	return &appdb.Deployment{
		Wallet:                f.Wallet,
		Token0:                f.Token0,
		Token1:                f.Token1,
		RewardToken:           f.RewardToken,
		WETH:                  f.WETH,
		WETHPartner:           f.WETHPartner,
		FactoryV1:             f.FactoryV1,
		FactoryV2:             f.FactoryV2,
		StakingRewardsFactory: f.StakingRewardsFactory,
		Router01:              f.Router01.Address(),
		Router02:              f.Router02.Address(),
		LiquidityStaker:       f.LiquidityStaker.Address(),
		Migrator:              f.Migrator.Address(),
	}
}
