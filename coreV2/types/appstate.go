package types

import (
	"fmt"

	"github.com/MinterTeam/minter-swap/helpers"
)

// AppState is the exported snapshot of the whole engine.
type AppState struct {
	Note         string        `json:"note"`
	BlockTime    uint64        `json:"block_time"`
	Assets       []Asset       `json:"assets,omitempty"`
	Native       []Balance     `json:"native,omitempty"`
	Factory      Factory       `json:"factory"`
	Pools        []Pool        `json:"pools,omitempty"`
	Exchanges    []Exchange    `json:"exchanges,omitempty"`
	RewardsPools []RewardsPool `json:"rewards_pools,omitempty"`
}

type Balance struct {
	Address Address `json:"address"`
	Value   string  `json:"value"`
}

type Allowance struct {
	Owner   Address `json:"owner"`
	Spender Address `json:"spender"`
	Value   string  `json:"value"`
}

type Asset struct {
	Address        Address     `json:"address"`
	Symbol         string      `json:"symbol"`
	Decimals       uint8       `json:"decimals"`
	TotalSupply    string      `json:"total_supply"`
	Minter         Address     `json:"minter"`
	Wrapped        bool        `json:"wrapped,omitempty"`
	TransferFeeBps uint64      `json:"transfer_fee_bps,omitempty"`
	Balances       []Balance   `json:"balances,omitempty"`
	Allowances     []Allowance `json:"allowances,omitempty"`
}

type Factory struct {
	Address     Address `json:"address"`
	FeeTo       Address `json:"fee_to"`
	FeeToSetter Address `json:"fee_to_setter"`
}

type Pool struct {
	Address              Address `json:"address"`
	Token0               Address `json:"token0"`
	Token1               Address `json:"token1"`
	Reserve0             string  `json:"reserve0"`
	Reserve1             string  `json:"reserve1"`
	Price0CumulativeLast string  `json:"price0_cumulative_last"`
	Price1CumulativeLast string  `json:"price1_cumulative_last"`
	BlockTimestampLast   uint64  `json:"block_timestamp_last"`
	KLast                string  `json:"k_last"`
}

type Exchange struct {
	Address Address `json:"address"`
	Token   Address `json:"token"`
}

type RewardsPool struct {
	StakingToken         Address `json:"staking_token"`
	Distributor          Address `json:"distributor"`
	RewardsToken         Address `json:"rewards_token"`
	PendingRewardAmount  string  `json:"pending_reward_amount"`
	Duration             uint64  `json:"duration"`
	RewardRate           string  `json:"reward_rate"`
	PeriodFinish         uint64  `json:"period_finish"`
	LastUpdateTime       uint64  `json:"last_update_time"`
	RewardPerTokenStored string  `json:"reward_per_token_stored"`
	TotalStaked          string  `json:"total_staked"`
}

// Verify performs basic consistency checks of an exported state.
func (s *AppState) Verify() error {
	assets := map[Address]struct{}{}
	for _, asset := range s.Assets {
		if _, exists := assets[asset.Address]; exists {
			return fmt.Errorf("duplicated asset %s", asset.Address.String())
		}
		assets[asset.Address] = struct{}{}

		if !helpers.IsValidBigInt(asset.TotalSupply) {
			return fmt.Errorf("total supply of asset %s is not valid", asset.Address.String())
		}

		for _, balance := range asset.Balances {
			if !helpers.IsValidBigInt(balance.Value) {
				return fmt.Errorf("balance of %s in asset %s is not valid", balance.Address.String(), asset.Address.String())
			}
		}
	}

	pools := map[Address]struct{}{}
	for _, pool := range s.Pools {
		if _, exists := pools[pool.Address]; exists {
			return fmt.Errorf("duplicated pool %s", pool.Address.String())
		}
		pools[pool.Address] = struct{}{}

		if pool.Token0.Compare(pool.Token1) >= 0 {
			return fmt.Errorf("pool %s tokens are not sorted", pool.Address.String())
		}
		if _, exists := assets[pool.Address]; !exists {
			return fmt.Errorf("pool %s has no liquidity asset", pool.Address.String())
		}
		if !helpers.IsValidBigInt(pool.Reserve0) || !helpers.IsValidBigInt(pool.Reserve1) {
			return fmt.Errorf("pool %s reserves are not valid", pool.Address.String())
		}
	}

	for _, rewardsPool := range s.RewardsPools {
		if _, exists := assets[rewardsPool.StakingToken]; !exists {
			return fmt.Errorf("rewards pool %s has unknown staking token", rewardsPool.Distributor.String())
		}
	}

	return nil
}
