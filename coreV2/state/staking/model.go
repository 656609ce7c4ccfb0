package staking

import (
	"math/big"

	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/holiman/uint256"
)

// Info is the registration of a rewards pool for one staking token.
type Info struct {
	StakingToken types.Address
	Distributor  types.Address
	RewardAmount *uint256.Int
	Duration     uint64
}

type factoryRecord struct {
	Address      types.Address
	RewardsToken types.Address
	Genesis      uint64
	Owner        types.Address
}

type infoRecord struct {
	StakingToken types.Address
	Distributor  types.Address
	RewardAmount *big.Int
	Duration     uint64
}

// period is the distributor-wide accrual state. Values are replaced, never
// mutated in place, so a copy is a snapshot.
type period struct {
	RewardRate           *uint256.Int
	RewardPerTokenStored *uint256.Int
	LastUpdateTime       uint64
	PeriodFinish         uint64
	TotalSupply          *uint256.Int
}

type periodRecord struct {
	StakingToken         types.Address
	RewardsToken         types.Address
	RewardsDistribution  types.Address
	RewardsDuration      uint64
	RewardRate           *big.Int
	RewardPerTokenStored *big.Int
	LastUpdateTime       uint64
	PeriodFinish         uint64
	TotalSupply          *big.Int
}

// Stake is the record of one account in a distributor.
type Stake struct {
	Balance                *uint256.Int
	UserRewardPerTokenPaid *uint256.Int
	Rewards                *uint256.Int
}

func newStake() *Stake {
	return &Stake{
		Balance:                new(uint256.Int),
		UserRewardPerTokenPaid: new(uint256.Int),
		Rewards:                new(uint256.Int),
	}
}

func (s *Stake) isEmpty() bool {
	return s.Balance.IsZero() && s.UserRewardPerTokenPaid.IsZero() && s.Rewards.IsZero()
}

type stakeRecord struct {
	Balance                *big.Int
	UserRewardPerTokenPaid *big.Int
	Rewards                *big.Int
}

func (s *Stake) record() *stakeRecord {
	return &stakeRecord{
		Balance:                s.Balance.ToBig(),
		UserRewardPerTokenPaid: s.UserRewardPerTokenPaid.ToBig(),
		Rewards:                s.Rewards.ToBig(),
	}
}

func (r *stakeRecord) stake() *Stake {
	return &Stake{
		Balance:                uint256.MustFromBig(r.Balance),
		UserRewardPerTokenPaid: uint256.MustFromBig(r.UserRewardPerTokenPaid),
		Rewards:                uint256.MustFromBig(r.Rewards),
	}
}
