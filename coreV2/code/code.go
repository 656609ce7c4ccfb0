package code

import (
	"errors"
	"strconv"

	"github.com/MinterTeam/minter-swap/coreV2/migrator"
	"github.com/MinterTeam/minter-swap/coreV2/router"
	"github.com/MinterTeam/minter-swap/coreV2/state"
	"github.com/MinterTeam/minter-swap/coreV2/state/assets"
	"github.com/MinterTeam/minter-swap/coreV2/state/exchange"
	"github.com/MinterTeam/minter-swap/coreV2/state/guard"
	"github.com/MinterTeam/minter-swap/coreV2/state/staking"
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/MinterTeam/minter-swap/math"
)

// Codes for call results
const (
	// general
	OK              uint32 = 0
	Unknown         uint32 = 1
	DecodeError     uint32 = 106
	Overflow        uint32 = 112
	Underflow       uint32 = 116
	DivisionByZero  uint32 = 117
	Expired         uint32 = 120
	Reentrancy      uint32 = 121
	TimeBackwards   uint32 = 122
	InvalidArgument uint32 = 123

	// ledger
	InsufficientFunds     uint32 = 107
	InsufficientAllowance uint32 = 108
	AssetNotExists        uint32 = 102
	AssetExists           uint32 = 201
	NotMinter             uint32 = 202
	NotWrapped            uint32 = 203
	InvalidFee            uint32 = 204

	// swap pool
	PairNotExists               uint32 = 701
	InsufficientInputAmount     uint32 = 702
	InsufficientLiquidity       uint32 = 703
	InsufficientLiquidityMinted uint32 = 704
	InsufficientLiquidityBurned uint32 = 705
	InsufficientOutputAmount    uint32 = 707
	PairAlreadyExists           uint32 = 708
	IdenticalAddresses          uint32 = 715
	ZeroAddress                 uint32 = 716
	Forbidden                   uint32 = 717
	FactoryExists               uint32 = 718
	FactoryNotDeployed          uint32 = 719
	InvariantViolation          uint32 = 720
	InsufficientAmount          uint32 = 721
	InvalidTo                   uint32 = 722
	CalleeNotExists             uint32 = 723

	// router
	InsufficientAAmount  uint32 = 730
	InsufficientBAmount  uint32 = 731
	ExcessiveInputAmount uint32 = 732
	InvalidPath          uint32 = 733
	Unsupported          uint32 = 734
	NoDistributor        uint32 = 735

	// legacy exchange and migration
	ExchangeExists            uint32 = 740
	ExchangeNotExists         uint32 = 741
	InvalidToken              uint32 = 742
	InsufficientAssetAmount   uint32 = 743
	InsufficientNativeAmount  uint32 = 744
	ZeroAmount                uint32 = 745
	InsufficientExchangeOut   uint32 = 746
	ExcessiveExchangeInput    uint32 = 747
	InsufficientExchangeFunds uint32 = 748

	// staking rewards
	NotOwner                uint32 = 900
	AlreadyDeployed         uint32 = 901
	NotDeployed             uint32 = 902
	NotReadyToDeploy        uint32 = 903
	NoDeploys               uint32 = 904
	InvalidDuration         uint32 = 905
	CannotStakeZero         uint32 = 906
	CannotWithdrawZero      uint32 = 907
	InsufficientStake       uint32 = 405
	NotRewardsDistribution  uint32 = 908
	RewardTooHigh           uint32 = 909
	RewardsFactoryExists    uint32 = 910
	RewardsFactoryNotExists uint32 = 911
)

type mapping struct {
	err  error
	code uint32
}

// table is matched in order, so errors shared between packages resolve to
// the first entry naming them.
var table = []mapping{
	{math.ErrorOverflow, Overflow},
	{math.ErrorUnderflow, Underflow},
	{math.ErrorDivisionByZero, DivisionByZero},
	{guard.ErrorLocked, Reentrancy},
	{state.ErrorTimeBackwards, TimeBackwards},

	{assets.ErrorInsufficientBalance, InsufficientFunds},
	{assets.ErrorInsufficientAllowance, InsufficientAllowance},
	{assets.ErrorAssetNotExists, AssetNotExists},
	{assets.ErrorAssetExists, AssetExists},
	{assets.ErrorNotMinter, NotMinter},
	{assets.ErrorNotWrapped, NotWrapped},
	{assets.ErrorInvalidFee, InvalidFee},

	{swap.ErrorNotExist, PairNotExists},
	{swap.ErrorInsufficientInputAmount, InsufficientInputAmount},
	{swap.ErrorInsufficientLiquidity, InsufficientLiquidity},
	{swap.ErrorInsufficientLiquidityMinted, InsufficientLiquidityMinted},
	{swap.ErrorInsufficientLiquidityBurned, InsufficientLiquidityBurned},
	{swap.ErrorInsufficientOutputAmount, InsufficientOutputAmount},
	{swap.ErrorPairExists, PairAlreadyExists},
	{swap.ErrorIdenticalAddresses, IdenticalAddresses},
	{swap.ErrorZeroAddress, ZeroAddress},
	{swap.ErrorForbidden, Forbidden},
	{swap.ErrorFactoryExists, FactoryExists},
	{swap.ErrorFactoryNotDeployed, FactoryNotDeployed},
	{swap.ErrorK, InvariantViolation},
	{swap.ErrorInsufficientAmount, InsufficientAmount},
	{swap.ErrorInvalidTo, InvalidTo},
	{swap.ErrorCalleeNotExists, CalleeNotExists},

	{router.ErrorExpired, Expired},
	{router.ErrorInsufficientAAmount, InsufficientAAmount},
	{router.ErrorInsufficientBAmount, InsufficientBAmount},
	{router.ErrorExcessiveInputAmount, ExcessiveInputAmount},
	{router.ErrorInvalidPath, InvalidPath},
	{router.ErrorUnsupported, Unsupported},
	{router.ErrorNoDistributor, NoDistributor},

	{exchange.ErrorExpired, Expired},
	{exchange.ErrorExchangeExists, ExchangeExists},
	{exchange.ErrorExchangeNotExists, ExchangeNotExists},
	{exchange.ErrorFactoryExists, FactoryExists},
	{exchange.ErrorFactoryNotDeployed, FactoryNotDeployed},
	{exchange.ErrorInvalidToken, InvalidToken},
	{exchange.ErrorInvalidArgument, InvalidArgument},
	{exchange.ErrorInsufficientLiquidity, InsufficientExchangeFunds},
	{exchange.ErrorInsufficientOutput, InsufficientExchangeOut},
	{exchange.ErrorExcessiveInput, ExcessiveExchangeInput},
	{migrator.ErrorInsufficientAssetAmount, InsufficientAssetAmount},
	{migrator.ErrorInsufficientNativeAmount, InsufficientNativeAmount},
	{migrator.ErrorZeroAmount, ZeroAmount},

	{staking.ErrorFactoryExists, RewardsFactoryExists},
	{staking.ErrorFactoryNotDeployed, RewardsFactoryNotExists},
	{staking.ErrorNotOwner, NotOwner},
	{staking.ErrorAlreadyDeployed, AlreadyDeployed},
	{staking.ErrorNotDeployed, NotDeployed},
	{staking.ErrorNotReadyToDeploy, NotReadyToDeploy},
	{staking.ErrorNoDeploys, NoDeploys},
	{staking.ErrorInvalidDuration, InvalidDuration},
	{staking.ErrorCannotStakeZero, CannotStakeZero},
	{staking.ErrorCannotWithdrawZero, CannotWithdrawZero},
	{staking.ErrorInsufficientStake, InsufficientStake},
	{staking.ErrorNotRewardsDistribution, NotRewardsDistribution},
	{staking.ErrorRewardTooHigh, RewardTooHigh},
}

// FromError returns the code of the first known error in the chain of err.
func FromError(err error) uint32 {
	if err == nil {
		return OK
	}
	for _, m := range table {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return Unknown
}

// NewError describes err for API responses.
func NewError(err error) *customError {
	c := FromError(err)
	e := &customError{Code: strconv.Itoa(int(c)), Log: err.Error()}
	for _, m := range table {
		if m.code == c && errors.Is(err, m.err) {
			e.Name = m.err.Error()
			break
		}
	}
	return e
}

type customError struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
	Log  string `json:"log,omitempty"`
}

func (e *customError) Error() string {
	return e.Log
}
