package events

import (
	"github.com/MinterTeam/minter-swap/coreV2/types"
)

// Event type names
const (
	TypeTransferEvent        = "swap/TransferEvent"
	TypeApprovalEvent        = "swap/ApprovalEvent"
	TypeDepositEvent         = "swap/DepositEvent"
	TypeWithdrawalEvent      = "swap/WithdrawalEvent"
	TypePairCreatedEvent     = "swap/PairCreatedEvent"
	TypeMintEvent            = "swap/MintEvent"
	TypeBurnEvent            = "swap/BurnEvent"
	TypeSwapEvent            = "swap/SwapEvent"
	TypeSyncEvent            = "swap/SyncEvent"
	TypeExchangeCreatedEvent = "swap/ExchangeCreatedEvent"
	TypeAddLiquidityEvent    = "swap/AddLiquidityEvent"
	TypeRemoveLiquidityEvent = "swap/RemoveLiquidityEvent"
	TypeTokenPurchaseEvent   = "swap/TokenPurchaseEvent"
	TypeNativePurchaseEvent  = "swap/NativePurchaseEvent"
	TypeStakedEvent          = "swap/StakedEvent"
	TypeWithdrawnEvent       = "swap/WithdrawnEvent"
	TypeRewardPaidEvent      = "swap/RewardPaidEvent"
	TypeRewardAddedEvent     = "swap/RewardAddedEvent"
	TypeMigrateEvent         = "swap/MigrateEvent"
)

type Event interface {
	Type() string
}

type Events []Event

type TransferEvent struct {
	Asset  types.Address `json:"asset"`
	From   types.Address `json:"from"`
	To     types.Address `json:"to"`
	Amount string        `json:"amount"`
}

func (e *TransferEvent) Type() string { return TypeTransferEvent }

type ApprovalEvent struct {
	Asset   types.Address `json:"asset"`
	Owner   types.Address `json:"owner"`
	Spender types.Address `json:"spender"`
	Amount  string        `json:"amount"`
}

func (e *ApprovalEvent) Type() string { return TypeApprovalEvent }

type DepositEvent struct {
	Asset   types.Address `json:"asset"`
	Account types.Address `json:"account"`
	Amount  string        `json:"amount"`
}

func (e *DepositEvent) Type() string { return TypeDepositEvent }

type WithdrawalEvent struct {
	Asset   types.Address `json:"asset"`
	Account types.Address `json:"account"`
	Amount  string        `json:"amount"`
}

func (e *WithdrawalEvent) Type() string { return TypeWithdrawalEvent }

type PairCreatedEvent struct {
	Token0 types.Address `json:"token0"`
	Token1 types.Address `json:"token1"`
	Pair   types.Address `json:"pair"`
	Index  uint64        `json:"index"`
}

func (e *PairCreatedEvent) Type() string { return TypePairCreatedEvent }

type MintEvent struct {
	Pair    types.Address `json:"pair"`
	Sender  types.Address `json:"sender"`
	Amount0 string        `json:"amount0"`
	Amount1 string        `json:"amount1"`
}

func (e *MintEvent) Type() string { return TypeMintEvent }

type BurnEvent struct {
	Pair    types.Address `json:"pair"`
	Sender  types.Address `json:"sender"`
	Amount0 string        `json:"amount0"`
	Amount1 string        `json:"amount1"`
	To      types.Address `json:"to"`
}

func (e *BurnEvent) Type() string { return TypeBurnEvent }

type SwapEvent struct {
	Pair       types.Address `json:"pair"`
	Sender     types.Address `json:"sender"`
	Amount0In  string        `json:"amount0_in"`
	Amount1In  string        `json:"amount1_in"`
	Amount0Out string        `json:"amount0_out"`
	Amount1Out string        `json:"amount1_out"`
	To         types.Address `json:"to"`
}

func (e *SwapEvent) Type() string { return TypeSwapEvent }

type SyncEvent struct {
	Pair     types.Address `json:"pair"`
	Reserve0 string        `json:"reserve0"`
	Reserve1 string        `json:"reserve1"`
}

func (e *SyncEvent) Type() string { return TypeSyncEvent }

type ExchangeCreatedEvent struct {
	Token    types.Address `json:"token"`
	Exchange types.Address `json:"exchange"`
}

func (e *ExchangeCreatedEvent) Type() string { return TypeExchangeCreatedEvent }

type AddLiquidityEvent struct {
	Exchange     types.Address `json:"exchange"`
	Provider     types.Address `json:"provider"`
	NativeAmount string        `json:"native_amount"`
	TokenAmount  string        `json:"token_amount"`
}

func (e *AddLiquidityEvent) Type() string { return TypeAddLiquidityEvent }

type RemoveLiquidityEvent struct {
	Exchange     types.Address `json:"exchange"`
	Provider     types.Address `json:"provider"`
	NativeAmount string        `json:"native_amount"`
	TokenAmount  string        `json:"token_amount"`
}

func (e *RemoveLiquidityEvent) Type() string { return TypeRemoveLiquidityEvent }

type TokenPurchaseEvent struct {
	Exchange     types.Address `json:"exchange"`
	Buyer        types.Address `json:"buyer"`
	NativeSold   string        `json:"native_sold"`
	TokensBought string        `json:"tokens_bought"`
}

func (e *TokenPurchaseEvent) Type() string { return TypeTokenPurchaseEvent }

type NativePurchaseEvent struct {
	Exchange     types.Address `json:"exchange"`
	Buyer        types.Address `json:"buyer"`
	TokensSold   string        `json:"tokens_sold"`
	NativeBought string        `json:"native_bought"`
}

func (e *NativePurchaseEvent) Type() string { return TypeNativePurchaseEvent }

type StakedEvent struct {
	Distributor types.Address `json:"distributor"`
	User        types.Address `json:"user"`
	Amount      string        `json:"amount"`
}

func (e *StakedEvent) Type() string { return TypeStakedEvent }

type WithdrawnEvent struct {
	Distributor types.Address `json:"distributor"`
	User        types.Address `json:"user"`
	Amount      string        `json:"amount"`
}

func (e *WithdrawnEvent) Type() string { return TypeWithdrawnEvent }

type RewardPaidEvent struct {
	Distributor types.Address `json:"distributor"`
	User        types.Address `json:"user"`
	Reward      string        `json:"reward"`
}

func (e *RewardPaidEvent) Type() string { return TypeRewardPaidEvent }

type RewardAddedEvent struct {
	Distributor  types.Address `json:"distributor"`
	Reward       string        `json:"reward"`
	PeriodFinish uint64        `json:"period_finish"`
}

func (e *RewardAddedEvent) Type() string { return TypeRewardAddedEvent }

type MigrateEvent struct {
	Token        types.Address `json:"token"`
	Sender       types.Address `json:"sender"`
	To           types.Address `json:"to"`
	TokenAmount  string        `json:"token_amount"`
	NativeAmount string        `json:"native_amount"`
	Liquidity    string        `json:"liquidity"`
}

func (e *MigrateEvent) Type() string { return TypeMigrateEvent }
