package swap

import (
	"context"

	"github.com/MinterTeam/minter-swap/coreV2/types"
)

type TradeType int

const (
	TradeTypeExactInput  TradeType = 0
	TradeTypeExactOutput TradeType = 1
)

type Trade struct {
	Route        Route
	TradeType    TradeType
	InputAmount  TokenAmount
	OutputAmount TokenAmount
}

func NewTrade(route Route, amount TokenAmount, tradeType TradeType) *Trade {
	inputAmount, outputAmount := amount, amount
	if tradeType == TradeTypeExactInput {
		for _, pair := range route.Pairs {
			next, _, err := pair.GetOutputAmount(amount)
			if err != nil {
				return nil
			}
			amount = next
		}
		outputAmount = amount
	} else {
		for i := len(route.Pairs) - 1; i >= 0; i-- {
			next, _, err := route.Pairs[i].GetInputAmount(amount)
			if err != nil {
				return nil
			}
			amount = next
		}
		inputAmount = amount
	}

	if inputAmount.Amount.IsZero() || outputAmount.Amount.IsZero() {
		return nil
	}

	return &Trade{
		Route:        route,
		TradeType:    tradeType,
		InputAmount:  inputAmount,
		OutputAmount: outputAmount,
	}
}

func inputOutputComparator(tradeA, tradeB *Trade) int {
	if tradeA.OutputAmount.GetAmount().Eq(tradeB.OutputAmount.GetAmount()) {
		// trade A requires less input than trade B, so A should come first
		return tradeA.InputAmount.GetAmount().Cmp(tradeB.InputAmount.GetAmount())
	}
	// tradeA has less output than trade B, so should come second
	return tradeA.OutputAmount.GetAmount().Cmp(tradeB.OutputAmount.GetAmount()) * -1
}

// tradeComparator reports whether tradeB is better than tradeA.
func tradeComparator(tradeA, tradeB *Trade) bool {
	ioComp := inputOutputComparator(tradeA, tradeB)
	if ioComp != 0 {
		return ioComp == 1
	}

	// fewer hops wins a tie
	return len(tradeA.Route.Path) > len(tradeB.Route.Path)
}

func excluding(pairs []*PairTrade, i int) []*PairTrade {
	rest := make([]*PairTrade, 0, len(pairs)-1)
	rest = append(rest, pairs[:i]...)
	return append(rest, pairs[i+1:]...)
}

// GetBestTradeExactIn searches paths of at most maxHops pairs from the input
// token to currencyOut and returns the one with the largest output.
func GetBestTradeExactIn(ctx context.Context, pairs []*PairTrade, currencyOut types.Address, currencyAmountIn TokenAmount, maxHops int) *Trade {
	return getBestTradeExactIn(ctx, pairs, currencyOut, currencyAmountIn, maxHops, nil, currencyAmountIn, nil)
}

func getBestTradeExactIn(ctx context.Context, pairs []*PairTrade, currencyOut types.Address, tokenAmountIn TokenAmount, maxHops int, currentPairs []*PairTrade, originalAmountIn TokenAmount, bestTrade *Trade) *Trade {
	if maxHops <= 0 {
		return bestTrade
	}

	for i, pair := range pairs {
		select {
		case <-ctx.Done():
			return bestTrade
		default:
		}

		if !pair.involves(tokenAmountIn.Token) {
			continue
		}

		amountOut, _, err := pair.GetOutputAmount(tokenAmountIn)
		if err != nil {
			continue
		}

		route := append(append(make([]*PairTrade, 0, len(currentPairs)+1), currentPairs...), pair)
		if amountOut.Token == currencyOut {
			trade := NewTrade(NewRoute(route, originalAmountIn.Token, &currencyOut), originalAmountIn, TradeTypeExactInput)
			if trade == nil {
				continue
			}
			if bestTrade == nil || tradeComparator(bestTrade, trade) {
				bestTrade = trade
			}
		} else if maxHops > 1 && len(pairs) > 1 {
			bestTrade = getBestTradeExactIn(ctx, excluding(pairs, i), currencyOut, amountOut, maxHops-1, route, originalAmountIn, bestTrade)
		}
	}

	return bestTrade
}

// GetBestTradeExactOut searches paths of at most maxHops pairs from currencyIn
// to the output token and returns the one with the smallest input.
func GetBestTradeExactOut(ctx context.Context, pairs []*PairTrade, currencyIn types.Address, currencyAmountOut TokenAmount, maxHops int) *Trade {
	return getBestTradeExactOut(ctx, pairs, currencyIn, currencyAmountOut, maxHops, nil, currencyAmountOut, nil)
}

func getBestTradeExactOut(ctx context.Context, pairs []*PairTrade, currencyIn types.Address, amountOut TokenAmount, maxHops int, currentPairs []*PairTrade, originalAmountOut TokenAmount, bestTrade *Trade) *Trade {
	if maxHops <= 0 {
		return bestTrade
	}

	currencyOut := originalAmountOut.Token
	for i, pair := range pairs {
		select {
		case <-ctx.Done():
			return bestTrade
		default:
		}

		if !pair.involves(amountOut.Token) {
			continue
		}

		amountIn, _, err := pair.GetInputAmount(amountOut)
		if err != nil {
			continue
		}

		route := append([]*PairTrade{pair}, currentPairs...)
		if amountIn.Token == currencyIn {
			trade := NewTrade(NewRoute(route, currencyIn, &currencyOut), originalAmountOut, TradeTypeExactOutput)
			if trade == nil {
				continue
			}
			if bestTrade == nil || tradeComparator(bestTrade, trade) {
				bestTrade = trade
			}
		} else if maxHops > 1 && len(pairs) > 1 {
			bestTrade = getBestTradeExactOut(ctx, excluding(pairs, i), currencyIn, amountIn, maxHops-1, route, originalAmountOut, bestTrade)
		}
	}

	return bestTrade
}
