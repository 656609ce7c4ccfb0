package api

import (
	"net/http"
	"strconv"

	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	defaultMaxHops = 3
	maxMaxHops     = 4
)

var ErrorInvalidAmount = errors.New("INVALID_AMOUNT")

type pairResponse struct {
	Address              string `json:"address"`
	Token0               string `json:"token0"`
	Token1               string `json:"token1"`
	Reserve0             string `json:"reserve0"`
	Reserve1             string `json:"reserve1"`
	BlockTimestampLast   uint64 `json:"block_timestamp_last"`
	Price0CumulativeLast string `json:"price0_cumulative_last"`
	Price1CumulativeLast string `json:"price1_cumulative_last"`
	TotalSupply          string `json:"total_supply"`
}

func newPairResponse(pair *swap.Pair) pairResponse {
	reserve0, reserve1, ts := pair.Reserves()
	price0, price1 := pair.PriceCumulativeLast()
	return pairResponse{
		Address:              pair.Address().String(),
		Token0:               pair.Token0.String(),
		Token1:               pair.Token1.String(),
		Reserve0:             reserve0.Dec(),
		Reserve1:             reserve1.Dec(),
		BlockTimestampLast:   ts,
		Price0CumulativeLast: price0.Dec(),
		Price1CumulativeLast: price1.Dec(),
		TotalSupply:          pair.TotalSupply().Dec(),
	}
}

func (s *Service) pairs(c *gin.Context) {
	cState, ok := s.checkState(c)
	if !ok {
		return
	}
	pairs := cState.Swap().Pairs()
	resp := make([]pairResponse, 0, len(pairs))
	for _, pair := range pairs {
		resp = append(resp, newPairResponse(pair))
	}
	c.JSON(http.StatusOK, gin.H{"pairs": resp})
}

func (s *Service) pair(c *gin.Context) {
	cState, ok := s.checkState(c)
	if !ok {
		return
	}
	tokenA, err := parseAddress(c, "tokenA")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	tokenB, err := parseAddress(c, "tokenB")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	pair := cState.Swap().Pair(tokenA, tokenB)
	if pair == nil {
		s.fail(c, http.StatusNotFound, swap.ErrorNotExist)
		return
	}
	c.JSON(http.StatusOK, newPairResponse(pair))
}

type quoteResponse struct {
	Type   string   `json:"type"`
	Input  string   `json:"amount_in"`
	Output string   `json:"amount_out"`
	Path   []string `json:"path"`
}

// quote finds the best route over pairs with liquidity, at most max_hops
// pairs long. The amount is exact input unless ?type=out is given.
func (s *Service) quote(c *gin.Context) {
	cState, ok := s.checkState(c)
	if !ok {
		return
	}
	from, err := parseAddress(c, "from")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	to, err := parseAddress(c, "to")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	amount, err := uint256.FromDecimal(c.Param("amount"))
	if err != nil || amount.IsZero() {
		s.fail(c, http.StatusBadRequest, errors.Wrapf(ErrorInvalidAmount, "%q", c.Param("amount")))
		return
	}
	maxHops := defaultMaxHops
	if value := c.Query("max_hops"); value != "" {
		if maxHops, err = strconv.Atoi(value); err != nil || maxHops < 1 || maxHops > maxMaxHops {
			s.fail(c, http.StatusBadRequest, errors.Wrapf(ErrorInvalidAmount, "max_hops %q", value))
			return
		}
	}

	tradeType := c.DefaultQuery("type", "in")
	var trade *swap.Trade
	switch tradeType {
	case "in":
		trade = cState.Swap().GetBestTradeExactIn(c.Request.Context(), from, to, amount, maxHops)
	case "out":
		trade = cState.Swap().GetBestTradeExactOut(c.Request.Context(), from, to, amount, maxHops)
	default:
		s.fail(c, http.StatusBadRequest, errors.Errorf("unknown trade type %q", tradeType))
		return
	}
	if trade == nil {
		s.fail(c, http.StatusNotFound, swap.ErrorInsufficientLiquidity)
		return
	}

	path := make([]string, 0, len(trade.Route.Path))
	for _, token := range trade.Route.Path {
		path = append(path, token.String())
	}
	c.JSON(http.StatusOK, quoteResponse{
		Type:   tradeType,
		Input:  trade.InputAmount.GetAmount().Dec(),
		Output: trade.OutputAmount.GetAmount().Dec(),
		Path:   path,
	})
}
