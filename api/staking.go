package api

import (
	"net/http"

	"github.com/MinterTeam/minter-swap/coreV2/state"
	"github.com/MinterTeam/minter-swap/coreV2/state/staking"
	"github.com/gin-gonic/gin"
)

type distributorResponse struct {
	Address           string `json:"address"`
	StakingToken      string `json:"staking_token"`
	RewardsToken      string `json:"rewards_token"`
	QueuedReward      string `json:"queued_reward"`
	Duration          uint64 `json:"duration"`
	TotalSupply       string `json:"total_supply"`
	RewardRate        string `json:"reward_rate"`
	PeriodFinish      uint64 `json:"period_finish"`
	RewardPerToken    string `json:"reward_per_token"`
	RewardForDuration string `json:"reward_for_duration"`
}

func newDistributorResponse(cState *state.CheckState, d *staking.Distributor) (distributorResponse, error) {
	perToken, err := d.RewardPerToken()
	if err != nil {
		return distributorResponse{}, err
	}
	forDuration, err := d.GetRewardForDuration()
	if err != nil {
		return distributorResponse{}, err
	}

	resp := distributorResponse{
		Address:           d.Address().String(),
		StakingToken:      d.StakingToken().String(),
		RewardsToken:      d.RewardsToken().String(),
		QueuedReward:      "0",
		Duration:          d.RewardsDuration(),
		TotalSupply:       d.TotalSupply().Dec(),
		RewardRate:        d.RewardRate().Dec(),
		PeriodFinish:      d.PeriodFinish(),
		RewardPerToken:    perToken.Dec(),
		RewardForDuration: forDuration.Dec(),
	}
	if info, ok := cState.Staking().Info(d.StakingToken()); ok {
		resp.QueuedReward = info.RewardAmount.Dec()
	}
	return resp, nil
}

func (s *Service) distributors(c *gin.Context) {
	cState, ok := s.checkState(c)
	if !ok {
		return
	}
	tokens := cState.Staking().StakingTokens()
	resp := make([]distributorResponse, 0, len(tokens))
	for _, token := range tokens {
		item, err := newDistributorResponse(cState, cState.Staking().Distributor(token))
		if err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"factory":       cState.Staking().Address().String(),
		"rewards_token": cState.Staking().RewardsToken().String(),
		"genesis":       cState.Staking().Genesis(),
		"distributors":  resp,
	})
}

func (s *Service) lookupDistributor(c *gin.Context) (*state.CheckState, *staking.Distributor) {
	cState, ok := s.checkState(c)
	if !ok {
		return nil, nil
	}
	token, err := parseAddress(c, "token")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return nil, nil
	}
	d := cState.Staking().Distributor(token)
	if d == nil {
		s.fail(c, http.StatusNotFound, staking.ErrorNotDeployed)
		return nil, nil
	}
	return cState, d
}

func (s *Service) distributor(c *gin.Context) {
	cState, d := s.lookupDistributor(c)
	if d == nil {
		return
	}
	resp, err := newDistributorResponse(cState, d)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) earned(c *gin.Context) {
	_, d := s.lookupDistributor(c)
	if d == nil {
		return
	}
	account, err := parseAddress(c, "account")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	earned, err := d.Earned(account)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account": account.String(),
		"staked":  d.BalanceOf(account).Dec(),
		"earned":  earned.Dec(),
	})
}
