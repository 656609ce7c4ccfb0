package staking

import (
	"sort"
	"sync"

	"github.com/MinterTeam/minter-swap/coreV2/events"
	"github.com/MinterTeam/minter-swap/coreV2/state/bus"
	"github.com/MinterTeam/minter-swap/coreV2/state/guard"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/MinterTeam/minter-swap/math"
	"github.com/holiman/uint256"
)

// Distributor pays rewardsToken to stakers of stakingToken pro rata to stake
// and time.
type Distributor struct {
	address             types.Address
	stakingToken        types.Address
	rewardsToken        types.Address
	rewardsDistribution types.Address
	rewardsDuration     uint64

	mu     sync.RWMutex
	period period
	stakes map[types.Address]*Stake

	dirty         bool
	dirtyAccounts map[types.Address]struct{}
	markDirty     func()

	guard *guard.Guard
	bus   *bus.Bus
}

func newDistributor(bus *bus.Bus, address, stakingToken, rewardsToken, rewardsDistribution types.Address, duration uint64) *Distributor {
	return &Distributor{
		address:             address,
		stakingToken:        stakingToken,
		rewardsToken:        rewardsToken,
		rewardsDistribution: rewardsDistribution,
		rewardsDuration:     duration,
		period: period{
			RewardRate:           new(uint256.Int),
			RewardPerTokenStored: new(uint256.Int),
			TotalSupply:          new(uint256.Int),
		},
		stakes:        map[types.Address]*Stake{},
		dirtyAccounts: map[types.Address]struct{}{},
		markDirty:     func() {},
		guard:         &guard.Guard{},
		bus:           bus,
	}
}

func (d *Distributor) Address() types.Address {
	return d.address
}

func (d *Distributor) StakingToken() types.Address {
	return d.stakingToken
}

func (d *Distributor) RewardsToken() types.Address {
	return d.rewardsToken
}

func (d *Distributor) RewardsDuration() uint64 {
	return d.rewardsDuration
}

func (d *Distributor) snapshot() period {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.period
}

func (d *Distributor) stake(account types.Address) *Stake {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if s, ok := d.stakes[account]; ok {
		return s
	}
	return newStake()
}

func (d *Distributor) setPeriod(p period) {
	d.mu.Lock()
	prev := d.period
	d.period = p
	d.dirty = true
	d.mu.Unlock()

	d.markDirty()
	d.bus.Record("staking.period", func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.period = prev
	})
}

func (d *Distributor) setStake(account types.Address, s *Stake) {
	d.mu.Lock()
	prev, existed := d.stakes[account]
	d.stakes[account] = s
	d.dirtyAccounts[account] = struct{}{}
	d.mu.Unlock()

	d.markDirty()
	d.bus.Record("staking.stake", func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if existed {
			d.stakes[account] = prev
		} else {
			delete(d.stakes, account)
		}
	})
}

func (d *Distributor) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(d.snapshot().TotalSupply)
}

func (d *Distributor) BalanceOf(account types.Address) *uint256.Int {
	return new(uint256.Int).Set(d.stake(account).Balance)
}

func (d *Distributor) PeriodFinish() uint64 {
	return d.snapshot().PeriodFinish
}

func (d *Distributor) RewardRate() *uint256.Int {
	return new(uint256.Int).Set(d.snapshot().RewardRate)
}

// LastTimeRewardApplicable is the current time capped by the period end.
func (d *Distributor) LastTimeRewardApplicable() uint64 {
	return lastTimeRewardApplicable(d.bus.BlockTime(), d.snapshot())
}

func lastTimeRewardApplicable(now uint64, p period) uint64 {
	if now < p.PeriodFinish {
		return now
	}
	return p.PeriodFinish
}

func (d *Distributor) RewardPerToken() (*uint256.Int, error) {
	return rewardPerToken(d.bus.BlockTime(), d.snapshot())
}

func rewardPerToken(now uint64, p period) (*uint256.Int, error) {
	if p.TotalSupply.IsZero() {
		return new(uint256.Int).Set(p.RewardPerTokenStored), nil
	}

	last := lastTimeRewardApplicable(now, p)
	if last <= p.LastUpdateTime {
		return new(uint256.Int).Set(p.RewardPerTokenStored), nil
	}

	accrued, err := math.Mul(uint256.NewInt(last-p.LastUpdateTime), p.RewardRate)
	if err != nil {
		return nil, err
	}
	if accrued, err = math.MulDiv(accrued, types.Precision, p.TotalSupply); err != nil {
		return nil, err
	}
	return math.Add(p.RewardPerTokenStored, accrued)
}

// Earned returns the rewards accrued by account and not yet paid.
func (d *Distributor) Earned(account types.Address) (*uint256.Int, error) {
	perToken, err := d.RewardPerToken()
	if err != nil {
		return nil, err
	}
	return earned(d.stake(account), perToken)
}

func earned(s *Stake, perToken *uint256.Int) (*uint256.Int, error) {
	delta, err := math.Sub(perToken, s.UserRewardPerTokenPaid)
	if err != nil {
		return nil, err
	}
	accrued, err := math.MulDiv(s.Balance, delta, types.Precision)
	if err != nil {
		return nil, err
	}
	return math.Add(accrued, s.Rewards)
}

func (d *Distributor) GetRewardForDuration() (*uint256.Int, error) {
	return math.Mul(d.RewardRate(), uint256.NewInt(d.rewardsDuration))
}

// updateReward checkpoints the global accumulator and, for a non-zero account,
// the account's accrual.
func (d *Distributor) updateReward(account types.Address) error {
	now := d.bus.BlockTime()
	p := d.snapshot()

	perToken, err := rewardPerToken(now, p)
	if err != nil {
		return err
	}
	p.RewardPerTokenStored = perToken
	p.LastUpdateTime = lastTimeRewardApplicable(now, p)
	d.setPeriod(p)

	if account.IsZero() {
		return nil
	}

	s := d.stake(account)
	rewards, err := earned(s, perToken)
	if err != nil {
		return err
	}
	d.setStake(account, &Stake{Balance: s.Balance, UserRewardPerTokenPaid: perToken, Rewards: rewards})

	return nil
}

// Stake pulls amount of the staking token from sender and credits it to sender.
func (d *Distributor) Stake(sender types.Address, amount *uint256.Int) error {
	return d.StakeFor(sender, sender, amount)
}

// StakeFor pulls amount of the staking token from sender and credits it to account.
func (d *Distributor) StakeFor(sender, account types.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return ErrorCannotStakeZero
	}

	release, err := d.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := d.updateReward(account); err != nil {
		return err
	}

	p := d.snapshot()
	if p.TotalSupply, err = math.Add(p.TotalSupply, amount); err != nil {
		return err
	}
	s := d.stake(account)
	balance, err := math.Add(s.Balance, amount)
	if err != nil {
		return err
	}
	d.setPeriod(p)
	d.setStake(account, &Stake{Balance: balance, UserRewardPerTokenPaid: s.UserRewardPerTokenPaid, Rewards: s.Rewards})

	if err := d.bus.Assets().TransferFrom(d.stakingToken, d.address, sender, d.address, amount); err != nil {
		return err
	}
	d.bus.AddEvent(&events.StakedEvent{Distributor: d.address, User: account, Amount: amount.Dec()})

	return nil
}

func (d *Distributor) Withdraw(sender types.Address, amount *uint256.Int) error {
	release, err := d.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	return d.withdraw(sender, amount)
}

func (d *Distributor) withdraw(sender types.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return ErrorCannotWithdrawZero
	}
	if err := d.updateReward(sender); err != nil {
		return err
	}

	s := d.stake(sender)
	if amount.Gt(s.Balance) {
		return ErrorInsufficientStake
	}
	p := d.snapshot()
	p.TotalSupply = new(uint256.Int).Sub(p.TotalSupply, amount)
	d.setPeriod(p)
	d.setStake(sender, &Stake{
		Balance:                new(uint256.Int).Sub(s.Balance, amount),
		UserRewardPerTokenPaid: s.UserRewardPerTokenPaid,
		Rewards:                s.Rewards,
	})

	if err := d.bus.Assets().Transfer(d.stakingToken, d.address, sender, amount); err != nil {
		return err
	}
	d.bus.AddEvent(&events.WithdrawnEvent{Distributor: d.address, User: sender, Amount: amount.Dec()})

	return nil
}

// GetReward pays out everything sender has earned.
func (d *Distributor) GetReward(sender types.Address) (*uint256.Int, error) {
	release, err := d.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return d.getReward(sender)
}

func (d *Distributor) getReward(sender types.Address) (*uint256.Int, error) {
	if err := d.updateReward(sender); err != nil {
		return nil, err
	}

	s := d.stake(sender)
	reward := s.Rewards
	if reward.IsZero() {
		return reward, nil
	}
	d.setStake(sender, &Stake{Balance: s.Balance, UserRewardPerTokenPaid: s.UserRewardPerTokenPaid, Rewards: new(uint256.Int)})

	if err := d.bus.Assets().Transfer(d.rewardsToken, d.address, sender, reward); err != nil {
		return nil, err
	}
	d.bus.AddEvent(&events.RewardPaidEvent{Distributor: d.address, User: sender, Reward: reward.Dec()})

	return reward, nil
}

// Exit withdraws the whole stake of sender and pays out its rewards.
func (d *Distributor) Exit(sender types.Address) (*uint256.Int, error) {
	release, err := d.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if balance := d.stake(sender).Balance; !balance.IsZero() {
		if err := d.withdraw(sender, balance); err != nil {
			return nil, err
		}
	}
	return d.getReward(sender)
}

// NotifyRewardAmount starts a new reward period of rewardsDuration. The
// undistributed rest of a running period is added to reward.
func (d *Distributor) NotifyRewardAmount(caller types.Address, reward *uint256.Int) error {
	if caller != d.rewardsDistribution {
		return ErrorNotRewardsDistribution
	}
	if d.rewardsDuration == 0 {
		return ErrorInvalidDuration
	}

	release, err := d.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := d.updateReward(types.ZeroAddress); err != nil {
		return err
	}

	now := d.bus.BlockTime()
	duration := uint256.NewInt(d.rewardsDuration)
	p := d.snapshot()

	total := reward
	if now < p.PeriodFinish {
		leftover, err := math.Mul(uint256.NewInt(p.PeriodFinish-now), p.RewardRate)
		if err != nil {
			return err
		}
		if total, err = math.Add(reward, leftover); err != nil {
			return err
		}
	}
	p.RewardRate = new(uint256.Int).Div(total, duration)

	balance := d.bus.Assets().BalanceOf(d.rewardsToken, d.address)
	if p.RewardRate.Gt(new(uint256.Int).Div(balance, duration)) {
		return ErrorRewardTooHigh
	}

	p.LastUpdateTime = now
	p.PeriodFinish = now + d.rewardsDuration
	d.setPeriod(p)

	d.bus.AddEvent(&events.RewardAddedEvent{Distributor: d.address, Reward: reward.Dec(), PeriodFinish: p.PeriodFinish})
	d.bus.Logger().Info("reward period started", "distributor", d.address.String(), "reward", reward.Dec(), "finish", p.PeriodFinish)

	return nil
}

func (d *Distributor) record() *periodRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &periodRecord{
		StakingToken:         d.stakingToken,
		RewardsToken:         d.rewardsToken,
		RewardsDistribution:  d.rewardsDistribution,
		RewardsDuration:      d.rewardsDuration,
		RewardRate:           d.period.RewardRate.ToBig(),
		RewardPerTokenStored: d.period.RewardPerTokenStored.ToBig(),
		LastUpdateTime:       d.period.LastUpdateTime,
		PeriodFinish:         d.period.PeriodFinish,
		TotalSupply:          d.period.TotalSupply.ToBig(),
	}
}

func (d *Distributor) load(r *periodRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.period = period{
		RewardRate:           uint256.MustFromBig(r.RewardRate),
		RewardPerTokenStored: uint256.MustFromBig(r.RewardPerTokenStored),
		LastUpdateTime:       r.LastUpdateTime,
		PeriodFinish:         r.PeriodFinish,
		TotalSupply:          uint256.MustFromBig(r.TotalSupply),
	}
}

// takeDirty returns the dirty accounts in byte order and clears the marks.
func (d *Distributor) takeDirty() (periodDirty bool, accounts []types.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()

	periodDirty = d.dirty
	d.dirty = false
	for account := range d.dirtyAccounts {
		accounts = append(accounts, account)
	}
	d.dirtyAccounts = map[types.Address]struct{}{}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Compare(accounts[j]) < 0 })

	return periodDirty, accounts
}
