package code

import (
	"errors"
	"fmt"
	"testing"

	"github.com/MinterTeam/minter-swap/coreV2/router"
	"github.com/MinterTeam/minter-swap/coreV2/state/guard"
	"github.com/MinterTeam/minter-swap/coreV2/state/staking"
	"github.com/MinterTeam/minter-swap/coreV2/state/swap"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		code uint32
	}{
		{nil, OK},
		{errors.New("something"), Unknown},
		{swap.ErrorK, InvariantViolation},
		{router.ErrorInsufficientOutputAmount, InsufficientOutputAmount},
		{pkgerrors.Wrap(swap.ErrorInsufficientLiquidity, "hop 1"), InsufficientLiquidity},
		{fmt.Errorf("notify: %w", staking.ErrorRewardTooHigh), RewardTooHigh},
		{staking.ErrorReentrancy, Reentrancy},
		{guard.ErrorLocked, Reentrancy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, FromError(tt.err), "%v", tt.err)
	}
}

func TestNewError(t *testing.T) {
	e := NewError(pkgerrors.Wrapf(router.ErrorExpired, "deadline %d", 10))

	assert.Equal(t, "120", e.Code)
	assert.Equal(t, "EXPIRED", e.Name)
	assert.Equal(t, "deadline 10: EXPIRED", e.Log)
	assert.Equal(t, e.Log, e.Error())
}
