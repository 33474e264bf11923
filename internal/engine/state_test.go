package engine

import (
	"testing"

	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RevertToSnapshot(t *testing.T) {
	e := New(DefaultParams(), FixedEntropy(99))
	st := NewState()

	apply(e, st, ledger.NewRecorder(), 1000, alice, nil, wei(100))
	st.Contribute(wei(10))
	st.ClearDirty()
	rootBefore := st.Root()

	snap := st.Snapshot()
	apply(e, st, ledger.NewRecorder(), 1001, alice, &bob, wei(100))
	apply(e, st, ledger.NewRecorder(), 1002, carol, nil, wei(100))
	st.Contribute(wei(5))

	accounts, jackpot := st.Dirty()
	assert.Len(t, accounts, 2)
	assert.NotNil(t, jackpot)

	st.RevertToSnapshot(snap)

	assert.Equal(t, rootBefore, st.Root())
	assert.Equal(t, uint64(1), st.Streak(alice))
	assert.Nil(t, st.Referrer(alice))
	assert.Nil(t, st.Account(carol))
	assert.Equal(t, uint64(10), st.JackpotBalance().Uint64())

	accounts, jackpot = st.Dirty()
	assert.Empty(t, accounts)
	assert.Nil(t, jackpot)
}

func TestState_AccountReturnsCopy(t *testing.T) {
	e := New(DefaultParams(), FixedEntropy(99))
	st := NewState()
	apply(e, st, ledger.NewRecorder(), 1000, alice, &bob, wei(100))

	acc := st.Account(alice)
	acc.StreakCount = 42
	acc.TotalEarned.SetUint64(1)
	*acc.Referrer = carol

	assert.Equal(t, uint64(1), st.Streak(alice))
	assert.Equal(t, bob, *st.Referrer(alice))
	assert.Equal(t, uint64(100), st.Account(alice).TotalEarned.Uint64())
}

func TestState_RootIsOrderIndependent(t *testing.T) {
	build := func(users ...*model.UserAccount) *State {
		st := NewState()
		j := model.NewJackpotPool()
		j.Balance = uint256.NewInt(77)
		st.Load(users, j)
		return st
	}

	a := model.NewUserAccount(alice)
	a.StreakCount = 3
	b := model.NewUserAccount(bob)
	b.Referrer = &alice

	r1 := build(a, b).Root()
	r2 := build(b, a).Root()
	assert.Equal(t, r1, r2)

	b.StreakCount = 1
	assert.NotEqual(t, r1, build(a, b).Root())
}

func TestState_Referrals(t *testing.T) {
	e := New(DefaultParams(), FixedEntropy(99))
	st := NewState()
	apply(e, st, ledger.NewRecorder(), 1000, carol, &alice, wei(100))
	apply(e, st, ledger.NewRecorder(), 1000, bob, &alice, wei(100))
	apply(e, st, ledger.NewRecorder(), 1000, alice, nil, wei(100))

	refs := st.Referrals(alice)
	require.Len(t, refs, 2)
	assert.Equal(t, bob, refs[0].Address)
	assert.Equal(t, carol, refs[1].Address)
	assert.Empty(t, st.Referrals(bob))
	assert.Equal(t, 3, st.Len())
}
