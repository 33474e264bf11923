package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"UD_loyalty_hook/internal/engine"
	"UD_loyalty_hook/internal/hook"
	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/internal/repository"
	"UD_loyalty_hook/internal/service/mocks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	native = common.Address{}
	token  = common.HexToAddress("0x00000000000000000000000000000000000070c3")
	alice  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob    = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func oneEther() *big.Int {
	return big.NewInt(1_000_000_000_000_000_000)
}

func swapFor(t *testing.T, user common.Address, referrer *common.Address, amountIn *big.Int) model.SwapEvent {
	data, err := hook.EncodePayload(user, referrer)
	require.NoError(t, err)
	return model.SwapEvent{
		Block: model.BlockContext{Number: 19_000_000, Timestamp: 1_700_000_000},
		Key: model.PoolKey{
			Currency0: model.Currency{Address: native},
			Currency1: model.Currency{Address: token},
			Fee:       3000,
		},
		Params:   model.SwapParams{ZeroForOne: true, AmountSpecified: new(big.Int).Neg(amountIn)},
		Delta:    model.BalanceDelta{Amount0: new(big.Int).Neg(amountIn), Amount1: big.NewInt(1)},
		HookData: data,
	}
}

func newRewardService(repo RewardRepository, publishers ...Publisher) *RewardService {
	return NewRewardService(repo, engine.New(engine.DefaultParams(), engine.FixedEntropy(99)), native, publishers...)
}

func TestRewardService_HandleSwap(t *testing.T) {
	tests := []struct {
		name          string
		event         func(t *testing.T) model.SwapEvent
		mockSetup     func(repo *mocks.MockRewardRepository, pub *mocks.MockPublisher, id uuid.UUID)
		expectedError error
		checkState    func(t *testing.T, s *RewardService, out *model.Outcome)
	}{
		{
			name: "Applied swap is committed and published",
			event: func(t *testing.T) model.SwapEvent {
				return swapFor(t, alice, &bob, oneEther())
			},
			mockSetup: func(repo *mocks.MockRewardRepository, pub *mocks.MockPublisher, id uuid.UUID) {
				repo.On("EventExists", mock.Anything, id).Return(false, nil)
				repo.On("CommitEvent", mock.Anything, mock.MatchedBy(func(c *repository.Commit) bool {
					return c.EventID == id &&
						len(c.Accounts) == 1 && c.Accounts[0].Address == alice &&
						c.Jackpot != nil &&
						len(c.Mints) == 2 && c.Mints[0].To == alice && c.Mints[1].To == bob
				})).Return(nil)
				pub.On("Publish", mock.MatchedBy(func(rec *model.EventRecord) bool {
					return rec.EventID == id && rec.Outcome.User == alice
				})).Return()
			},
			checkState: func(t *testing.T, s *RewardService, out *model.Outcome) {
				assert.Empty(t, out.Skipped)
				assert.Equal(t, "200000000000000000", out.TotalPoints.Dec())
				assert.True(t, out.Registered)
				assert.Equal(t, uint64(1), s.GetStreak(context.Background(), alice))
				assert.Equal(t, bob, *s.GetReferrer(context.Background(), alice))
				assert.Equal(t, "10000000000000000", s.GetJackpotBalance(context.Background()).Dec())
			},
		},
		{
			name: "Skipped swap is still recorded",
			event: func(t *testing.T) model.SwapEvent {
				ev := swapFor(t, alice, nil, oneEther())
				ev.Key.Currency0 = model.Currency{Address: bob}
				return ev
			},
			mockSetup: func(repo *mocks.MockRewardRepository, pub *mocks.MockPublisher, id uuid.UUID) {
				repo.On("EventExists", mock.Anything, id).Return(false, nil)
				repo.On("CommitEvent", mock.Anything, mock.MatchedBy(func(c *repository.Commit) bool {
					return len(c.Accounts) == 0 && c.Jackpot == nil && len(c.Mints) == 0 &&
						c.Outcome.Skipped == model.SkipPairNotNative
				})).Return(nil)
				pub.On("Publish", mock.Anything).Return()
			},
			checkState: func(t *testing.T, s *RewardService, out *model.Outcome) {
				assert.Equal(t, model.SkipPairNotNative, out.Skipped)
				assert.True(t, s.GetJackpotBalance(context.Background()).IsZero())
			},
		},
		{
			name: "Duplicate event id",
			event: func(t *testing.T) model.SwapEvent {
				return swapFor(t, alice, nil, oneEther())
			},
			mockSetup: func(repo *mocks.MockRewardRepository, pub *mocks.MockPublisher, id uuid.UUID) {
				repo.On("EventExists", mock.Anything, id).Return(true, nil)
			},
			expectedError: ErrDuplicateEvent,
			checkState: func(t *testing.T, s *RewardService, _ *model.Outcome) {
				assert.Equal(t, uint64(0), s.GetStreak(context.Background(), alice))
			},
		},
		{
			name: "Duplicate detected at commit reverts state",
			event: func(t *testing.T) model.SwapEvent {
				return swapFor(t, alice, &bob, oneEther())
			},
			mockSetup: func(repo *mocks.MockRewardRepository, pub *mocks.MockPublisher, id uuid.UUID) {
				repo.On("EventExists", mock.Anything, id).Return(false, nil)
				repo.On("CommitEvent", mock.Anything, mock.Anything).Return(repository.ErrEventExists)
			},
			expectedError: ErrDuplicateEvent,
			checkState: func(t *testing.T, s *RewardService, _ *model.Outcome) {
				assert.Equal(t, uint64(0), s.GetStreak(context.Background(), alice))
				assert.Nil(t, s.GetReferrer(context.Background(), alice))
				assert.True(t, s.GetJackpotBalance(context.Background()).IsZero())
			},
		},
		{
			name: "Persistence failure reverts state",
			event: func(t *testing.T) model.SwapEvent {
				return swapFor(t, alice, nil, oneEther())
			},
			mockSetup: func(repo *mocks.MockRewardRepository, pub *mocks.MockPublisher, id uuid.UUID) {
				repo.On("EventExists", mock.Anything, id).Return(false, nil)
				repo.On("CommitEvent", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
			},
			expectedError: errors.New("failed to commit event: connection reset"),
			checkState: func(t *testing.T, s *RewardService, _ *model.Outcome) {
				assert.Equal(t, uint64(0), s.GetStreak(context.Background(), alice))
				assert.True(t, s.GetJackpotBalance(context.Background()).IsZero())
				assert.Equal(t, engine.NewState().Root(), s.Root())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockRewardRepository{}
			pub := &mocks.MockPublisher{}
			id := uuid.New()
			tt.mockSetup(repo, pub, id)

			s := newRewardService(repo, pub)
			out, err := s.HandleSwap(context.Background(), id, tt.event(t))

			switch {
			case tt.expectedError == nil:
				require.NoError(t, err)
				require.NotNil(t, out)
			case errors.Is(tt.expectedError, ErrDuplicateEvent):
				assert.ErrorIs(t, err, ErrDuplicateEvent)
			default:
				assert.EqualError(t, err, tt.expectedError.Error())
			}

			if tt.checkState != nil {
				tt.checkState(t, s, out)
			}
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestRewardService_HandleLiquidity(t *testing.T) {
	repo := &mocks.MockRewardRepository{}
	id := uuid.New()
	repo.On("EventExists", mock.Anything, id).Return(false, nil)
	repo.On("CommitEvent", mock.Anything, mock.Anything).Return(nil)

	s := newRewardService(repo)

	ev := swapFor(t, alice, nil, big.NewInt(100_000_000_000_000_000))
	out, err := s.HandleLiquidity(context.Background(), id, model.LiquidityEvent{
		Block:    ev.Block,
		Key:      ev.Key,
		Delta:    ev.Delta,
		HookData: ev.HookData,
	})

	require.NoError(t, err)
	assert.Equal(t, model.EventLiquidityAdded, out.Kind)
	assert.Equal(t, "100000000000000000", out.TotalPoints.Dec())
	assert.Equal(t, "1000000000000000", out.Contribution.Dec())
	repo.AssertExpectations(t)
}

func TestRewardService_LoadAndQueries(t *testing.T) {
	repo := &mocks.MockRewardRepository{}

	stored := model.NewUserAccount(alice)
	stored.StreakCount = 5
	stored.LastActivity = 100
	referred := model.NewUserAccount(bob)
	referred.StreakCount = 1
	referred.Referrer = &alice

	pool := model.NewJackpotPool()
	pool.Balance = uint256.NewInt(7)

	repo.On("ListAccounts", mock.Anything).Return([]*model.UserAccount{stored, referred}, nil)
	repo.On("GetJackpot", mock.Anything).Return(pool, nil)
	repo.On("GetBalance", mock.Anything, alice).Return(uint256.NewInt(42), nil)

	s := newRewardService(repo)
	require.NoError(t, s.Load(context.Background()))

	ctx := context.Background()
	assert.Equal(t, uint64(5), s.GetStreak(ctx, alice))
	assert.Equal(t, uint64(20), s.GetStreakBonusPercent(ctx, alice))
	assert.Equal(t, uint64(0), s.GetStreakBonusPercent(ctx, bob))
	assert.Equal(t, alice, *s.GetReferrer(ctx, bob))
	assert.Nil(t, s.GetReferrer(ctx, alice))
	assert.Equal(t, uint256.NewInt(7), s.GetJackpotBalance(ctx))

	summary, err := s.GetAccount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), summary.Account.StreakCount)
	assert.Equal(t, uint64(20), summary.BonusPercent)
	assert.Equal(t, 1, summary.Referrals)
	assert.Equal(t, uint256.NewInt(42), summary.Balance)

	_, err = s.GetAccount(ctx, token)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	status := s.GetJackpotStatus(ctx)
	assert.False(t, status.Eligible)
	assert.Equal(t, uint64(5), status.WinProbabilityPct)
	assert.Equal(t, "10000000000000000000", status.Threshold.Dec())

	repo.AssertExpectations(t)
}

func TestRewardService_Load_Error(t *testing.T) {
	repo := &mocks.MockRewardRepository{}
	repo.On("ListAccounts", mock.Anything).Return(nil, errors.New("db down"))

	err := newRewardService(repo).Load(context.Background())
	assert.EqualError(t, err, "failed to load accounts: db down")
}

func TestRewardService_GetEvents(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "Default limit", limit: 0, wantLimit: defaultEventsLimit},
		{name: "Explicit limit", limit: 5, wantLimit: 5},
		{name: "Clamped limit", limit: 1000, wantLimit: maxEventsLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockRewardRepository{}
			repo.On("GetEvents", mock.Anything, alice, tt.wantLimit).Return([]*model.EventRecord{}, nil)

			events, err := newRewardService(repo).GetEvents(context.Background(), alice, tt.limit)

			require.NoError(t, err)
			assert.Empty(t, events)
			repo.AssertExpectations(t)
		})
	}
}

func TestRewardService_StreakAcrossEvents(t *testing.T) {
	repo := &mocks.MockRewardRepository{}
	repo.On("EventExists", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("CommitEvent", mock.Anything, mock.Anything).Return(nil)

	s := newRewardService(repo)
	ctx := context.Background()

	var last *model.Outcome
	for i := 0; i < 5; i++ {
		ev := swapFor(t, alice, nil, big.NewInt(35))
		ev.Block.Number += uint64(i * 10)

		out, err := s.HandleSwap(ctx, uuid.New(), ev)
		require.NoError(t, err)
		last = out
	}

	assert.Equal(t, uint64(5), s.GetStreak(ctx, alice))
	assert.Equal(t, uint64(20), s.GetStreakBonusPercent(ctx, alice))
	// base = 35 * 20% = 7, bonus = 7 * 20 / 100 = 1
	assert.Equal(t, "7", last.BasePoints.Dec())
	assert.Equal(t, "8", last.TotalPoints.Dec())
}
