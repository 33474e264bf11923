package mocks

import (
	"context"

	"UD_loyalty_hook/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
)

type MockRewardService struct {
	mock.Mock
}

func (m *MockRewardService) HandleSwap(ctx context.Context, eventID uuid.UUID, ev model.SwapEvent) (*model.Outcome, error) {
	args := m.Called(ctx, eventID, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Outcome), args.Error(1)
}

func (m *MockRewardService) HandleLiquidity(ctx context.Context, eventID uuid.UUID, ev model.LiquidityEvent) (*model.Outcome, error) {
	args := m.Called(ctx, eventID, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Outcome), args.Error(1)
}

func (m *MockRewardService) GetStreak(ctx context.Context, user common.Address) uint64 {
	args := m.Called(ctx, user)
	return args.Get(0).(uint64)
}

func (m *MockRewardService) GetStreakBonusPercent(ctx context.Context, user common.Address) uint64 {
	args := m.Called(ctx, user)
	return args.Get(0).(uint64)
}

func (m *MockRewardService) GetReferrer(ctx context.Context, user common.Address) *common.Address {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*common.Address)
}

func (m *MockRewardService) GetJackpotBalance(ctx context.Context) *uint256.Int {
	args := m.Called(ctx)
	return args.Get(0).(*uint256.Int)
}

func (m *MockRewardService) GetJackpotStatus(ctx context.Context) *model.JackpotStatus {
	args := m.Called(ctx)
	return args.Get(0).(*model.JackpotStatus)
}

func (m *MockRewardService) GetAccount(ctx context.Context, user common.Address) (*model.UserSummary, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSummary), args.Error(1)
}

func (m *MockRewardService) GetReferrals(ctx context.Context, referrer common.Address) ([]*model.UserReferral, error) {
	args := m.Called(ctx, referrer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserReferral), args.Error(1)
}

func (m *MockRewardService) GetEvents(ctx context.Context, user common.Address, limit int) ([]*model.EventRecord, error) {
	args := m.Called(ctx, user, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventRecord), args.Error(1)
}

type MockLeaderboardService struct {
	mock.Mock
}

func (m *MockLeaderboardService) GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}
