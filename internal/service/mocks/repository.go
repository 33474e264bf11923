package mocks

import (
	"context"

	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/internal/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
)

type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) ListAccounts(ctx context.Context) ([]*model.UserAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserAccount), args.Error(1)
}

func (m *MockRewardRepository) GetJackpot(ctx context.Context) (*model.JackpotPool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.JackpotPool), args.Error(1)
}

func (m *MockRewardRepository) EventExists(ctx context.Context, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRewardRepository) CommitEvent(ctx context.Context, c *repository.Commit) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRewardRepository) GetBalance(ctx context.Context, address common.Address) (*uint256.Int, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uint256.Int), args.Error(1)
}

func (m *MockRewardRepository) GetReferrals(ctx context.Context, referrer common.Address) ([]*model.UserReferral, error) {
	args := m.Called(ctx, referrer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserReferral), args.Error(1)
}

func (m *MockRewardRepository) GetEvents(ctx context.Context, user common.Address, limit int) ([]*model.EventRecord, error) {
	args := m.Called(ctx, user, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventRecord), args.Error(1)
}

type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) TopBalances(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(rec *model.EventRecord) {
	m.Called(rec)
}
