package service

import (
	"context"
	"errors"
	"testing"

	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/internal/service/mocks"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardService_GetLeaderboard(t *testing.T) {
	top := []*model.LeaderboardEntry{
		{Rank: 1, Address: alice, Balance: uint256.NewInt(900)},
		{Rank: 2, Address: bob, Balance: uint256.NewInt(100)},
	}

	tests := []struct {
		name          string
		mockSetup     func(repo *mocks.MockLeaderboardRepository)
		calls         int
		expected      []*model.LeaderboardEntry
		expectedError string
	}{
		{
			name: "Lazy refresh then cached",
			mockSetup: func(repo *mocks.MockLeaderboardRepository) {
				repo.On("TopBalances", mock.Anything, DefaultLeaderboardSize).Return(top, nil).Once()
			},
			calls:    3,
			expected: top,
		},
		{
			name: "Repository failure",
			mockSetup: func(repo *mocks.MockLeaderboardRepository) {
				repo.On("TopBalances", mock.Anything, DefaultLeaderboardSize).Return(nil, errors.New("timeout"))
			},
			calls:         1,
			expectedError: "failed to get top balances: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockLeaderboardRepository{}
			tt.mockSetup(repo)
			s := NewLeaderboardService(repo, 0)

			for i := 0; i < tt.calls; i++ {
				entries, err := s.GetLeaderboard(context.Background())
				if tt.expectedError != "" {
					assert.EqualError(t, err, tt.expectedError)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, tt.expected, entries)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestLeaderboardService_Start(t *testing.T) {
	repo := &mocks.MockLeaderboardRepository{}
	repo.On("TopBalances", mock.Anything, 10).Return([]*model.LeaderboardEntry{}, nil)

	s := NewLeaderboardService(repo, 10)

	err := s.Start(context.Background(), "not a schedule")
	assert.Error(t, err)

	require.NoError(t, s.Start(context.Background(), "@every 1h"))
	assert.False(t, s.UpdatedAt().IsZero())
	s.Stop()
}
