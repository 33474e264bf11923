package service

import (
	"context"
	"errors"

	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/internal/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEvent  = errors.New("event already processed")
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 100
)

type RewardServiceI interface {
	HandleSwap(ctx context.Context, eventID uuid.UUID, ev model.SwapEvent) (*model.Outcome, error)
	HandleLiquidity(ctx context.Context, eventID uuid.UUID, ev model.LiquidityEvent) (*model.Outcome, error)
	GetStreak(ctx context.Context, user common.Address) uint64
	GetStreakBonusPercent(ctx context.Context, user common.Address) uint64
	GetReferrer(ctx context.Context, user common.Address) *common.Address
	GetJackpotBalance(ctx context.Context) *uint256.Int
	GetJackpotStatus(ctx context.Context) *model.JackpotStatus
	GetAccount(ctx context.Context, user common.Address) (*model.UserSummary, error)
	GetReferrals(ctx context.Context, referrer common.Address) ([]*model.UserReferral, error)
	GetEvents(ctx context.Context, user common.Address, limit int) ([]*model.EventRecord, error)
}

type RewardRepository interface {
	ListAccounts(ctx context.Context) ([]*model.UserAccount, error)
	GetJackpot(ctx context.Context) (*model.JackpotPool, error)
	EventExists(ctx context.Context, eventID uuid.UUID) (bool, error)
	CommitEvent(ctx context.Context, c *repository.Commit) error
	GetBalance(ctx context.Context, address common.Address) (*uint256.Int, error)
	GetReferrals(ctx context.Context, referrer common.Address) ([]*model.UserReferral, error)
	GetEvents(ctx context.Context, user common.Address, limit int) ([]*model.EventRecord, error)
}

type LeaderboardServiceI interface {
	GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error)
}

type LeaderboardRepository interface {
	TopBalances(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

// Publisher receives every committed event. Implementations must not block.
type Publisher interface {
	Publish(rec *model.EventRecord)
}
