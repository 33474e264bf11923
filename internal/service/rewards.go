package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"UD_loyalty_hook/internal/engine"
	"UD_loyalty_hook/internal/hook"
	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/metrics"
	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/internal/repository"
	"UD_loyalty_hook/pkg/logger"
	"UD_loyalty_hook/pkg/units"
	"go.uber.org/zap"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// RewardService feeds callbacks through the engine one at a time and
// persists each result before the next one runs.
type RewardService struct {
	mu         sync.RWMutex
	repo       RewardRepository
	engine     *engine.Engine
	adapter    *hook.Adapter
	state      *engine.State
	publishers []Publisher
	now        func() time.Time
}

func NewRewardService(repo RewardRepository, e *engine.Engine, native common.Address, publishers ...Publisher) *RewardService {
	return &RewardService{
		repo:       repo,
		engine:     e,
		adapter:    hook.NewAdapter(e, native),
		state:      engine.NewState(),
		publishers: publishers,
		now:        time.Now,
	}
}

// Load rebuilds the in-memory state from the repository.
func (s *RewardService) Load(ctx context.Context) error {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	jackpot, err := s.repo.GetJackpot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load jackpot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Load(accounts, jackpot)
	metrics.JackpotBalance.Set(units.ToFloat(jackpot.Balance))

	logger.Logger().Info("reward state loaded",
		zap.Int("accounts", len(accounts)),
		zap.String("jackpot", units.FormatWei(jackpot.Balance)),
		zap.String("root", s.state.Root().Hex()))

	return nil
}

func (s *RewardService) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

func (s *RewardService) HandleSwap(ctx context.Context, eventID uuid.UUID, ev model.SwapEvent) (*model.Outcome, error) {
	return s.handle(ctx, eventID, func(st *engine.State, l ledger.Ledger) *model.Outcome {
		return s.adapter.OnSwap(st, l, ev)
	})
}

func (s *RewardService) HandleLiquidity(ctx context.Context, eventID uuid.UUID, ev model.LiquidityEvent) (*model.Outcome, error) {
	return s.handle(ctx, eventID, func(st *engine.State, l ledger.Ledger) *model.Outcome {
		return s.adapter.OnLiquidityAdded(st, l, ev)
	})
}

func (s *RewardService) handle(ctx context.Context, eventID uuid.UUID, apply func(*engine.State, ledger.Ledger) *model.Outcome) (*model.Outcome, error) {
	log := logger.Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check event: %w", err)
	}
	if exists {
		metrics.EventsRejectedTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateEvent
	}

	snapshot := s.state.Snapshot()
	recorder := ledger.NewRecorder()
	out := apply(s.state, recorder)
	accounts, jackpot := s.state.Dirty()

	err = s.repo.CommitEvent(ctx, &repository.Commit{
		EventID:  eventID,
		Outcome:  out,
		Accounts: accounts,
		Jackpot:  jackpot,
		Mints:    recorder.Instructions(),
	})
	if err != nil {
		s.state.RevertToSnapshot(snapshot)
		s.state.ClearDirty()

		if errors.Is(err, repository.ErrEventExists) {
			metrics.EventsRejectedTotal.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicateEvent
		}
		metrics.EventsRejectedTotal.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("failed to commit event: %w", err)
	}
	s.state.ClearDirty()

	metrics.ObserveOutcome(out)
	if out.Skipped != "" {
		log.Debug("event skipped",
			zap.String("event_id", eventID.String()),
			zap.String("kind", string(out.Kind)),
			zap.String("reason", out.Skipped))
	}
	if out.WonJackpot() {
		log.Info("jackpot won",
			zap.String("event_id", eventID.String()),
			zap.String("user", out.User.Hex()),
			zap.String("amount", units.FormatWei(out.JackpotWon)),
			zap.Uint64("block", out.Block))
	}

	rec := &model.EventRecord{EventID: eventID, Outcome: out, CreatedAt: s.now().UTC()}
	for _, p := range s.publishers {
		p.Publish(rec)
	}

	return out, nil
}

func (s *RewardService) GetStreak(_ context.Context, user common.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Streak(user)
}

func (s *RewardService) GetStreakBonusPercent(_ context.Context, user common.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.StreakBonusPercent(s.state, user)
}

func (s *RewardService) GetReferrer(_ context.Context, user common.Address) *common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Referrer(user)
}

func (s *RewardService) GetJackpotBalance(_ context.Context) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.JackpotBalance()
}

func (s *RewardService) GetJackpotStatus(_ context.Context) *model.JackpotStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := s.engine.Params()
	pool := s.state.Jackpot()
	return &model.JackpotStatus{
		Pool:              pool,
		Threshold:         new(uint256.Int).Set(params.JackpotThreshold),
		MinAmount:         new(uint256.Int).Set(params.JackpotMinAmount),
		WinProbabilityPct: params.JackpotWinPercent,
		Eligible:          pool.Balance.Cmp(params.JackpotThreshold) >= 0,
	}
}

func (s *RewardService) GetAccount(ctx context.Context, user common.Address) (*model.UserSummary, error) {
	s.mu.RLock()
	account := s.state.Account(user)
	referrals := len(s.state.Referrals(user))
	bonus := s.engine.StreakBonusPercent(s.state, user)
	s.mu.RUnlock()

	if account == nil {
		return nil, ErrAccountNotFound
	}

	balance, err := s.repo.GetBalance(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &model.UserSummary{
		Account:      account,
		BonusPercent: bonus,
		Balance:      balance,
		Referrals:    referrals,
	}, nil
}

func (s *RewardService) GetReferrals(ctx context.Context, referrer common.Address) ([]*model.UserReferral, error) {
	refs, err := s.repo.GetReferrals(ctx, referrer)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}
	return refs, nil
}

func (s *RewardService) GetEvents(ctx context.Context, user common.Address, limit int) ([]*model.EventRecord, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	events, err := s.repo.GetEvents(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}

// Root is the state root of the in-memory replica.
func (s *RewardService) Root() common.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Root()
}
