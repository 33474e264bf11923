package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Commit is everything one processed callback writes.
type Commit struct {
	EventID  uuid.UUID
	Outcome  *model.Outcome
	Accounts []*model.UserAccount
	Jackpot  *model.JackpotPool
	Mints    []ledger.Instruction
}

type Event struct {
	EventID        uuid.UUID      `db:"event_id"`
	Kind           string         `db:"kind"`
	Block          int64          `db:"block"`
	UserAddress    sql.NullString `db:"user_address"`
	Referrer       sql.NullString `db:"referrer"`
	Registered     bool           `db:"registered"`
	EthAmount      string         `db:"eth_amount"`
	Contribution   string         `db:"contribution"`
	BasePoints     string         `db:"base_points"`
	Streak         int64          `db:"streak"`
	BonusPercent   int64          `db:"bonus_percent"`
	Bonus          string         `db:"bonus"`
	TotalPoints    string         `db:"total_points"`
	ReferralPoints string         `db:"referral_points"`
	JackpotWon     string         `db:"jackpot_won"`
	JackpotBalance string         `db:"jackpot_balance"`
	Skipped        string         `db:"skipped"`
	Steps          pq.StringArray `db:"steps"`
	CreatedAt      time.Time      `db:"created_at"`
}

var eventSelectColumns = []string{
	"event_id",
	"kind",
	"block",
	"user_address",
	"referrer",
	"registered",
	"eth_amount::TEXT AS eth_amount",
	"contribution::TEXT AS contribution",
	"base_points::TEXT AS base_points",
	"streak",
	"bonus_percent",
	"bonus::TEXT AS bonus",
	"total_points::TEXT AS total_points",
	"referral_points::TEXT AS referral_points",
	"jackpot_won::TEXT AS jackpot_won",
	"jackpot_balance::TEXT AS jackpot_balance",
	"skipped",
	"steps",
	"created_at",
}

func eventValues(id uuid.UUID, o *model.Outcome) map[string]interface{} {
	var user *common.Address
	if o.User != (common.Address{}) {
		u := o.User
		user = &u
	}
	steps := pq.StringArray(o.Steps)
	if steps == nil {
		steps = pq.StringArray{}
	}

	return map[string]interface{}{
		"event_id":        id,
		"kind":            string(o.Kind),
		"block":           int64(o.Block),
		"user_address":    nullAddress(user),
		"referrer":        nullAddress(o.Referrer),
		"registered":      o.Registered,
		"eth_amount":      numeric(o.EthAmount),
		"contribution":    numeric(o.Contribution),
		"base_points":     numeric(o.BasePoints),
		"streak":          int64(o.Streak),
		"bonus_percent":   int64(o.BonusPercent),
		"bonus":           numeric(o.Bonus),
		"total_points":    numeric(o.TotalPoints),
		"referral_points": numeric(o.ReferralPoints),
		"jackpot_won":     numeric(o.JackpotWon),
		"jackpot_balance": numeric(o.JackpotBalance),
		"skipped":         o.Skipped,
		"steps":           steps,
	}
}

func (e Event) toModel() (*model.EventRecord, error) {
	o := model.NewOutcome(model.EventKind(e.Kind), uint64(e.Block))

	user, err := parseNullAddress(e.UserAddress)
	if err != nil {
		return nil, err
	}
	if user != nil {
		o.User = *user
	}
	if o.Referrer, err = parseNullAddress(e.Referrer); err != nil {
		return nil, err
	}
	o.Registered = e.Registered
	o.Streak = uint64(e.Streak)
	o.BonusPercent = uint64(e.BonusPercent)
	o.Skipped = e.Skipped
	o.Steps = []string(e.Steps)

	for _, f := range []struct {
		dst **uint256.Int
		src string
	}{
		{&o.EthAmount, e.EthAmount},
		{&o.Contribution, e.Contribution},
		{&o.BasePoints, e.BasePoints},
		{&o.Bonus, e.Bonus},
		{&o.TotalPoints, e.TotalPoints},
		{&o.ReferralPoints, e.ReferralPoints},
		{&o.JackpotWon, e.JackpotWon},
		{&o.JackpotBalance, e.JackpotBalance},
	} {
		v, err := parseNumeric(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return &model.EventRecord{
		EventID:   e.EventID,
		Outcome:   o,
		CreatedAt: e.CreatedAt,
	}, nil
}

func (r *Repository) EventExists(ctx context.Context, eventID uuid.UUID) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From("events").
		Where(squirrel.Eq{"event_id": eventID}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, err
	}

	return exists, nil
}

// CommitEvent writes the event, the touched accounts, the jackpot and the
// mints in a single transaction. A second commit of the same event id fails
// with ErrEventExists and writes nothing.
func (r *Repository) CommitEvent(ctx context.Context, c *Commit) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("events").
			SetMap(eventValues(c.EventID, c.Outcome)).
			Suffix("ON CONFLICT (event_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build event insert query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrEventExists
		}

		if err := r.upsertAccountsWithTx(ctx, tx, c.Accounts); err != nil {
			return err
		}
		if err := r.upsertJackpotWithTx(ctx, tx, c.Jackpot); err != nil {
			return errors.Wrap(err, "failed to upsert jackpot")
		}

		return r.applyMintsWithTx(ctx, tx, c.EventID, c.Mints)
	})
}

// GetEvents returns the latest events attributed to user, newest first.
func (r *Repository) GetEvents(ctx context.Context, user common.Address, limit int) ([]*model.EventRecord, error) {
	query, args, err := squirrel.
		Select(eventSelectColumns...).
		From("events").
		Where(squirrel.Eq{"user_address": user.Hex()}).
		OrderBy("created_at DESC", "block DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Event
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	records := make([]*model.EventRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", row.EventID, err)
		}
		records = append(records, rec)
	}

	return records, nil
}
