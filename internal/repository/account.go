package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"UD_loyalty_hook/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"
)

var accountColumns = []string{
	"address",
	"streak_count",
	"last_activity",
	"referrer",
	"event_count",
	"total_earned",
	"jackpot_wins",
}

var accountSelectColumns = []string{
	"address",
	"streak_count",
	"last_activity",
	"referrer",
	"event_count",
	"total_earned::TEXT AS total_earned",
	"jackpot_wins",
}

type Account struct {
	Address      string         `db:"address"`
	StreakCount  int64          `db:"streak_count"`
	LastActivity int64          `db:"last_activity"`
	Referrer     sql.NullString `db:"referrer"`
	EventCount   int64          `db:"event_count"`
	TotalEarned  string         `db:"total_earned"`
	JackpotWins  int64          `db:"jackpot_wins"`
}

type accountReferral struct {
	Address     string `db:"address"`
	EventCount  int64  `db:"event_count"`
	TotalEarned string `db:"total_earned"`
	Balance     string `db:"balance"`
}

func accountFromModel(a *model.UserAccount) Account {
	return Account{
		Address:      a.Address.Hex(),
		StreakCount:  int64(a.StreakCount),
		LastActivity: int64(a.LastActivity),
		Referrer:     nullAddress(a.Referrer),
		EventCount:   int64(a.EventCount),
		TotalEarned:  numeric(a.TotalEarned),
		JackpotWins:  int64(a.JackpotWins),
	}
}

func (a Account) toModel() (*model.UserAccount, error) {
	addr, err := parseAddress(a.Address)
	if err != nil {
		return nil, err
	}
	referrer, err := parseNullAddress(a.Referrer)
	if err != nil {
		return nil, err
	}
	earned, err := parseNumeric(a.TotalEarned)
	if err != nil {
		return nil, err
	}

	return &model.UserAccount{
		Address:      addr,
		StreakCount:  uint64(a.StreakCount),
		LastActivity: uint64(a.LastActivity),
		Referrer:     referrer,
		EventCount:   uint64(a.EventCount),
		TotalEarned:  earned,
		JackpotWins:  uint64(a.JackpotWins),
	}, nil
}

func (r *Repository) GetAccount(ctx context.Context, address common.Address) (*model.UserAccount, error) {
	var account Account
	query, args, err := squirrel.
		Select(accountSelectColumns...).
		From("accounts").
		Where(squirrel.Eq{"address": address.Hex()}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &account, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return account.toModel()
}

// ListAccounts returns every account. Used to rebuild engine state on start.
func (r *Repository) ListAccounts(ctx context.Context) ([]*model.UserAccount, error) {
	query, args, err := squirrel.
		Select(accountSelectColumns...).
		From("accounts").
		OrderBy("address").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Account
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*model.UserAccount, 0, len(rows))
	for _, row := range rows {
		account, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", row.Address, err)
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (r *Repository) upsertAccountsWithTx(ctx context.Context, tx *sqlx.Tx, accounts []*model.UserAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	builder := squirrel.
		Insert("accounts").
		Columns(accountColumns...)
	for _, a := range accounts {
		row := accountFromModel(a)
		builder = builder.Values(
			row.Address,
			row.StreakCount,
			row.LastActivity,
			row.Referrer,
			row.EventCount,
			row.TotalEarned,
			row.JackpotWins,
		)
	}

	query, args, err := builder.
		Suffix(`ON CONFLICT (address) DO UPDATE SET
			streak_count = EXCLUDED.streak_count,
			last_activity = EXCLUDED.last_activity,
			referrer = EXCLUDED.referrer,
			event_count = EXCLUDED.event_count,
			total_earned = EXCLUDED.total_earned,
			jackpot_wins = EXCLUDED.jackpot_wins`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build account upsert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert accounts: %w", err)
	}

	return nil
}

func (r *Repository) GetReferrals(ctx context.Context, referrer common.Address) ([]*model.UserReferral, error) {
	query := squirrel.Select(
		"a.address",
		"a.event_count",
		"a.total_earned::TEXT AS total_earned",
		"COALESCE(pb.balance, 0)::TEXT AS balance",
	).
		From("accounts a").
		LeftJoin("point_balances pb ON pb.address = a.address").
		Where(squirrel.Eq{"a.referrer": referrer.Hex()}).
		OrderBy("COALESCE(pb.balance, 0) DESC", "a.address").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var referrals []*accountReferral
	err = r.db.SelectContext(ctx, &referrals, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}

	refs := make([]*model.UserReferral, 0, len(referrals))
	for _, ref := range referrals {
		addr, err := parseAddress(ref.Address)
		if err != nil {
			return nil, err
		}
		earned, err := parseNumeric(ref.TotalEarned)
		if err != nil {
			return nil, err
		}
		balance, err := parseNumeric(ref.Balance)
		if err != nil {
			return nil, err
		}
		refs = append(refs, &model.UserReferral{
			Address:     addr,
			Balance:     balance,
			EventCount:  uint64(ref.EventCount),
			TotalEarned: earned,
		})
	}

	return refs, nil
}
