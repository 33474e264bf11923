package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx"
)

type pointBalance struct {
	Address string `db:"address"`
	Balance string `db:"balance"`
}

// GetBalance returns the point balance of address, zero when it never
// received a mint.
func (r *Repository) GetBalance(ctx context.Context, address common.Address) (*uint256.Int, error) {
	var balance string
	query, args, err := squirrel.
		Select("balance::TEXT").
		From("point_balances").
		Where(squirrel.Eq{"address": address.Hex()}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &balance, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return new(uint256.Int), nil
		}
		return nil, err
	}

	return parseNumeric(balance)
}

func (r *Repository) TopBalances(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	var rows []pointBalance

	query, args, err := squirrel.
		Select("address", "balance::TEXT AS balance").
		From("point_balances").
		Where(squirrel.Gt{"balance": 0}).
		OrderBy("point_balances.balance DESC", "address").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		addr, err := parseAddress(row.Address)
		if err != nil {
			return nil, err
		}
		balance, err := parseNumeric(row.Balance)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &model.LeaderboardEntry{
			Rank:    i + 1,
			Address: addr,
			Balance: balance,
		})
	}

	return entries, nil
}

// applyMintsWithTx logs every instruction and credits the point balances.
func (r *Repository) applyMintsWithTx(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, mints []ledger.Instruction) error {
	if len(mints) == 0 {
		return nil
	}

	logBuilder := squirrel.
		Insert("mints").
		Columns("event_id", "address", "amount", "reason")
	for _, m := range mints {
		logBuilder = logBuilder.Values(eventID, m.To.Hex(), numeric(m.Amount), m.Reason)
	}
	query, args, err := logBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mint log query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert mints: %w", err)
	}

	for _, m := range mints {
		query, args, err := squirrel.
			Insert("point_balances").
			Columns("address", "balance").
			Values(m.To.Hex(), numeric(m.Amount)).
			Suffix("ON CONFLICT (address) DO UPDATE SET balance = point_balances.balance + EXCLUDED.balance").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build balance query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to credit %s: %w", m.To.Hex(), err)
		}
	}

	return nil
}
