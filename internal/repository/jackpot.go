package repository

import (
	"context"
	"database/sql"
	"errors"

	"UD_loyalty_hook/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// jackpotID is the primary key of the singleton row.
const jackpotID = 1

type Jackpot struct {
	Balance       string         `db:"balance"`
	LastWinner    sql.NullString `db:"last_winner"`
	LastWinAmount string         `db:"last_win_amount"`
	LastWinBlock  int64          `db:"last_win_block"`
	TotalPaidOut  string         `db:"total_paid_out"`
	Draws         int64          `db:"draws"`
	Wins          int64          `db:"wins"`
}

func (j Jackpot) toModel() (*model.JackpotPool, error) {
	balance, err := parseNumeric(j.Balance)
	if err != nil {
		return nil, err
	}
	winner, err := parseNullAddress(j.LastWinner)
	if err != nil {
		return nil, err
	}
	lastWin, err := parseNumeric(j.LastWinAmount)
	if err != nil {
		return nil, err
	}
	paidOut, err := parseNumeric(j.TotalPaidOut)
	if err != nil {
		return nil, err
	}

	return &model.JackpotPool{
		Balance:       balance,
		LastWinner:    winner,
		LastWinAmount: lastWin,
		LastWinBlock:  uint64(j.LastWinBlock),
		TotalPaidOut:  paidOut,
		Draws:         uint64(j.Draws),
		Wins:          uint64(j.Wins),
	}, nil
}

// GetJackpot returns the stored pool, or a fresh empty pool when nothing
// has been committed yet.
func (r *Repository) GetJackpot(ctx context.Context) (*model.JackpotPool, error) {
	var jackpot Jackpot

	query, args, err := squirrel.
		Select(
			"balance::TEXT AS balance",
			"last_winner",
			"last_win_amount::TEXT AS last_win_amount",
			"last_win_block",
			"total_paid_out::TEXT AS total_paid_out",
			"draws",
			"wins",
		).
		From("jackpot").
		Where(squirrel.Eq{"id": jackpotID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &jackpot, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewJackpotPool(), nil
		}
		return nil, err
	}

	return jackpot.toModel()
}

func (r *Repository) upsertJackpotWithTx(ctx context.Context, tx *sqlx.Tx, j *model.JackpotPool) error {
	if j == nil {
		return nil
	}

	query, args, err := squirrel.
		Insert("jackpot").
		SetMap(map[string]interface{}{
			"id":              jackpotID,
			"balance":         numeric(j.Balance),
			"last_winner":     nullAddress(j.LastWinner),
			"last_win_amount": numeric(j.LastWinAmount),
			"last_win_block":  int64(j.LastWinBlock),
			"total_paid_out":  numeric(j.TotalPaidOut),
			"draws":           int64(j.Draws),
			"wins":            int64(j.Wins),
		}).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			balance = EXCLUDED.balance,
			last_winner = EXCLUDED.last_winner,
			last_win_amount = EXCLUDED.last_win_amount,
			last_win_block = EXCLUDED.last_win_block,
			total_paid_out = EXCLUDED.total_paid_out,
			draws = EXCLUDED.draws,
			wins = EXCLUDED.wins`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
