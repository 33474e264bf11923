package repository

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"

	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	insertEventSQL   = regexp.QuoteMeta("INSERT INTO events") + ".*" + regexp.QuoteMeta("ON CONFLICT (event_id) DO NOTHING")
	upsertAccountSQL = regexp.QuoteMeta("INSERT INTO accounts") + ".*" + regexp.QuoteMeta("ON CONFLICT (address) DO UPDATE")
	upsertJackpotSQL = regexp.QuoteMeta("INSERT INTO jackpot") + ".*" + regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")
	insertMintsSQL   = regexp.QuoteMeta("INSERT INTO mints (event_id,address,amount,reason)")
	creditBalanceSQL = regexp.QuoteMeta("INSERT INTO point_balances (address,balance)") + ".*" +
		regexp.QuoteMeta("balance = point_balances.balance + EXCLUDED.balance")
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(sqlx.NewDb(db, "pgx")), mock
}

func appliedCommit(id uuid.UUID) *Commit {
	out := model.NewOutcome(model.EventSwap, 19_000_000)
	out.User = alice
	out.TotalPoints = uint256.NewInt(110)
	out.Steps = []string{model.StepStreak, model.StepMint}

	aliceAccount := model.NewUserAccount(alice)
	aliceAccount.StreakCount = 3
	aliceAccount.Referrer = &bob

	return &Commit{
		EventID:  id,
		Outcome:  out,
		Accounts: []*model.UserAccount{aliceAccount},
		Jackpot:  model.NewJackpotPool(),
		Mints: []ledger.Instruction{
			{To: alice, Amount: uint256.NewInt(110), Reason: ledger.ReasonPoints},
			{To: bob, Amount: uint256.NewInt(10), Reason: ledger.ReasonReferral},
		},
	}
}

func TestRepository_CommitEvent(t *testing.T) {
	id := uuid.New()
	boom := errors.New("boom")

	tests := []struct {
		name        string
		commit      *Commit
		mockSetup   func(m sqlmock.Sqlmock)
		wantErr     error
		errContains string
	}{
		{
			name:   "Writes event, accounts, jackpot and credits",
			commit: appliedCommit(id),
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(insertEventSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(upsertAccountSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(upsertJackpotSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(insertMintsSQL).
					WithArgs(id, alice.Hex(), "110", ledger.ReasonPoints, id, bob.Hex(), "10", ledger.ReasonReferral).
					WillReturnResult(sqlmock.NewResult(0, 2))
				m.ExpectExec(creditBalanceSQL).WithArgs(alice.Hex(), "110").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(creditBalanceSQL).WithArgs(bob.Hex(), "10").WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
		},
		{
			name: "Skipped event writes only the event row",
			commit: &Commit{
				EventID: id,
				Outcome: model.NewOutcome(model.EventSwap, 7).Skip(model.SkipPairNotNative),
			},
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(insertEventSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
		},
		{
			name:   "Existing event id rolls back",
			commit: appliedCommit(id),
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(insertEventSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectRollback()
			},
			wantErr: ErrEventExists,
		},
		{
			name:   "Existing event id with failed rollback",
			commit: appliedCommit(id),
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(insertEventSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectRollback().WillReturnError(errors.New("conn lost"))
			},
			wantErr:     ErrEventExists,
			errContains: "rollback error: conn lost",
		},
		{
			name:   "Account upsert failure rolls back",
			commit: appliedCommit(id),
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(insertEventSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(upsertAccountSQL).WillReturnError(boom)
				m.ExpectRollback()
			},
			wantErr:     boom,
			errContains: "failed to upsert accounts",
		},
		{
			name:   "Credit failure rolls back",
			commit: appliedCommit(id),
			mockSetup: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(insertEventSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(upsertAccountSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(upsertJackpotSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectExec(insertMintsSQL).WillReturnResult(sqlmock.NewResult(0, 2))
				m.ExpectExec(creditBalanceSQL).WillReturnError(boom)
				m.ExpectRollback()
			},
			wantErr:     boom,
			errContains: "failed to credit " + alice.Hex(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, m := newMockRepository(t)
			tt.mockSetup(m)

			err := repo.CommitEvent(context.Background(), tt.commit)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, m.ExpectationsWereMet())
		})
	}
}

func TestRepository_EventExists(t *testing.T) {
	repo, m := newMockRepository(t)
	id := uuid.New()

	m.ExpectQuery(`SELECT EXISTS \(\s*SELECT 1 FROM events WHERE event_id = \$1\s*\)`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EventExists(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestMigrations(t *testing.T) {
	goose.SetBaseFS(migrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	collected, err := goose.CollectMigrations(migrationsDir, 0, math.MaxInt64)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, int64(1), collected[0].Version)

	body, err := migrations.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "-- +goose Down")
	for _, table := range []string{"accounts", "jackpot", "point_balances", "events", "mints"} {
		assert.Contains(t, string(body), "CREATE TABLE "+table+" ")
		assert.Contains(t, string(body), "DROP TABLE "+table+";")
	}
}

func TestGooseLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := gooseLogger{zap.New(core).Sugar()}

	l.Printf("OK   %s (%s)\n", "0001_init.sql", "12ms")
	l.Println("goose: no migrations to run.", "current version:", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "OK   0001_init.sql (12ms)", entries[0].Message)
	assert.Contains(t, entries[1].Message, "no migrations to run")
}
