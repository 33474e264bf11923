package repository

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"UD_loyalty_hook/pkg/logger"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEventExists = errors.New("event already recorded")
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

type Repository struct {
	db *sqlx.DB
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

type Config struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"sslMode"`
}

func New(cfg Config) (*Repository, error) {
	url := cfg.GetDatabaseURL()
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully", zap.String("host", cfg.Host), zap.String("name", cfg.Name))

	return NewWithDB(db), nil
}

func NewWithDB(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Migrate brings the schema up to the latest embedded goose migration.
func (r *Repository) Migrate() error {
	log := logger.Logger()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log.Named("db migration").Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(r.db.DB, migrationsDir); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}

	version, err := goose.GetDBVersion(r.db.DB)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	log.Info("Database schema is up to date", zap.Int64("version", version))

	return nil
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Print(v ...interface{}) {
	l.Info(v...)
}

func (l gooseLogger) Println(v ...interface{}) {
	l.Infoln(v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (c *Config) GetDatabaseURL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		sslMode,
	)
}
