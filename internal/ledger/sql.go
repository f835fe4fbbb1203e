package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects SQL flavour and driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts "sqlite" or "postgres" (also "postgresql", "pg").
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", s)
}

const schema = `
CREATE TABLE IF NOT EXISTS balances (
	user_id    TEXT PRIMARY KEY,
	wallet     BIGINT NOT NULL DEFAULT 0 CHECK (wallet >= 0),
	bank       BIGINT NOT NULL DEFAULT 0 CHECK (bank >= 0),
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLStore implements Store on database/sql. Every mutation is a conditional
// UPDATE ... RETURNING inside a transaction, so increments from concurrent
// callers compose instead of overwriting each other.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database.
func New(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Open connects to dsn with the driver for dialect and checks the connection.
// SQLite gets a single connection, a busy timeout and immediate transactions
// so writers queue instead of failing with SQLITE_BUSY.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if dialect == SQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s db: %w", ErrUnavailable, dialect, err)
	}
	return New(db, dialect), nil
}

// Migrate creates the balances table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close releases the database.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) AddBalance(ctx context.Context, userID string, d Delta) (Entry, error) {
	var e Entry
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensure(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		e, err = s.apply(ctx, tx, userID, d)
		return err
	})
	return e, err
}

func (s *SQLStore) Transfer(ctx context.Context, from, to string, amount int64, fromField, toField Field) (Entry, Entry, error) {
	if amount <= 0 {
		return Entry{}, Entry{}, ErrInvalidAmount
	}
	var src, dst Entry
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ids := []string{from, to}
		slices.Sort(ids)
		ids = slices.Compact(ids)
		for _, id := range ids {
			if err := s.ensure(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := s.lock(ctx, tx, ids); err != nil {
			return err
		}

		var err error
		if src, err = s.apply(ctx, tx, from, Of(fromField, -amount)); err != nil {
			return err
		}
		if dst, err = s.apply(ctx, tx, to, Of(toField, amount)); err != nil {
			return err
		}
		if from == to {
			src = dst
		}
		return nil
	})
	if err != nil {
		return Entry{}, Entry{}, err
	}
	return src, dst, nil
}

func (s *SQLStore) GetBalance(ctx context.Context, userID string) (Entry, error) {
	e := Entry{UserID: userID}
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT wallet, bank FROM balances WHERE user_id = ?`), userID)
	switch err := row.Scan(&e.Wallet, &e.Bank); {
	case errors.Is(err, sql.ErrNoRows):
		return e, nil
	case err != nil:
		return Entry{}, fmt.Errorf("%w: get balance %s: %w", ErrUnavailable, userID, err)
	}
	return e, nil
}

// inTx runs fn in a transaction. Ledger errors pass through; anything else is
// reported as ErrUnavailable.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrUnavailable, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrOverflow) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLStore) ensure(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO balances (user_id, wallet, bank) VALUES (?, 0, 0) ON CONFLICT (user_id) DO NOTHING`),
		userID)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", userID, err)
	}
	return nil
}

// lock takes row locks in id order on postgres so that opposing transfers
// cannot deadlock. SQLite transactions are already exclusive.
func (s *SQLStore) lock(ctx context.Context, tx *sql.Tx, ids []string) error {
	if s.dialect != Postgres {
		return nil
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `SELECT 1 FROM balances WHERE user_id = $1 FOR UPDATE`, id); err != nil {
			return fmt.Errorf("lock entry %s: %w", id, err)
		}
	}
	return nil
}

// apply updates userID by d. The guards are written so that no expression
// can overflow BIGINT: sqlite would turn the result into a REAL and postgres
// would raise an error.
func (s *SQLStore) apply(ctx context.Context, tx *sql.Tx, userID string, d Delta) (Entry, error) {
	if d.Wallet == math.MinInt64 || d.Bank == math.MinInt64 {
		return Entry{}, ErrInsufficientFunds
	}
	limit, ok := totalLimit(d)
	if !ok {
		return Entry{}, ErrOverflow
	}

	e := Entry{UserID: userID}
	row := tx.QueryRowContext(ctx, s.rebind(`
UPDATE balances
SET wallet = wallet + ?, bank = bank + ?, updated_at = CURRENT_TIMESTAMP
WHERE user_id = ? AND wallet >= ? AND bank >= ? AND wallet + bank <= ?
RETURNING wallet, bank`),
		d.Wallet, d.Bank, userID, -d.Wallet, -d.Bank, limit)
	switch err := row.Scan(&e.Wallet, &e.Bank); {
	case errors.Is(err, sql.ErrNoRows):
		return Entry{}, s.rejection(ctx, tx, userID, d)
	case err != nil:
		return Entry{}, fmt.Errorf("update entry %s: %w", userID, err)
	}
	return e, nil
}

// rejection reads the entry a guarded update skipped and reports why.
func (s *SQLStore) rejection(ctx context.Context, tx *sql.Tx, userID string, d Delta) error {
	var wallet, bank int64
	row := tx.QueryRowContext(ctx, s.rebind(`SELECT wallet, bank FROM balances WHERE user_id = ?`), userID)
	if err := row.Scan(&wallet, &bank); err != nil {
		return fmt.Errorf("read entry %s: %w", userID, err)
	}
	if _, _, err := next(wallet, bank, d); err != nil {
		return err
	}
	return ErrInsufficientFunds
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
