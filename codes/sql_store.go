package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/ticket"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const createCodesTable = `CREATE TABLE IF NOT EXISTS authorization_codes (
	code      TEXT PRIMARY KEY,
	ticket    TEXT NOT NULL,
	issued_at BIGINT NOT NULL
)`

var _ Store = (*SQLStore)(nil)

// SQLStore keeps codes in a SQL table. Redemption is a single
// DELETE ... RETURNING statement so the row can only be claimed once.
type SQLStore struct {
	entryCodec
	db *sqlx.DB
}

// NewSQLStore opens dsn with driver ("sqlite" or "postgres") and creates the
// codes table if needed.
func NewSQLStore(ctx context.Context, driver, dsn string, codec ticket.Codec, opts ...Option) (*SQLStore, error) {
	if driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("[NewSQLStore] creating %s: %w", dir, err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("[NewSQLStore] connecting to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	s, err := NewSQLStoreWithDB(ctx, db, codec, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLStoreWithDB(ctx context.Context, db *sqlx.DB, codec ticket.Codec, opts ...Option) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createCodesTable); err != nil {
		return nil, fmt.Errorf("[NewSQLStore] creating table: %w", err)
	}
	return &SQLStore{entryCodec: newEntryCodec(codec, opts), db: db}, nil
}

func (s *SQLStore) Issue(ctx context.Context, t *ticket.Ticket) (string, error) {
	encoded, err := s.encode(t)
	if err != nil {
		return "", fmt.Errorf("[SQLStore Issue] %w", err)
	}

	code, err := GenerateCode(s.codeLength)
	if err != nil {
		return "", fmt.Errorf("[SQLStore Issue] %w", err)
	}

	query := s.db.Rebind(`INSERT INTO authorization_codes (code, ticket, issued_at) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, code, encoded, s.nowFunc().UnixMilli()); err != nil {
		return "", fmt.Errorf("[SQLStore Issue] %w", err)
	}
	return code, nil
}

func (s *SQLStore) Redeem(ctx context.Context, code string) (*ticket.Ticket, error) {
	var row struct {
		Ticket   string `db:"ticket"`
		IssuedAt int64  `db:"issued_at"`
	}

	query := s.db.Rebind(`DELETE FROM authorization_codes WHERE code = ? RETURNING ticket, issued_at`)
	err := s.db.QueryRowxContext(ctx, query, code).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[SQLStore Redeem] %w", err)
	}
	return s.decode(row.Ticket, time.UnixMilli(row.IssuedAt))
}

func (s *SQLStore) Cleanup(ctx context.Context) (int, error) {
	cutoff := s.nowFunc().Add(-s.ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM authorization_codes WHERE issued_at <= ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("[SQLStore Cleanup] %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("[SQLStore Cleanup] %w", err)
	}
	return int(n), nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
