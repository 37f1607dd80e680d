// Package journal keeps a relational audit trail of marketplace activity:
// every operation attempt with its result code, and every settlement with
// its computed shares. The journal is observational; the ledger store
// remains the single source of truth.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/crypto"
)

// ErrClosed is returned when the journal is used before Open or after
// Close.
var ErrClosed = errors.New("journal: database closed")

// OperationRecord is one journaled operation attempt.
type OperationRecord struct {
	ID        int64
	Op        string
	Result    int
	ResultStr string
	Asset     string
	TokenID   uint64
	Caller    string
	Amount    uint64
	CreatedAt time.Time
}

// SettlementRecord is one journaled proceeds split.
type SettlementRecord struct {
	ID                int64
	Payee             string
	TotalPrice        uint64
	MarketplaceShare  uint64
	CollectionShare   uint64
	PayeeShare        uint64
	MarketplaceFeeBps uint32
	CollectionFeeBps  uint32
	CreatedAt         time.Time
}

// Journal is a database/sql backed audit log. It implements
// market.Journal.
type Journal struct {
	cfg Config
	db  *sql.DB
}

// New creates a journal from config without opening it.
func New(cfg Config) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Journal{cfg: cfg}, nil
}

// Open opens the connection and initializes the schema.
func (j *Journal) Open(ctx context.Context) error {
	db, err := sql.Open(j.cfg.Driver, j.cfg.DSN)
	if err != nil {
		return fmt.Errorf("journal: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(j.cfg.MaxOpenConns)
	db.SetMaxIdleConns(j.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(j.cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, j.cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("journal: failed to ping database: %w", err)
	}

	j.db = db
	if err := j.initSchema(ctx); err != nil {
		j.db.Close()
		j.db = nil
		return fmt.Errorf("journal: failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func (j *Journal) initSchema(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if j.cfg.Driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS operations (
			id %s,
			op TEXT NOT NULL,
			result INTEGER NOT NULL,
			result_name TEXT NOT NULL,
			asset TEXT NOT NULL,
			token_id BIGINT NOT NULL,
			caller TEXT NOT NULL,
			amount BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS settlements (
			id %s,
			payee TEXT NOT NULL,
			total_price BIGINT NOT NULL,
			marketplace_share BIGINT NOT NULL,
			collection_share BIGINT NOT NULL,
			payee_share BIGINT NOT NULL,
			marketplace_fee_bps INTEGER NOT NULL,
			collection_fee_bps INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, serial),
		`CREATE INDEX IF NOT EXISTS idx_operations_caller ON operations (caller)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_payee ON settlements (payee)`,
	}

	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (j *Journal) rebind(query string) string {
	if j.cfg.Driver != DriverPostgres {
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

// RecordOperation journals one operation attempt, successful or not.
func (j *Journal) RecordOperation(op string, result market.Result, asset crypto.AccountID, tokenID uint64, caller crypto.AccountID, amount uint64) error {
	if j.db == nil {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.QueryTimeout)
	defer cancel()

	_, err := j.db.ExecContext(ctx, j.rebind(
		`INSERT INTO operations (op, result, result_name, asset, token_id, caller, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		op, int(result), result.String(), asset.String(), int64(tokenID), caller.String(), int64(amount), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("journal: failed to record operation: %w", err)
	}
	return nil
}

// RecordSettlement journals one committed proceeds split.
func (j *Journal) RecordSettlement(payee crypto.AccountID, totalPrice, marketplaceShare, collectionShare, payeeShare uint64, marketplaceFeeBps, collectionFeeBps uint32) error {
	if j.db == nil {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.QueryTimeout)
	defer cancel()

	_, err := j.db.ExecContext(ctx, j.rebind(
		`INSERT INTO settlements (payee, total_price, marketplace_share, collection_share, payee_share, marketplace_fee_bps, collection_fee_bps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		payee.String(), int64(totalPrice), int64(marketplaceShare), int64(collectionShare), int64(payeeShare),
		int64(marketplaceFeeBps), int64(collectionFeeBps), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("journal: failed to record settlement: %w", err)
	}
	return nil
}

// Operations returns the most recent operation records, newest first.
func (j *Journal) Operations(ctx context.Context, limit int) ([]OperationRecord, error) {
	if j.db == nil {
		return nil, ErrClosed
	}

	rows, err := j.db.QueryContext(ctx, j.rebind(
		`SELECT id, op, result, result_name, asset, token_id, caller, amount, created_at
		 FROM operations ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to query operations: %w", err)
	}
	defer rows.Close()

	var records []OperationRecord
	for rows.Next() {
		var rec OperationRecord
		var tokenID, amount int64
		if err := rows.Scan(&rec.ID, &rec.Op, &rec.Result, &rec.ResultStr, &rec.Asset, &tokenID, &rec.Caller, &amount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: failed to scan operation: %w", err)
		}
		rec.TokenID = uint64(tokenID)
		rec.Amount = uint64(amount)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Settlements returns the most recent settlement records, newest first.
func (j *Journal) Settlements(ctx context.Context, limit int) ([]SettlementRecord, error) {
	if j.db == nil {
		return nil, ErrClosed
	}

	rows, err := j.db.QueryContext(ctx, j.rebind(
		`SELECT id, payee, total_price, marketplace_share, collection_share, payee_share, marketplace_fee_bps, collection_fee_bps, created_at
		 FROM settlements ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to query settlements: %w", err)
	}
	defer rows.Close()

	var records []SettlementRecord
	for rows.Next() {
		var rec SettlementRecord
		var total, mShare, cShare, pShare, mBps, cBps int64
		if err := rows.Scan(&rec.ID, &rec.Payee, &total, &mShare, &cShare, &pShare, &mBps, &cBps, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: failed to scan settlement: %w", err)
		}
		rec.TotalPrice = uint64(total)
		rec.MarketplaceShare = uint64(mShare)
		rec.CollectionShare = uint64(cShare)
		rec.PayeeShare = uint64(pShare)
		rec.MarketplaceFeeBps = uint32(mBps)
		rec.CollectionFeeBps = uint32(cBps)
		records = append(records, rec)
	}
	return records, rows.Err()
}
