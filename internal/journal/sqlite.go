package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteJournal opens (or creates) the journal database at dbPath.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	schema := `
	-- Finished sessions, one row per stop
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		stopped_at DATETIME,
		trade_capital REAL NOT NULL,
		session_profit REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		win_count INTEGER NOT NULL,
		loss_count INTEGER NOT NULL,
		stop_reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Resolved trades
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		pair TEXT NOT NULL,
		direction TEXT NOT NULL,
		expiry TEXT NOT NULL,
		stake REAL NOT NULL,
		stake_basis TEXT NOT NULL,
		adapter TEXT,
		opened_at DATETIME NOT NULL,
		resolved_at DATETIME,
		result TEXT NOT NULL,
		payout_amount REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id);

	-- Emitted signals, whether or not they led to a dispatch
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		pair TEXT NOT NULL,
		direction TEXT NOT NULL,
		expiry TEXT NOT NULL,
		confidence REAL NOT NULL,
		reason TEXT,
		rsi REAL,
		fast_ma REAL,
		slow_ma REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_signals_session ON signals(session_id);
	`
	_, err := j.db.Exec(schema)
	return err
}

// AppendSignal records an emitted signal with its indicator snapshot.
func (j *SQLiteJournal) AppendSignal(ctx context.Context, sessionID string, s models.Signal) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO signals (session_id, tick, timestamp, pair, direction, expiry, confidence, reason, rsi, fast_ma, slow_ma)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, s.GeneratedAt, s.Timestamp, s.Pair, string(s.Direction), string(s.Expiry),
		s.Confidence, s.Reason, s.Snapshot.RSI, s.Snapshot.FastMA, s.Snapshot.SlowMA)
	if err != nil {
		return errors.NewJournalError("append_signal", err)
	}
	return nil
}

// AppendTrade records a finalized trade.
func (j *SQLiteJournal) AppendTrade(ctx context.Context, t *models.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades (id, session_id, pair, direction, expiry, stake, stake_basis, adapter, opened_at, resolved_at, result, payout_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Signal.Pair, string(t.Signal.Direction), string(t.Signal.Expiry),
		t.Stake.Amount, string(t.Stake.Basis), t.Adapter, t.OpenedAt, t.ResolvedAt,
		string(t.Result), t.PayoutAmount)
	if err != nil {
		return errors.NewJournalError("append_trade", err)
	}
	return nil
}

// AppendSession archives a finished session.
func (j *SQLiteJournal) AppendSession(ctx context.Context, s models.SessionSummary) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, stopped_at, trade_capital, session_profit, trade_count, win_count, loss_count, stop_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartedAt, s.StoppedAt, s.TradeCapital, s.SessionProfit,
		s.TradeCount, s.WinCount, s.LossCount, string(s.StopReason))
	if err != nil {
		return errors.NewJournalError("append_session", err)
	}
	return nil
}

// Trades returns all trades recorded for a session, oldest first.
func (j *SQLiteJournal) Trades(ctx context.Context, sessionID string) ([]models.TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, pair, direction, expiry, stake, stake_basis, adapter, opened_at, resolved_at, result, payout_amount
		FROM trades WHERE session_id = ? ORDER BY opened_at ASC`, sessionID)
	if err != nil {
		return nil, errors.NewJournalError("query_trades", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		var direction, expiry, basis, result string
		var resolvedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Signal.Pair, &direction, &expiry,
			&t.Stake.Amount, &basis, &t.Adapter, &t.OpenedAt, &resolvedAt, &result, &t.PayoutAmount); err != nil {
			return nil, errors.NewJournalError("scan_trade", err)
		}
		t.Signal.Direction = models.Direction(direction)
		t.Signal.Expiry = models.Expiry(expiry)
		t.Stake.Basis = models.StakeBasis(basis)
		t.Result = models.Outcome(result)
		if resolvedAt.Valid {
			t.ResolvedAt = resolvedAt.Time
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Sessions returns the most recent archived sessions, newest first.
func (j *SQLiteJournal) Sessions(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, started_at, stopped_at, trade_capital, session_profit, trade_count, win_count, loss_count, stop_reason
		FROM sessions ORDER BY stopped_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewJournalError("query_sessions", err)
	}
	defer rows.Close()

	var sessions []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		var reason string
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.StoppedAt, &s.TradeCapital,
			&s.SessionProfit, &s.TradeCount, &s.WinCount, &s.LossCount, &reason); err != nil {
			return nil, errors.NewJournalError("scan_session", err)
		}
		s.StopReason = models.StopReason(reason)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// RecentSignals returns the most recent emitted signals, newest first.
func (j *SQLiteJournal) RecentSignals(ctx context.Context, limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT tick, timestamp, pair, direction, expiry, confidence, reason, rsi, fast_ma, slow_ma
		FROM signals ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewJournalError("query_signals", err)
	}
	defer rows.Close()

	var signals []models.Signal
	for rows.Next() {
		var s models.Signal
		var direction, expiry string
		if err := rows.Scan(&s.GeneratedAt, &s.Timestamp, &s.Pair, &direction, &expiry,
			&s.Confidence, &s.Reason, &s.Snapshot.RSI, &s.Snapshot.FastMA, &s.Snapshot.SlowMA); err != nil {
			return nil, errors.NewJournalError("scan_signal", err)
		}
		s.Direction = models.Direction(direction)
		s.Expiry = models.Expiry(expiry)
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
