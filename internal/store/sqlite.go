package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dhan-signal-trader/internal/models"
)

// SQLiteStore implements SignalStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed signal store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		trading_symbol TEXT NOT NULL,
		underlying TEXT NOT NULL,
		strike INTEGER NOT NULL,
		option_type TEXT NOT NULL,
		action TEXT NOT NULL,
		entry_trigger REAL NOT NULL,
		stop_loss REAL,
		target REAL,
		is_positional INTEGER NOT NULL DEFAULT 0,
		expiry_date DATE NOT NULL,
		raw_text TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_signals_timestamp ON signals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_signals_key ON signals(underlying, strike, option_type, action);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LogSignal appends one admitted signal to the log.
func (s *SQLiteStore) LogSignal(ctx context.Context, intent models.TradeIntent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signals (
			timestamp, trading_symbol, underlying, strike, option_type,
			action, entry_trigger, stop_loss, target, is_positional,
			expiry_date, raw_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intent.Timestamp.UTC(),
		intent.TradingSymbol(),
		string(intent.Underlying),
		intent.Strike,
		string(intent.OptionType),
		string(intent.Action),
		intent.EntryTrigger,
		nullFloat(intent.StopLoss),
		nullFloat(intent.Target),
		intent.IsPositional,
		intent.ExpiryDate.Format("2006-01-02"),
		intent.RawText,
	)
	if err != nil {
		return fmt.Errorf("failed to log signal: %w", err)
	}
	return nil
}

// SignalsSince returns admitted signals newer than the given time, in
// ascending timestamp order.
func (s *SQLiteStore) SignalsSince(ctx context.Context, since time.Time) ([]models.TradeIntent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, underlying, strike, option_type, action,
		       entry_trigger, stop_loss, target, is_positional, expiry_date, raw_text
		FROM signals
		WHERE timestamp > ?
		ORDER BY timestamp ASC`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

// RecentSignals returns the newest signals, most recent first.
func (s *SQLiteStore) RecentSignals(ctx context.Context, limit int) ([]models.TradeIntent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, underlying, strike, option_type, action,
		       entry_trigger, stop_loss, target, is_positional, expiry_date, raw_text
		FROM signals
		ORDER BY timestamp DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

func scanSignals(rows *sql.Rows) ([]models.TradeIntent, error) {
	var signals []models.TradeIntent
	for rows.Next() {
		var (
			intent     models.TradeIntent
			underlying string
			optionType string
			action     string
			stopLoss   sql.NullFloat64
			target     sql.NullFloat64
			expiry     time.Time
			rawText    sql.NullString
		)
		if err := rows.Scan(
			&intent.Timestamp, &underlying, &intent.Strike, &optionType, &action,
			&intent.EntryTrigger, &stopLoss, &target, &intent.IsPositional, &expiry, &rawText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}

		intent.Underlying = models.Underlying(underlying)
		intent.OptionType = models.OptionType(optionType)
		intent.Action = models.Action(action)
		intent.StopLoss = stopLoss.Float64
		intent.Target = target.Float64
		intent.RawText = rawText.String
		intent.ExpiryDate = expiry
		signals = append(signals, intent)
	}
	return signals, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v > 0}
}
