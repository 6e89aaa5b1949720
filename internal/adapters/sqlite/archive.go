package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"energytrader/internal/domain"
	"energytrader/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Archive implements the ports.TradeArchive interface using SQLite. It is
// the pluggable durable collaborator behind the in-memory journal.
type Archive struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite archive.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewArchive creates a new SQLite archive instance.
func NewArchive(cfg Config) (*Archive, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite archive")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trades.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite archive initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite archive initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite archive initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but the Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	archive := &Archive{db: db, logger: cfg.Logger}

	if err := archive.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite archive initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return archive, nil
}

// initializeSchema creates tables if they don't exist.
func (a *Archive) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS settled_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trade_id TEXT NOT NULL UNIQUE,
		seller_id TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		energy_amount REAL NOT NULL,
		price_per_unit REAL NOT NULL,
		total_price REAL NOT NULL,
		status TEXT NOT NULL,
		trade_hash TEXT NOT NULL,
		settled_at TIMESTAMP NOT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_settled_trades_seller ON settled_trades (seller_id, settled_at);
	CREATE INDEX IF NOT EXISTS idx_settled_trades_buyer ON settled_trades (buyer_id, settled_at);
	`
	_, err := a.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db != nil {
		a.logger.Info(context.Background(), "Closing SQLite database connection")
		return a.db.Close()
	}
	return nil
}

// SaveTrade persists a settled trade receipt and returns its assigned row ID.
func (a *Archive) SaveTrade(ctx context.Context, receipt *domain.TradeReceipt) (int64, error) {
	const query = `
	INSERT INTO settled_trades (trade_id, seller_id, buyer_id, energy_amount, price_per_unit,
	                            total_price, status, trade_hash, settled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := a.db.ExecContext(ctx, query,
		receipt.TradeID, receipt.SellerID, receipt.BuyerID, receipt.EnergyAmount,
		receipt.PricePerUnit, receipt.TotalPrice, receipt.Status, receipt.TradeHash,
		receipt.Timestamp.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert settled trade %s: %v: %w", receipt.TradeID, err, ports.ErrQueryFailed)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", receipt.TradeID, err)
	}
	a.logger.Debug(ctx, "Settled trade archived", map[string]interface{}{
		"rowID":   id,
		"tradeID": receipt.TradeID,
	})
	return id, nil
}

// RecentByUser retrieves the most recent archived trades where the user
// appears as seller or buyer, up to a limit.
func (a *Archive) RecentByUser(ctx context.Context, userID string, limit int) ([]*domain.TradeReceipt, error) {
	const query = `
	SELECT trade_id, seller_id, buyer_id, energy_amount, price_per_unit,
	       total_price, status, trade_hash, settled_at
	FROM settled_trades
	WHERE seller_id = ? OR buyer_id = ?
	ORDER BY settled_at DESC LIMIT ?`

	rows, err := a.db.QueryContext(ctx, query, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived trades for user %s: %v: %w", userID, err, ports.ErrQueryFailed)
	}
	defer rows.Close()

	receipts := make([]*domain.TradeReceipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archived trade during RecentByUser: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archived trade rows: %w", err)
	}
	return receipts, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanReceipt scans a row into a domain.TradeReceipt struct.
func scanReceipt(s scanner) (*domain.TradeReceipt, error) {
	r := &domain.TradeReceipt{}
	var status string
	err := s.Scan(
		&r.TradeID, &r.SellerID, &r.BuyerID, &r.EnergyAmount, &r.PricePerUnit,
		&r.TotalPrice, &status, &r.TradeHash, &r.Timestamp)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	r.Status = domain.TradeStatus(status) // Convert string to domain type
	return r, nil
}
