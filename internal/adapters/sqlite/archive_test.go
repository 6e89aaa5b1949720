package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energytrader/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestArchive creates a temporary database for testing
func setupTestArchive(t *testing.T) *Archive {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	archive, err := NewArchive(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })
	return archive
}

func receiptFixture(tradeID, seller, buyer string, settledAt time.Time) *domain.TradeReceipt {
	return &domain.TradeReceipt{
		TradeID:      tradeID,
		SellerID:     seller,
		BuyerID:      buyer,
		EnergyAmount: 40.0,
		PricePerUnit: 2.0,
		TotalPrice:   80.0,
		Status:       domain.StatusCompleted,
		Timestamp:    settledAt,
		Message:      "Trade processed successfully",
		TradeHash:    "hash-" + tradeID,
	}
}

func TestArchive_NewRequiresLogger(t *testing.T) {
	archive, err := NewArchive(Config{DBPath: "ignored.db"})
	assert.Error(t, err)
	assert.Nil(t, archive)
}

func TestArchive_SaveAndQuery(t *testing.T) {
	archive := setupTestArchive(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id, err := archive.SaveTrade(ctx, receiptFixture("t1", "alice", "bob", base))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	_, err = archive.SaveTrade(ctx, receiptFixture("t2", "bob", "carol", base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = archive.SaveTrade(ctx, receiptFixture("t3", "alice", "carol", base.Add(2*time.Minute)))
	require.NoError(t, err)

	tests := []struct {
		name      string
		user      string
		limit     int
		wantIDs   []string
		wantEmpty bool
	}{
		{
			name:    "seller and buyer roles both match, newest first",
			user:    "alice",
			limit:   10,
			wantIDs: []string{"t3", "t1"},
		},
		{
			name:    "limit applies",
			user:    "carol",
			limit:   1,
			wantIDs: []string{"t3"},
		},
		{
			name:      "unknown user",
			user:      "ghost",
			limit:     10,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipts, err := archive.RecentByUser(ctx, tt.user, tt.limit)
			require.NoError(t, err)
			if tt.wantEmpty {
				assert.Empty(t, receipts)
				return
			}
			require.Len(t, receipts, len(tt.wantIDs))
			for i, wantID := range tt.wantIDs {
				assert.Equal(t, wantID, receipts[i].TradeID)
			}
		})
	}
}

func TestArchive_RoundTripPreservesFields(t *testing.T) {
	archive := setupTestArchive(t)
	ctx := context.Background()

	want := receiptFixture("t1", "alice", "bob", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := archive.SaveTrade(ctx, want)
	require.NoError(t, err)

	receipts, err := archive.RecentByUser(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	got := receipts[0]
	assert.Equal(t, want.TradeID, got.TradeID)
	assert.Equal(t, want.SellerID, got.SellerID)
	assert.Equal(t, want.BuyerID, got.BuyerID)
	assert.Equal(t, want.EnergyAmount, got.EnergyAmount)
	assert.Equal(t, want.PricePerUnit, got.PricePerUnit)
	assert.Equal(t, want.TotalPrice, got.TotalPrice)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.TradeHash, got.TradeHash)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
}

func TestArchive_DuplicateTradeIDRejected(t *testing.T) {
	archive := setupTestArchive(t)
	ctx := context.Background()
	receipt := receiptFixture("t1", "alice", "bob", time.Now().UTC())

	_, err := archive.SaveTrade(ctx, receipt)
	require.NoError(t, err)

	_, err = archive.SaveTrade(ctx, receipt)
	assert.Error(t, err, "trade_id column is unique")
}
