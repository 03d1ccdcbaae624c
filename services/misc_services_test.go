package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/tests/testutil"
)

func TestSettingsPutUpserts(t *testing.T) {
	db := setupServicesTestDB(t)
	settings := NewSettingsService(db)
	ctx := context.Background()

	_, err := settings.Put(ctx, "currency", "TRY")
	require.NoError(t, err)
	_, err = settings.Put(ctx, "currency", "EUR")
	require.NoError(t, err)
	_, err = settings.Put(ctx, "company", "Kutu A.Ş.")
	require.NoError(t, err)

	all, err := settings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "company", all[0].Key)
	assert.Equal(t, "EUR", all[1].Value)

	_, err = settings.Put(ctx, "  ", "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorLogService(t *testing.T) {
	db := setupServicesTestDB(t)
	logs := NewErrorLogService(db, testutil.DiscardLogger())
	ctx := context.Background()

	logs.Record(ctx, "server", errors.New("database is locked"), map[string]any{"path": "/api/orders"})
	require.NoError(t, logs.Create(ctx, &models.ErrorLog{Message: "render failed"}))
	assert.ErrorIs(t, logs.Create(ctx, &models.ErrorLog{}), ErrValidation)

	all, err := logs.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	server, err := logs.List(ctx, "server", 10)
	require.NoError(t, err)
	require.Len(t, server, 1)
	assert.Equal(t, "/api/orders", server[0].Context["path"])

	cleared, err := logs.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
}

func TestErrorLogRecordSwallowsFailures(t *testing.T) {
	db := setupServicesTestDB(t)
	logs := NewErrorLogService(db, testutil.DiscardLogger())
	require.NoError(t, db.Migrator().DropTable(&models.ErrorLog{}))

	assert.NotPanics(t, func() {
		logs.Record(context.Background(), "server", errors.New("boom"), nil)
	})
}

func TestStockSummary(t *testing.T) {
	db := setupServicesTestDB(t)
	stock := NewStockService(db)
	ctx := context.Background()

	for _, item := range []models.StockItem{
		{StockNumber: "IN-1", ProductID: "p1", ProductName: "Kutu", Quantity: decimal.NewFromInt(500)},
		{StockNumber: "SHIP-1", ProductID: "p1", ProductName: "Kutu", Quantity: decimal.NewFromInt(-120)},
		{StockNumber: "IN-2", ProductID: "p2", ProductName: "Ambalaj", Quantity: decimal.NewFromInt(50)},
	} {
		item := item
		require.NoError(t, db.Create(&item).Error)
	}

	summary, err := stock.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "p2", summary[0].ProductID)
	assert.Equal(t, "50", summary[0].Quantity.String())
	assert.Equal(t, "p1", summary[1].ProductID)
	assert.Equal(t, "380", summary[1].Quantity.String())
	assert.Equal(t, int64(2), summary[1].Movements)
}

func TestStockSummaryAddsFractionsExactly(t *testing.T) {
	db := setupServicesTestDB(t)
	stock := NewStockService(db)

	for i, qty := range []string{"0.1", "0.2", "12.3456", "-0.0456"} {
		require.NoError(t, db.Create(&models.StockItem{
			StockNumber: fmt.Sprintf("IN-%d", i+1),
			ProductID:   "p1",
			ProductName: "Oluklu Mukavva (m²)",
			Quantity:    decimal.RequireFromString(qty),
		}).Error)
	}

	summary, err := stock.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "12.6", summary[0].Quantity.String())
	assert.Equal(t, int64(4), summary[0].Movements)
}
