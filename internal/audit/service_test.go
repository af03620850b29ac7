package audit_test

import (
	"testing"

	"bayi-backend/internal/audit"
	"bayi-backend/internal/database"
	"bayi-backend/internal/models"
	"bayi-backend/internal/stock"
	"bayi-backend/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLog(t *testing.T) {
	db := testdb.New(t)

	err := audit.WriteLog(audit.LogOptions{
		UserID:      1,
		UserName:    "admin",
		EntityType:  "stock_record",
		EntityID:    42,
		Action:      models.AuditActionCreate,
		Description: "Yeni stok kaydı",
		After:       map[string]any{"quantity": 10},
	})
	require.NoError(t, err)

	var log models.AuditLog
	require.NoError(t, db.First(&log).Error)
	assert.Equal(t, "stock_record", log.EntityType)
	assert.Equal(t, "null", log.BeforeData)
	assert.JSONEq(t, `{"quantity":10}`, log.AfterData)
	assert.False(t, log.IsUndone)
}

func TestUndoLogRestoresStockRecord(t *testing.T) {
	db := testdb.New(t)

	rec, err := stock.CreateRecord(db, "SKU-1", database.WarehouseID, stock.RecordAttrs{
		ItemName:  "Türk Kahvesi 500g",
		Category:  "İçecek",
		UnitPrice: 120,
		Quantity:  10,
	})
	require.NoError(t, err)

	before := *rec
	_, err = stock.AdjustQuantity(db, "SKU-1", database.WarehouseID, 15)
	require.NoError(t, err)

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		UserID:      1,
		UserName:    "admin",
		EntityType:  "stock_record",
		EntityID:    rec.ID,
		Action:      models.AuditActionUpdate,
		Description: "Manuel düzeltme",
		Before:      before,
	}))

	var log models.AuditLog
	require.NoError(t, db.First(&log).Error)

	require.NoError(t, audit.UndoLog(log.ID, 2, "admin2"))

	restored, err := stock.GetRecord(db, "SKU-1", database.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, 10, restored.Quantity)

	// Asıl log geri alındı olarak işaretlenir, ayrıca bir undo logu yazılır
	require.NoError(t, db.First(&log, "id = ?", log.ID).Error)
	assert.True(t, log.IsUndone)
	require.NotNil(t, log.UndoneBy)
	assert.Equal(t, uint(2), *log.UndoneBy)

	var undoCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionUndo).Count(&undoCount).Error)
	assert.Equal(t, int64(1), undoCount)

	// İkinci kez geri alınamaz
	assert.Error(t, audit.UndoLog(log.ID, 2, "admin2"))
}

func TestUndoLogOnlyStockUpdates(t *testing.T) {
	testdb.New(t)

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		UserID:     1,
		UserName:   "admin",
		EntityType: "sale",
		EntityID:   7,
		Action:     models.AuditActionCreate,
	}))

	var log models.AuditLog
	require.NoError(t, database.DB.First(&log).Error)

	// Satışlar defter kaydıdır, geri alma kapsamı dışındadır
	assert.Error(t, audit.UndoLog(log.ID, 1, "admin"))
}
