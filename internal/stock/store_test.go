package stock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"bayi-backend/internal/database"
	"bayi-backend/internal/models"
	"bayi-backend/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(t *testing.T, qty int) uint {
	t.Helper()
	_, err := CreateRecord(database.DB, "SKU-1", database.WarehouseID, RecordAttrs{
		ItemName:  "Filtre Kahve 1kg",
		Category:  "İçecek",
		UnitPrice: 450,
		Quantity:  qty,
	})
	require.NoError(t, err)
	return database.WarehouseID
}

func TestCreateRecordDuplicate(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 10)

	_, err := CreateRecord(database.DB, "SKU-1", locID, RecordAttrs{ItemName: "Filtre Kahve 1kg", Quantity: 5})
	assert.ErrorIs(t, err, ErrRecordExists)

	rec, err := GetRecord(database.DB, "SKU-1", locID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
}

func TestCreateRecordNegativeQuantity(t *testing.T) {
	testdb.New(t)

	_, err := CreateRecord(database.DB, "SKU-2", database.WarehouseID, RecordAttrs{ItemName: "Çay", Quantity: -1})
	assert.Error(t, err)
}

func TestAdjustQuantity(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 10)

	qty, err := AdjustQuantity(database.DB, "SKU-1", locID, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, qty)

	qty, err = AdjustQuantity(database.DB, "SKU-1", locID, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, qty)
}

func TestAdjustQuantityInsufficient(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 10)

	_, err := AdjustQuantity(database.DB, "SKU-1", locID, -11)
	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, "SKU-1", ins.SKU)
	assert.Equal(t, 10, ins.Available)
	assert.Equal(t, 11, ins.Requested)

	// Reddedilen düşüm miktarı değiştirmemiş olmalı
	rec, err := GetRecord(database.DB, "SKU-1", locID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
}

func TestAdjustQuantityUnknownRecord(t *testing.T) {
	testdb.New(t)

	_, err := AdjustQuantity(database.DB, "YOK-SKU", database.WarehouseID, -1)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAdjustQuantityToExactlyZero(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 4)

	qty, err := AdjustQuantity(database.DB, "SKU-1", locID, -4)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

// Eşzamanlı düşümler: 5 birimlik stoğa 10 paralel düşüm, tam 5'i başarılı
// olmalı ve miktar asla negatife inmemeli. Her başarılı çağrının dönen
// miktarı kendi düşümünün sonucudur; beş başarı {4,3,2,1,0} kümesini verir.
func TestAdjustQuantityConcurrent(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 5)

	var mu sync.Mutex
	var wg sync.WaitGroup
	returned := make([]int, 0, 5)
	var insufficient int64
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qty, err := AdjustQuantity(database.DB, "SKU-1", locID, -1)
			if err == nil {
				mu.Lock()
				returned = append(returned, qty)
				mu.Unlock()
				return
			}
			var ins *InsufficientStockError
			if errors.As(err, &ins) {
				atomic.AddInt64(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), insufficient)
	assert.ElementsMatch(t, []int{4, 3, 2, 1, 0}, returned)

	rec, err := GetRecord(database.DB, "SKU-1", locID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Quantity)
}

func TestRemoveRecord(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 10)

	require.NoError(t, RemoveRecord(database.DB, "SKU-1", locID))

	_, err := GetRecord(database.DB, "SKU-1", locID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// Aynı kaydı ikinci kez kaldırmak bulunamadı hatası verir
	assert.ErrorIs(t, RemoveRecord(database.DB, "SKU-1", locID), ErrRecordNotFound)
}

func TestCreateRecordRestoresRemoved(t *testing.T) {
	testdb.New(t)
	locID := seedRecord(t, 10)
	require.NoError(t, RemoveRecord(database.DB, "SKU-1", locID))

	rec, err := CreateRecord(database.DB, "SKU-1", locID, RecordAttrs{
		ItemName:  "Filtre Kahve 1kg Yeni Seri",
		Category:  "İçecek",
		UnitPrice: 480,
		Quantity:  6,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, rec.Quantity)
	assert.Equal(t, 480.0, rec.UnitPrice)

	got, err := GetRecord(database.DB, "SKU-1", locID)
	require.NoError(t, err)
	assert.Equal(t, "Filtre Kahve 1kg Yeni Seri", got.ItemName)
}

// Aynı SKU farklı lokasyonlarda bağımsız kayıtlardır.
func TestPerLocationIsolation(t *testing.T) {
	db := testdb.New(t)
	seedRecord(t, 10)

	bayi := models.Location{Name: "Kadıköy Bayi", Type: models.LocationFranchise}
	require.NoError(t, db.Create(&bayi).Error)

	_, err := CreateRecord(db, "SKU-1", bayi.ID, RecordAttrs{ItemName: "Filtre Kahve 1kg", UnitPrice: 450, Quantity: 3})
	require.NoError(t, err)

	_, err = AdjustQuantity(db, "SKU-1", bayi.ID, -2)
	require.NoError(t, err)

	wrec, err := GetRecord(db, "SKU-1", database.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, 10, wrec.Quantity)

	brec, err := GetRecord(db, "SKU-1", bayi.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, brec.Quantity)
}
