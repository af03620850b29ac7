package sales

import (
	"sync"
	"testing"
	"time"

	"bayi-backend/internal/models"
	"bayi-backend/internal/stock"
	"bayi-backend/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFranchise(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	loc := models.Location{Name: "Beşiktaş Bayi", Type: models.LocationFranchise}
	require.NoError(t, db.Create(&loc).Error)
	return loc.ID
}

func seedStock(t *testing.T, db *gorm.DB, locID uint, sku string, qty int, price float64) {
	t.Helper()
	_, err := stock.CreateRecord(db, sku, locID, stock.RecordAttrs{
		ItemName:  "Ürün " + sku,
		Category:  "Genel",
		UnitPrice: price,
		Quantity:  qty,
	})
	require.NoError(t, err)
}

func TestRecordSale(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 10, 25)

	sale, err := RecordSale(db, locID, []LineItem{{SKU: "SKU-A", Quantity: 3}}, "Ayşe Yılmaz", "0555 111 22 33", "")
	require.NoError(t, err)

	assert.Equal(t, 75.0, sale.Total)
	assert.Equal(t, "Ayşe Yılmaz", sale.CustomerName)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 25.0, sale.Items[0].UnitPrice)
	assert.Equal(t, "Ürün SKU-A", sale.Items[0].ItemName)

	rec, err := stock.GetRecord(db, "SKU-A", locID)
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Quantity)
}

func TestRecordSaleMultiLineTotal(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 10, 25)
	seedStock(t, db, locID, "SKU-B", 10, 12.5)

	sale, err := RecordSale(db, locID, []LineItem{
		{SKU: "SKU-A", Quantity: 2},
		{SKU: "SKU-B", Quantity: 4},
	}, "Mehmet Kaya", "", "")
	require.NoError(t, err)

	// Toplam her zaman kalemlerin (miktar x birim fiyat) toplamıdır
	assert.Equal(t, 2*25+4*12.5, sale.Total)
}

func TestRecordSaleInsufficient(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 10, 25)

	_, err := RecordSale(db, locID, []LineItem{{SKU: "SKU-A", Quantity: 11}}, "Ali Demir", "0555 111 22 33", "")
	var ins *stock.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, 10, ins.Available)
	assert.Equal(t, 11, ins.Requested)

	// Reddedilen satış iz bırakmaz: ne stok, ne fiş, ne müşteri
	rec, err := stock.GetRecord(db, "SKU-A", locID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count, "reddedilen satış müşteri kaydı açmamalı")
}

func TestRecordSaleUnknownSKU(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)

	_, err := RecordSale(db, locID, []LineItem{{SKU: "YOK", Quantity: 1}}, "Ali Demir", "0555 222 33 44", "")
	var ins *stock.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Zero(t, ins.Available)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

// Çok kalemli satışta tek bir kalem bile yetersizse hiçbir kalem düşülmez.
func TestRecordSaleAllOrNothing(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 10, 25)
	seedStock(t, db, locID, "SKU-B", 4, 10)

	_, err := RecordSale(db, locID, []LineItem{
		{SKU: "SKU-A", Quantity: 3},
		{SKU: "SKU-B", Quantity: 5},
	}, "Ali Demir", "", "")
	var ins *stock.InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, "SKU-B", ins.SKU)

	recA, err := stock.GetRecord(db, "SKU-A", locID)
	require.NoError(t, err)
	assert.Equal(t, 10, recA.Quantity)

	recB, err := stock.GetRecord(db, "SKU-B", locID)
	require.NoError(t, err)
	assert.Equal(t, 4, recB.Quantity)
}

func TestRecordSaleValidation(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 10, 25)

	cases := []struct {
		name  string
		lines []LineItem
		cname string
	}{
		{"kalemsiz", nil, "Ali"},
		{"müşterisiz", []LineItem{{SKU: "SKU-A", Quantity: 1}}, "  "},
		{"sıfır miktar", []LineItem{{SKU: "SKU-A", Quantity: 0}}, "Ali"},
		{"negatif miktar", []LineItem{{SKU: "SKU-A", Quantity: -2}}, "Ali"},
		{"boş sku", []LineItem{{SKU: " ", Quantity: 1}}, "Ali"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RecordSale(db, locID, tc.lines, tc.cname, "", "")
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// Doğrulama hataları mutasyonsuzdur
	rec, err := stock.GetRecord(db, "SKU-A", locID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordSaleCustomerDedup(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 10, 25)

	first, err := RecordSale(db, locID, []LineItem{{SKU: "SKU-A", Quantity: 1}}, "Ayşe Yılmaz", "0555 111 22 33", "")
	require.NoError(t, err)

	// Aynı telefon, farklı yazılmış isim: mevcut müşteri kullanılır, adı ezilmez
	second, err := RecordSale(db, locID, []LineItem{{SKU: "SKU-A", Quantity: 1}}, "A. Yılmaz", "0555 111 22 33", "")
	require.NoError(t, err)
	assert.Equal(t, *first.CustomerID, *second.CustomerID)

	var cust models.Customer
	require.NoError(t, db.First(&cust, "id = ?", *first.CustomerID).Error)
	assert.Equal(t, "Ayşe Yılmaz", cust.Name)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// Son 2 birime eşzamanlı iki satış: tam biri başarılı olur, stok sıfırlanır
// ve yalnızca bir satış fişi kesilir.
func TestRecordSaleConcurrentLastUnits(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)
	seedStock(t, db, locID, "SKU-A", 2, 25)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = RecordSale(db, locID, []LineItem{{SKU: "SKU-A", Quantity: 2}}, "Müşteri", "", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	rec, err := stock.GetRecord(db, "SKU-A", locID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDailyHistory(t *testing.T) {
	db := testdb.New(t)
	locID := newFranchise(t, db)

	day1 := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 3, 9, 30, 0, 0, time.UTC)

	for _, s := range []models.Sale{
		{LocationID: locID, CustomerName: "A", Total: 50, Date: day1,
			Items: []models.SaleItem{{SKU: "SKU-A", ItemName: "Ürün", Quantity: 2, UnitPrice: 25}}},
		{LocationID: locID, CustomerName: "B", Total: 75, Date: day1,
			Items: []models.SaleItem{{SKU: "SKU-A", ItemName: "Ürün", Quantity: 3, UnitPrice: 25}}},
		{LocationID: locID, CustomerName: "C", Total: 25, Date: day2,
			Items: []models.SaleItem{{SKU: "SKU-A", ItemName: "Ürün", Quantity: 1, UnitPrice: 25}}},
		{LocationID: locID, CustomerName: "D", Total: 10, Date: day2,
			Items: []models.SaleItem{{SKU: "SKU-B", ItemName: "Diğer", Quantity: 1, UnitPrice: 10}}},
	} {
		sale := s
		require.NoError(t, db.Create(&sale).Error)
	}

	points, err := DailyHistory(db, "SKU-A", &locID)
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Aynı günün satışları toplanır, sıra tarihe göre artan
	assert.Equal(t, HistoryPoint{Date: "2026-08-01", Quantity: 5}, points[0])
	assert.Equal(t, HistoryPoint{Date: "2026-08-03", Quantity: 1}, points[1])
}
