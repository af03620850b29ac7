package reports

import (
	"bayi-backend/internal/models"

	"gorm.io/gorm"
)

// Summary: Bir lokasyon kümesi için anlık stok özeti.
// Her çağrı doğrudan stok kayıtlarından hesaplanır, ara bellek yok;
// bu sayılar operasyonel kararları beslediği için bayatlamaya tolerans yok.
type Summary struct {
	ItemCount     int64   `json:"item_count"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

func GetSummary(db *gorm.DB, locationIDs []uint) (*Summary, error) {
	dbq := db.Model(&models.StockRecord{})
	if len(locationIDs) > 0 {
		dbq = dbq.Where("location_id IN ?", locationIDs)
	}

	var result struct {
		ItemCount     int64
		TotalQuantity int64
		TotalValue    float64
	}
	err := dbq.
		Select("COUNT(*) AS item_count, COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(quantity * unit_price), 0) AS total_value").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &Summary{
		ItemCount:     result.ItemCount,
		TotalQuantity: result.TotalQuantity,
		TotalValue:    result.TotalValue,
	}, nil
}

// LowStock: Eşiğin altındaki (quantity <= threshold) kayıtlar, azdan çoğa.
func LowStock(db *gorm.DB, locationIDs []uint, threshold int) ([]models.StockRecord, error) {
	dbq := db.Model(&models.StockRecord{}).Where("quantity <= ?", threshold)
	if len(locationIDs) > 0 {
		dbq = dbq.Where("location_id IN ?", locationIDs)
	}

	var records []models.StockRecord
	if err := dbq.Order("quantity asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
