package models

import (
	"time"

	"gorm.io/gorm"
)

// StockRecord: Bir SKU'nun tek bir lokasyondaki miktar kaydı.
// Miktarın tek sahibi bu tablodur; satışlar ve transferler buradan düşer/ekler.
// Quantity hiçbir zaman negatife düşemez (koşullu UPDATE ile garanti edilir).
type StockRecord struct {
	ID          uint   `gorm:"primaryKey"`
	SKU         string `gorm:"size:50;not null;uniqueIndex:idx_sku_location"`
	LocationID  uint   `gorm:"not null;uniqueIndex:idx_sku_location;index"`
	Location    Location
	ItemName    string  `gorm:"size:100;not null"`
	Category    string  `gorm:"size:50"`
	UnitPrice   float64 `gorm:"not null"`
	Quantity    int     `gorm:"not null;default:0"`
	Description string  `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Geçmiş satışlar bu kayda SKU üzerinden referans verdiği için
	// kalıcı silme yok, sadece soft delete.
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
