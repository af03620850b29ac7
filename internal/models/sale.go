package models

import "time"

// Sale: Satış fişi. Hem makbuz hem de stok düşümlerinin denetim kaydı olduğu
// için oluşturulduktan sonra asla güncellenmez veya silinmez.
type Sale struct {
	ID         uint `gorm:"primaryKey"`
	LocationID uint `gorm:"index;not null"`
	Location   Location
	CustomerID *uint
	Customer   *Customer
	// Satış anındaki müşteri adı (denormalize)
	CustomerName string    `gorm:"size:100;not null"`
	Total        float64   `gorm:"not null"`
	Date         time.Time `gorm:"index;not null"`
	CreatedAt    time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// SaleItem: Satıştaki her kalem. Birim fiyat satış anındaki fiyattır,
// stok kaydı sonradan değişse bile burada sabit kalır.
type SaleItem struct {
	ID        uint    `gorm:"primaryKey"`
	SaleID    uint    `gorm:"index;not null"`
	SKU       string  `gorm:"size:50;index;not null"`
	ItemName  string  `gorm:"size:100;not null"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"`
	CreatedAt time.Time
}
