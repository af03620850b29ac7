package models

import "time"

type StockOrderStatus string

const (
	OrderPending  StockOrderStatus = "pending"
	OrderApproved StockOrderStatus = "approved"
	OrderRejected StockOrderStatus = "rejected"
)

// StockOrderItemOutcome: Onay sırasında her kalem için kaydedilen sonuç.
type StockOrderItemOutcome string

const (
	OutcomeTransferred              StockOrderItemOutcome = "transferred"
	OutcomeSkippedInsufficientStock StockOrderItemOutcome = "skipped_insufficient_stock"
)

// StockOrder: Bayinin merkez depodan stok talebi.
// pending -> approved veya pending -> rejected; terminal durumdan geri dönüş yok.
type StockOrder struct {
	ID         uint `gorm:"primaryKey"`
	LocationID uint `gorm:"index;not null"`
	Location   Location
	// Talep anındaki bayi adı (denormalize)
	LocationName string           `gorm:"size:100"`
	Status       StockOrderStatus `gorm:"size:20;not null;index;default:pending"`
	Notes        string           `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []StockOrderItem `gorm:"foreignKey:StockOrderID;constraint:OnDelete:CASCADE"`
}

// StockOrderItem: Talepteki her kalem. Kalemler oluşturulduktan sonra
// değiştirilmez; onayda sadece Outcome alanı doldurulur.
type StockOrderItem struct {
	ID           uint   `gorm:"primaryKey"`
	StockOrderID uint   `gorm:"index;not null"`
	SKU          string `gorm:"size:50;not null"`
	ItemName     string `gorm:"size:100;not null"`
	Quantity     int    `gorm:"not null"`
	Outcome      StockOrderItemOutcome `gorm:"size:40"` // onaya kadar boş
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
