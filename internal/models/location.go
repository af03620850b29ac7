package models

import "time"

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationFranchise LocationType = "franchise"
)

// Location: Stok kaydının tutulduğu yer. Tek bir merkez depo ve bayiler.
// Depo ayrı bir "null lokasyon" değil, birinci sınıf bir kayıttır.
type Location struct {
	ID        uint         `gorm:"primaryKey"`
	Name      string       `gorm:"size:100;not null;unique"`
	Type      LocationType `gorm:"size:20;not null;default:franchise"`
	Address   string       `gorm:"size:255"`
	Phone     string       `gorm:"size:50"` // Opsiyonel telefon
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
