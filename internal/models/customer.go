package models

import "time"

// Customer: Telefon numarası doğal tekilleştirme anahtarıdır.
// Telefon nullable tutulur ki unique index telefonsuz müşterileri engellemesin.
type Customer struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:100;not null"`
	Phone     *string `gorm:"size:50;uniqueIndex"`
	Email     string  `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
