package database

import (
	"errors"
	"log"

	"bayi-backend/internal/config"
	"bayi-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// WarehouseID: Merkez depo lokasyonunun ID'si. Init/Migrate sonrasında dolu.
var WarehouseID uint

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tabloları kurar ve merkez depo kaydını garanti eder.
// Testler bunu sqlite üzerinde de çağırır.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.StockRecord{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.StockOrder{},
		&models.StockOrderItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	// Tek merkez depo: yoksa oluştur, varsa ID'sini sakla
	var warehouse models.Location
	res := db.Where("type = ?", models.LocationWarehouse).First(&warehouse)
	if res.Error != nil {
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		warehouse = models.Location{
			Name: "Merkez Depo",
			Type: models.LocationWarehouse,
		}
		if err := db.Create(&warehouse).Error; err != nil {
			return err
		}
		log.Println("Merkez depo kaydı oluşturuldu.")
	}
	WarehouseID = warehouse.ID

	return nil
}
