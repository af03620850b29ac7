package testdb

import (
	"fmt"
	"strings"
	"testing"

	"bayi-backend/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New: Her test için izole bir in-memory sqlite açar, şemayı kurar ve
// global database.DB'yi ona bağlar. Migrate merkez depoyu da oluşturduğu
// için database.WarehouseID testlerde de dolu olur.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	// Tek bağlantı: in-memory veritabanı bağlantı başına ayrışmasın,
	// eşzamanlı yazmalar tek yazıcıda sıralansın
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration başarısız: %v", err)
	}

	database.DB = db
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
