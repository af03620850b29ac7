package stock

import (
	"errors"
	"fmt"

	"bayi-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRecordNotFound: (sku, lokasyon) için stok kaydı yok.
	ErrRecordNotFound = errors.New("stok kaydı bulunamadı")
	// ErrRecordExists: Aynı (sku, lokasyon) için ikinci kayıt açılamaz.
	ErrRecordExists = errors.New("bu SKU için bu lokasyonda zaten stok kaydı var")
)

// InsufficientStockError: Düşüm mevcut miktarı aşıyor.
type InsufficientStockError struct {
	SKU       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("yetersiz stok: %s (mevcut %d, istenen %d)", e.SKU, e.Available, e.Requested)
}

// RecordAttrs: CreateRecord için statik ürün bilgileri.
type RecordAttrs struct {
	ItemName    string
	Category    string
	UnitPrice   float64
	Quantity    int
	Description string
}

// GetRecord: Nokta sorgu, yan etkisiz.
func GetRecord(db *gorm.DB, sku string, locationID uint) (*models.StockRecord, error) {
	var rec models.StockRecord
	err := db.Where("sku = ? AND location_id = ?", sku, locationID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// AdjustQuantity: Miktarı delta kadar değiştirir (pozitif veya negatif).
// Tek bir koşullu UPDATE ile çalışır: satır ancak sonuç negatife düşmüyorsa
// güncellenir, yeni miktar RETURNING ile aynı ifadeden okunur. "Oku sonra
// düş" deseninin yarışları bu sayede satır düzeyinde sıralanır; miktar
// hiçbir zaman negatif olamaz ve dönen değer tam olarak bu çağrının
// sonucudur. Başarısız bir çağrının tekrar denenmesi güvenlidir çünkü her
// deneme güncel durumdan hesaplar.
func AdjustQuantity(db *gorm.DB, sku string, locationID uint, delta int) (int, error) {
	var rec models.StockRecord
	res := db.Model(&rec).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("sku = ? AND location_id = ? AND quantity + ? >= 0", sku, locationID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		// Kayıt mı yok, stok mu yetersiz? Ayırt etmek için tekrar oku.
		cur, err := GetRecord(db, sku, locationID)
		if err != nil {
			return 0, err
		}
		return cur.Quantity, &InsufficientStockError{
			SKU:       sku,
			Available: cur.Quantity,
			Requested: -delta,
		}
	}

	return rec.Quantity, nil
}

// CreateRecord: Bir lokasyon daha önce hiç tutmadığı bir ürünü teslim aldığında
// kullanılır. Kayıt zaten varsa çağıran AdjustQuantity'ye yönlendirilmelidir.
// Daha önce soft delete edilmiş bir kayıt varsa aynı satır yeni değerlerle
// geri açılır (unique index kalıcı silmeye izin vermez).
func CreateRecord(db *gorm.DB, sku string, locationID uint, attrs RecordAttrs) (*models.StockRecord, error) {
	if attrs.Quantity < 0 {
		return nil, fmt.Errorf("başlangıç miktarı negatif olamaz: %d", attrs.Quantity)
	}

	var existing models.StockRecord
	err := db.Unscoped().Where("sku = ? AND location_id = ?", sku, locationID).First(&existing).Error
	if err == nil {
		if !existing.DeletedAt.Valid {
			return nil, ErrRecordExists
		}
		// Kaldırılmış kayıt: yeni değerlerle geri aç
		existing.DeletedAt = gorm.DeletedAt{}
		existing.ItemName = attrs.ItemName
		existing.Category = attrs.Category
		existing.UnitPrice = attrs.UnitPrice
		existing.Quantity = attrs.Quantity
		existing.Description = attrs.Description
		if err := db.Unscoped().Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec := models.StockRecord{
		SKU:         sku,
		LocationID:  locationID,
		ItemName:    attrs.ItemName,
		Category:    attrs.Category,
		UnitPrice:   attrs.UnitPrice,
		Quantity:    attrs.Quantity,
		Description: attrs.Description,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// RemoveRecord: Soft delete. Geçmiş satışlar SKU üzerinden referans verdiği
// için kayıt kalıcı olarak silinmez.
func RemoveRecord(db *gorm.DB, sku string, locationID uint) error {
	res := db.Where("sku = ? AND location_id = ?", sku, locationID).Delete(&models.StockRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
