package sales

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"bayi-backend/internal/customers"
	"bayi-backend/internal/models"
	"bayi-backend/internal/stock"

	"gorm.io/gorm"
)

// ErrConcurrentStockConflict: Ön kontrol ile düşüm arasına başka bir satış
// girdi; düşülen kalemler geri yüklendi, net etki yok.
var ErrConcurrentStockConflict = errors.New("eşzamanlı stok çakışması, satış uygulanmadı")

// ValidationError: Bozuk girdi, hiçbir mutasyon yapılmadan reddedilir.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// LineItem: Satış isteğindeki kalem. Birim fiyat istemciden alınmaz,
// stok kaydındaki fiyat kullanılır.
type LineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Düşüm aşaması bir yarış yüzünden başarısız olursa bir kez daha denenir,
// sonra ErrConcurrentStockConflict döner.
const maxDeductAttempts = 2

// RecordSale: Çok kalemli bir satışı doğrular ve uygular.
//
// Sıra: doğrulama -> ön kontrol -> müşteri çözümleme -> kalem düşümleri ->
// satış kaydı. Ya tüm kalemler düşer ya da hiçbiri: ön kontrol toptan reddi,
// düşüm sırasında yakalanan yarışlarda telafi kredisi net-sıfırı garanti eder.
// Müşteri çözümleme stok kritik bölgesinin dışında kalır.
func RecordSale(db *gorm.DB, locationID uint, lines []LineItem, customerName, customerPhone, customerEmail string) (*models.Sale, error) {
	customerName = strings.TrimSpace(customerName)

	if len(lines) == 0 {
		return nil, &ValidationError{Msg: "satış en az bir kalem içermeli"}
	}
	if customerName == "" {
		return nil, &ValidationError{Msg: "müşteri adı zorunlu"}
	}
	for _, line := range lines {
		if strings.TrimSpace(line.SKU) == "" {
			return nil, &ValidationError{Msg: "kalem SKU'su boş olamaz"}
		}
		if line.Quantity <= 0 {
			return nil, &ValidationError{Msg: fmt.Sprintf("geçersiz miktar: %s için %d", line.SKU, line.Quantity)}
		}
	}

	var cust *models.Customer

	for attempt := 0; attempt < maxDeductAttempts; attempt++ {
		// Ön kontrol: her kalem için güncel kayıt okunur. Yetersiz veya
		// eksik kayıt varsa hiçbir şey düşülmeden reddedilir.
		saleItems := make([]models.SaleItem, 0, len(lines))
		var total float64
		for _, line := range lines {
			rec, err := stock.GetRecord(db, line.SKU, locationID)
			if err != nil {
				if errors.Is(err, stock.ErrRecordNotFound) {
					return nil, &stock.InsufficientStockError{SKU: line.SKU, Available: 0, Requested: line.Quantity}
				}
				return nil, err
			}
			if rec.Quantity < line.Quantity {
				return nil, &stock.InsufficientStockError{SKU: line.SKU, Available: rec.Quantity, Requested: line.Quantity}
			}
			saleItems = append(saleItems, models.SaleItem{
				SKU:       line.SKU,
				ItemName:  rec.ItemName,
				Quantity:  line.Quantity,
				UnitPrice: rec.UnitPrice,
			})
			total += rec.UnitPrice * float64(line.Quantity)
		}

		// Müşteri ancak ön kontrol geçtikten sonra çözümlenir: reddedilen
		// satış müşteri satırı dahil hiçbir iz bırakmaz. Çözümleme yine
		// stok kritik bölgesinin dışındadır.
		if cust == nil {
			resolved, err := customers.FindOrCreate(db, customerName, customerPhone, customerEmail)
			if err != nil {
				return nil, fmt.Errorf("müşteri çözümlenemedi: %w", err)
			}
			cust = resolved
		}

		// Düşüm: ön kontrol geçti ama araya eşzamanlı bir düşüm girmiş
		// olabilir; koşullu UPDATE bunu yakalar.
		deducted := make([]LineItem, 0, len(lines))
		raced := false
		for _, line := range lines {
			if _, err := stock.AdjustQuantity(db, line.SKU, locationID, -line.Quantity); err != nil {
				compensate(db, locationID, deducted)
				var ins *stock.InsufficientStockError
				if errors.As(err, &ins) {
					raced = true
					break
				}
				return nil, err
			}
			deducted = append(deducted, line)
		}
		if raced {
			continue
		}

		sale := models.Sale{
			LocationID:   locationID,
			CustomerID:   &cust.ID,
			CustomerName: cust.Name,
			Total:        total,
			Date:         time.Now(),
			Items:        saleItems,
		}
		if err := db.Create(&sale).Error; err != nil {
			// Satış kaydı yazılamadıysa düşümler karşılıksız kalamaz
			compensate(db, locationID, deducted)
			return nil, fmt.Errorf("satış kaydedilemedi: %w", err)
		}
		return &sale, nil
	}

	return nil, ErrConcurrentStockConflict
}

// compensate: Yarım kalmış düşümleri geri yükler. Pozitif kredi yetersiz
// stoğa takılamaz; kayıt bu arada kaldırıldıysa sadece loglanır, miktar
// sahipliği yine stok kayıtlarında kalır.
func compensate(db *gorm.DB, locationID uint, deducted []LineItem) {
	for _, line := range deducted {
		if _, err := stock.AdjustQuantity(db, line.SKU, locationID, line.Quantity); err != nil {
			log.Printf("[WARN] Telafi kredisi uygulanamadı: %s @ lokasyon %d, +%d: %v", line.SKU, locationID, line.Quantity, err)
		}
	}
}

// HistoryPoint: Tahmin servisinin beklediği günlük seri noktası.
type HistoryPoint struct {
	Date     string `json:"ds"`
	Quantity int    `json:"y"`
}

// DailyHistory: Bir SKU'nun günlük toplam satış adetleri, tarihe göre artan.
// Tahmin servisi bu seriyi eğitim verisi olarak kullanır.
func DailyHistory(db *gorm.DB, sku string, locationID *uint) ([]HistoryPoint, error) {
	type row struct {
		Date     time.Time
		Quantity int
	}

	dbq := db.Model(&models.SaleItem{}).
		Select("sales.date AS date, sale_items.quantity AS quantity").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sale_items.sku = ?", sku)
	if locationID != nil {
		dbq = dbq.Where("sales.location_id = ?", *locationID)
	}

	var rows []row
	if err := dbq.Find(&rows).Error; err != nil {
		return nil, err
	}

	// Gün bazında toplama veritabanından bağımsız olsun diye burada yapılır
	byDay := make(map[string]int)
	for _, r := range rows {
		byDay[r.Date.Format("2006-01-02")] += r.Quantity
	}

	points := make([]HistoryPoint, 0, len(byDay))
	for day, qty := range byDay {
		points = append(points, HistoryPoint{Date: day, Quantity: qty})
	}
	// Tarih formatı sabit (YYYY-MM-DD) olduğu için string sırası yeterli
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}
