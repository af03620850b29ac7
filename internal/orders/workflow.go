package orders

import (
	"errors"
	"fmt"
	"strings"

	"bayi-backend/internal/database"
	"bayi-backend/internal/models"
	"bayi-backend/internal/stock"

	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("sipariş bulunamadı")

// NotPendingError: Terminal durumdaki siparişe ikinci bir karar verilemez;
// sessiz başarı değil, açık hata.
type NotPendingError struct {
	Status models.StockOrderStatus
}

func (e *NotPendingError) Error() string {
	return fmt.Sprintf("sipariş zaten sonuçlandırılmış (durum: %s)", e.Status)
}

// ValidationError: Bozuk sipariş girdisi.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// LineItem: Talep kalemi.
type LineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// LineResult: Onay sonrası her kalemin yapısal sonucu.
type LineResult struct {
	SKU      string                       `json:"sku"`
	ItemName string                       `json:"item_name"`
	Quantity int                          `json:"quantity"`
	Outcome  models.StockOrderItemOutcome `json:"outcome"`
}

// CreateOrder: Bayi talebini pending durumda açar. Depo stoğu bu aşamada
// kontrol edilmez; talep ile karar arasında stok değişebileceği için
// kontrol onay anında yapılır.
func CreateOrder(db *gorm.DB, locationID uint, lines []LineItem, notes string) (*models.StockOrder, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Msg: "sipariş en az bir kalem içermeli"}
	}
	for _, line := range lines {
		if strings.TrimSpace(line.SKU) == "" {
			return nil, &ValidationError{Msg: "kalem SKU'su boş olamaz"}
		}
		if line.Quantity <= 0 {
			return nil, &ValidationError{Msg: fmt.Sprintf("geçersiz miktar: %s için %d", line.SKU, line.Quantity)}
		}
	}

	var loc models.Location
	if err := db.First(&loc, "id = ?", locationID).Error; err != nil {
		return nil, fmt.Errorf("lokasyon bulunamadı (ID: %d)", locationID)
	}

	items := make([]models.StockOrderItem, 0, len(lines))
	for _, line := range lines {
		// Ürün adı depo kaydından alınır; depo hiç tutmuyorsa SKU bilinmiyor demektir
		rec, err := stock.GetRecord(db, line.SKU, database.WarehouseID)
		if err != nil {
			if errors.Is(err, stock.ErrRecordNotFound) {
				return nil, &ValidationError{Msg: fmt.Sprintf("bilinmeyen SKU: %s", line.SKU)}
			}
			return nil, err
		}
		items = append(items, models.StockOrderItem{
			SKU:      line.SKU,
			ItemName: rec.ItemName,
			Quantity: line.Quantity,
		})
	}

	order := models.StockOrder{
		LocationID:   locationID,
		LocationName: loc.Name,
		Status:       models.OrderPending,
		Notes:        strings.TrimSpace(notes),
		Items:        items,
	}
	if err := db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Reject: pending -> rejected. Stok üzerinde yan etkisi yok.
// Koşullu UPDATE aynı siparişe eşzamanlı iki kararı engeller.
func Reject(db *gorm.DB, orderID uint) (*models.StockOrder, error) {
	res := db.Model(&models.StockOrder{}).
		Where("id = ? AND status = ?", orderID, models.OrderPending).
		Update("status", models.OrderRejected)
	if res.Error != nil {
		return nil, res.Error
	}

	var order models.StockOrder
	if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if res.RowsAffected == 0 {
		return nil, &NotPendingError{Status: order.Status}
	}
	return &order, nil
}

// Approve: pending -> approved. Her kalem için depo stoğu okunur; yetersizse
// kalem atlanır (skipped_insufficient_stock), yeterliyse depodan düşülüp
// bayiye eklenir (kayıt yoksa deponun statik ürün bilgileriyle açılır).
// Kalem sonuçları yazıldıktan SONRA durum approved'a çekilir; son UPDATE
// status = pending koşuluna bağlıdır, araya başka bir karar girdiyse tüm
// transaction geri alınır.
func Approve(db *gorm.DB, orderID uint) (*models.StockOrder, []LineResult, error) {
	var order models.StockOrder
	var results []LineResult

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status != models.OrderPending {
			return &NotPendingError{Status: order.Status}
		}

		warehouseID := database.WarehouseID

		for i := range order.Items {
			item := &order.Items[i]

			wrec, err := stock.GetRecord(tx, item.SKU, warehouseID)
			if err != nil && !errors.Is(err, stock.ErrRecordNotFound) {
				return err
			}

			if err != nil || wrec.Quantity < item.Quantity {
				item.Outcome = models.OutcomeSkippedInsufficientStock
			} else if _, err := stock.AdjustQuantity(tx, item.SKU, warehouseID, -item.Quantity); err != nil {
				// Okuma ile düşüm arasında depo stoğu eridi: kalem atlanır
				var ins *stock.InsufficientStockError
				if !errors.As(err, &ins) {
					return err
				}
				item.Outcome = models.OutcomeSkippedInsufficientStock
			} else {
				if _, err := stock.GetRecord(tx, item.SKU, order.LocationID); err == nil {
					if _, err := stock.AdjustQuantity(tx, item.SKU, order.LocationID, item.Quantity); err != nil {
						return err
					}
				} else if errors.Is(err, stock.ErrRecordNotFound) {
					// İlk transfer: bayi kaydı deponun statik bilgileriyle açılır
					if _, err := stock.CreateRecord(tx, item.SKU, order.LocationID, stock.RecordAttrs{
						ItemName:    wrec.ItemName,
						Category:    wrec.Category,
						UnitPrice:   wrec.UnitPrice,
						Quantity:    item.Quantity,
						Description: wrec.Description,
					}); err != nil {
						return err
					}
				} else {
					return err
				}
				item.Outcome = models.OutcomeTransferred
			}

			if err := tx.Model(&models.StockOrderItem{}).
				Where("id = ?", item.ID).
				Update("outcome", item.Outcome).Error; err != nil {
				return err
			}

			results = append(results, LineResult{
				SKU:      item.SKU,
				ItemName: item.ItemName,
				Quantity: item.Quantity,
				Outcome:  item.Outcome,
			})
		}

		res := tx.Model(&models.StockOrder{}).
			Where("id = ? AND status = ?", orderID, models.OrderPending).
			Update("status", models.OrderApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Eşzamanlı karar kazandı; rollback tüm kalem hareketlerini geri
			// alır. Hata, bellekteki bayat durumu değil gerçekte yazılmış
			// durumu bildirmeli.
			var current models.StockOrder
			if err := tx.Select("status").First(&current, "id = ?", orderID).Error; err != nil {
				return err
			}
			return &NotPendingError{Status: current.Status}
		}

		order.Status = models.OrderApproved
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &order, results, nil
}
