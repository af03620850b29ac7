package stock

import (
	"errors"
	"fmt"
	"strconv"

	"bayi-backend/internal/audit"
	"bayi-backend/internal/auth"
	"bayi-backend/internal/database"
	"bayi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StockRecordResponse struct {
	ID          uint    `json:"id"`
	SKU         string  `json:"sku"`
	LocationID  uint    `json:"location_id"`
	ItemName    string  `json:"item_name"`
	Category    string  `json:"category"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type CreateStockRecordRequest struct {
	SKU         string  `json:"sku"`
	LocationID  *uint   `json:"location_id"` // boşsa merkez depo
	ItemName    string  `json:"item_name"`
	Category    string  `json:"category"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
}

type UpdateStockRecordRequest struct {
	ItemName    *string  `json:"item_name"`
	Category    *string  `json:"category"`
	UnitPrice   *float64 `json:"unit_price"`
	Description *string  `json:"description"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func toResponse(r *models.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:          r.ID,
		SKU:         r.SKU,
		LocationID:  r.LocationID,
		ItemName:    r.ItemName,
		Category:    r.Category,
		UnitPrice:   r.UnitPrice,
		Quantity:    r.Quantity,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/stock?location_id=2
// Bayi kullanıcısı sadece kendi lokasyonunu görür; admin location_id verebilir,
// vermezse tüm lokasyonlar döner.
func ListStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, ownLocationID, err := auth.UserFromContext(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.StockRecord{})

		if role == models.RoleFranchise {
			if ownLocationID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Bayi kullanıcısının lokasyon bilgisi yok")
			}
			dbq = dbq.Where("location_id = ?", *ownLocationID)
		} else if locStr := c.Query("location_id"); locStr != "" {
			locID, perr := strconv.ParseUint(locStr, 10, 32)
			if perr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz location_id")
			}
			dbq = dbq.Where("location_id = ?", uint(locID))
		}

		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}

		var records []models.StockRecord
		if err := dbq.Order("item_name asc").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kayıtları listelenemedi")
		}

		res := make([]StockRecordResponse, 0, len(records))
		for i := range records {
			res = append(res, toResponse(&records[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/stock (sadece admin)
// Bir lokasyonun ilk kez tutacağı ürün için kayıt açar.
func CreateStockRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SKU == "" || body.ItemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sku ve item_name zorunlu")
		}
		if body.Quantity < 0 || body.UnitPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity ve unit_price negatif olamaz")
		}

		locationID := database.WarehouseID
		if body.LocationID != nil && *body.LocationID > 0 {
			var loc models.Location
			if err := database.DB.First(&loc, "id = ?", *body.LocationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Lokasyon bulunamadı (ID: %d)", *body.LocationID))
			}
			locationID = loc.ID
		}

		rec, err := CreateRecord(database.DB, body.SKU, locationID, RecordAttrs{
			ItemName:    body.ItemName,
			Category:    body.Category,
			UnitPrice:   body.UnitPrice,
			Quantity:    body.Quantity,
			Description: body.Description,
		})
		if err != nil {
			if errors.Is(err, ErrRecordExists) {
				return fiber.NewError(fiber.StatusConflict, "Bu SKU için bu lokasyonda zaten kayıt var, miktar düzeltmesi kullanın")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı oluşturulamadı")
		}

		userID, userName, err := auditUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &locationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Stok kaydı açıldı: %s @ lokasyon %d, %d adet", rec.SKU, locationID, rec.Quantity),
				After:       rec,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(rec))
	}
}

// PUT /api/admin/stock/:id (sadece admin)
// Statik ürün bilgilerini günceller; miktar buradan değiştirilemez.
func UpdateStockRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var rec models.StockRecord
		if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
		}
		before := rec

		var body UpdateStockRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ItemName != nil {
			if *body.ItemName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			rec.ItemName = *body.ItemName
		}
		if body.Category != nil {
			rec.Category = *body.Category
		}
		if body.UnitPrice != nil {
			if *body.UnitPrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "unit_price negatif olamaz")
			}
			rec.UnitPrice = *body.UnitPrice
		}
		if body.Description != nil {
			rec.Description = *body.Description
		}

		if err := database.DB.Save(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı güncellenemedi")
		}

		userID, userName, err := auditUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &rec.LocationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Stok kaydı güncellendi: %s", rec.SKU),
				Before:      before,
				After:       rec,
			})
		}

		return c.JSON(toResponse(&rec))
	}
}

// POST /api/admin/stock/:id/adjust (sadece admin)
// Manuel miktar düzeltmesi (sayım farkı, fire vb.). Denetim kaydına yazılır
// ve audit üzerinden geri alınabilir.
func AdjustStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var rec models.StockRecord
		if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
		}
		before := rec

		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "delta sıfır olamaz")
		}

		newQty, err := AdjustQuantity(database.DB, rec.SKU, rec.LocationID, body.Delta)
		if err != nil {
			var ins *InsufficientStockError
			if errors.As(err, &ins) {
				return fiber.NewError(fiber.StatusConflict, ins.Error())
			}
			if errors.Is(err, ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Miktar güncellenemedi")
		}
		rec.Quantity = newQty

		userID, userName, err := auditUserInfo(c)
		if err == nil {
			desc := fmt.Sprintf("Manuel düzeltme: %s, %+d adet (yeni: %d)", rec.SKU, body.Delta, newQty)
			if body.Reason != "" {
				desc = desc + " - " + body.Reason
			}
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &rec.LocationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionUpdate,
				Description: desc,
				Before:      before,
				After:       rec,
			})
		}

		return c.JSON(toResponse(&rec))
	}
}

// DELETE /api/admin/stock/:id (sadece admin, soft delete)
func RemoveStockRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var rec models.StockRecord
		if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kaydı bulunamadı")
		}

		if err := RemoveRecord(database.DB, rec.SKU, rec.LocationID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı kaldırılamadı")
		}

		userID, userName, err := auditUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &rec.LocationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Stok kaydı kaldırıldı: %s", rec.SKU),
				Before:      rec,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// auditUserInfo: Denetim kaydı için kullanıcı adı lazım, context'te sadece ID var.
func auditUserInfo(c *fiber.Ctx) (uint, string, error) {
	userID, _, _, err := auth.UserFromContext(c)
	if err != nil {
		return 0, "", err
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", err
	}
	return userID, user.Name, nil
}
