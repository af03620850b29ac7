package sales

import (
	"errors"
	"fmt"
	"strconv"

	"bayi-backend/internal/audit"
	"bayi-backend/internal/auth"
	"bayi-backend/internal/database"
	"bayi-backend/internal/models"
	"bayi-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
)

type CreateSaleRequest struct {
	Items         []LineItem `json:"items"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerEmail string     `json:"customer_email"`
	LocationID    *uint      `json:"location_id"` // admin için
}

type SaleItemResponse struct {
	SKU       string  `json:"sku"`
	ItemName  string  `json:"item_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type SaleResponse struct {
	ID           uint               `json:"id"`
	LocationID   uint               `json:"location_id"`
	CustomerID   *uint              `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	Total        float64            `json:"total"`
	Date         string             `json:"date"`
	Items        []SaleItemResponse `json:"items"`
}

func toResponse(s *models.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			SKU:       it.SKU,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.UnitPrice * float64(it.Quantity),
		})
	}
	return SaleResponse{
		ID:           s.ID,
		LocationID:   s.LocationID,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		Total:        s.Total,
		Date:         s.Date.Format("2006-01-02 15:04:05"),
		Items:        items,
	}
}

// POST /api/sales
// Bayi kendi lokasyonuna satış yapar; admin location_id verebilir.
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		locationID, err := auth.ResolveLocationID(c, body.LocationID)
		if err != nil {
			return err
		}

		sale, err := RecordSale(database.DB, locationID, body.Items, body.CustomerName, body.CustomerPhone, body.CustomerEmail)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				return fiber.NewError(fiber.StatusBadRequest, vErr.Msg)
			}
			var insErr *stock.InsufficientStockError
			if errors.As(err, &insErr) {
				return fiber.NewError(fiber.StatusConflict, insErr.Error())
			}
			if errors.Is(err, ErrConcurrentStockConflict) {
				return fiber.NewError(fiber.StatusConflict, "Eşzamanlı stok çakışması, lütfen tekrar deneyin")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydedilemedi")
		}

		userID, _, _, aerr := auth.UserFromContext(c)
		if aerr == nil {
			var user models.User
			if database.DB.First(&user, "id = ?", userID).Error == nil {
				_ = audit.WriteLog(audit.LogOptions{
					LocationID:  &locationID,
					UserID:      userID,
					UserName:    user.Name,
					EntityType:  "sale",
					EntityID:    sale.ID,
					Action:      models.AuditActionCreate,
					Description: fmt.Sprintf("Satış: %d kalem, toplam %.2f", len(sale.Items), sale.Total),
					After:       sale,
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(sale))
	}
}

// GET /api/sales?location_id=2&limit=50
// Tahmin servisi ve geçmiş ekranları için satış listesi.
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, ownLocationID, err := auth.UserFromContext(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Sale{}).Preload("Items")

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

		limit := 100
		if limStr := c.Query("limit"); limStr != "" {
			if n, perr := strconv.Atoi(limStr); perr == nil && n > 0 && n <= 500 {
				limit = n
			}
		}

		var salesList []models.Sale
		if err := dbq.Order("date DESC").Limit(limit).Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		res := make([]SaleResponse, 0, len(salesList))
		for i := range salesList {
			res = append(res, toResponse(&salesList[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/sales/history?sku=SKU-001234&location_id=2
// SKU bazlı günlük satış serisi (ds/y formatı).
func SalesHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sku := c.Query("sku")
		if sku == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sku parametresi zorunlu")
		}

		_, role, ownLocationID, err := auth.UserFromContext(c)
		if err != nil {
			return err
		}

		var locationID *uint
		if role == models.RoleFranchise {
			locationID = ownLocationID
		} else if locStr := c.Query("location_id"); locStr != "" {
			locID, perr := strconv.ParseUint(locStr, 10, 32)
			if perr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz location_id")
			}
			l := uint(locID)
			locationID = &l
		}

		points, err := DailyHistory(database.DB, sku, locationID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış geçmişi alınamadı")
		}
		return c.JSON(points)
	}
}
