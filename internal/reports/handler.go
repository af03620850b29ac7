package reports

import (
	"strconv"

	"bayi-backend/internal/auth"
	"bayi-backend/internal/config"
	"bayi-backend/internal/database"
	"bayi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LowStockItemResponse struct {
	SKU        string `json:"sku"`
	LocationID uint   `json:"location_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
}

// resolveScope: Bayi kendi lokasyonuna sabitlenir; admin location_id verebilir
// veya boş bırakıp tüm lokasyonları kapsar.
func resolveScope(c *fiber.Ctx) ([]uint, error) {
	_, role, ownLocationID, err := auth.UserFromContext(c)
	if err != nil {
		return nil, err
	}

	if role == models.RoleFranchise {
		if ownLocationID == nil {
			return nil, fiber.NewError(fiber.StatusForbidden, "Bayi kullanıcısının lokasyon bilgisi yok")
		}
		return []uint{*ownLocationID}, nil
	}

	if locStr := c.Query("location_id"); locStr != "" {
		locID, perr := strconv.ParseUint(locStr, 10, 32)
		if perr != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Geçersiz location_id")
		}
		return []uint{uint(locID)}, nil
	}
	return nil, nil
}

// GET /api/reports/summary?location_id=2
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := resolveScope(c)
		if err != nil {
			return err
		}

		summary, err := GetSummary(database.DB, scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		return c.JSON(summary)
	}
}

// GET /api/reports/low-stock?threshold=10&location_id=2
func LowStockHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := resolveScope(c)
		if err != nil {
			return err
		}

		threshold := cfg.LowStockThreshold
		if thStr := c.Query("threshold"); thStr != "" {
			th, perr := strconv.Atoi(thStr)
			if perr != nil || th < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz threshold")
			}
			threshold = th
		}

		records, err := LowStock(database.DB, scope, threshold)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Düşük stok listesi alınamadı")
		}

		res := make([]LowStockItemResponse, 0, len(records))
		for _, r := range records {
			res = append(res, LowStockItemResponse{
				SKU:        r.SKU,
				LocationID: r.LocationID,
				ItemName:   r.ItemName,
				Quantity:   r.Quantity,
			})
		}
		return c.JSON(res)
	}
}
