package forecast

import (
	"strconv"

	"bayi-backend/internal/auth"
	"bayi-backend/internal/database"
	"bayi-backend/internal/models"
	"bayi-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
)

// GET /api/forecast/:sku?periods=30&location_id=2
// Satış geçmişinden seri çıkarır, tahmini harici servise yaptırır.
func ForecastHandler(client *Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sku := c.Params("sku")
		if sku == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sku zorunlu")
		}

		periods := 90
		if pStr := c.Query("periods"); pStr != "" {
			p, err := strconv.Atoi(pStr)
			if err != nil || p <= 0 || p > 365 {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz periods (1-365)")
			}
			periods = p
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

		series, err := sales.DailyHistory(database.DB, sku, locationID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış geçmişi alınamadı")
		}
		if len(series) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "Tahmin için en az 2 günlük satış verisi gerekli")
		}

		points, err := client.Forecast(c.Context(), series, periods)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		return c.JSON(fiber.Map{
			"sku":             sku,
			"training_points": len(series),
			"forecast":        points,
		})
	}
}
