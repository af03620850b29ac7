package customers

import (
	"errors"

	"bayi-backend/internal/database"
	"bayi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func toResponse(cust *models.Customer) CustomerResponse {
	phone := ""
	if cust.Phone != nil {
		phone = *cust.Phone
	}
	return CustomerResponse{
		ID:        cust.ID,
		Name:      cust.Name,
		Phone:     phone,
		Email:     cust.Email,
		CreatedAt: cust.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/customers?phone=555-1234
// Telefon verilirse nokta sorgu, verilmezse liste.
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if phone := c.Query("phone"); phone != "" {
			cust, err := FindByPhone(database.DB, phone)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Bu telefonla kayıtlı müşteri yok")
				}
				return fiber.NewError(fiber.StatusInternalServerError, "Müşteri sorgulanamadı")
			}
			return c.JSON(toResponse(cust))
		}

		var custs []models.Customer
		if err := database.DB.Order("created_at DESC").Limit(200).Find(&custs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		res := make([]CustomerResponse, 0, len(custs))
		for i := range custs {
			res = append(res, toResponse(&custs[i]))
		}
		return c.JSON(res)
	}
}
