package auth

import (
	"strconv"

	"bayi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserFromContext: Middleware'in koyduğu kimlik bilgilerini çözer.
func UserFromContext(c *fiber.Ctx) (uint, models.UserRole, *uint, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
	}

	var locationID *uint
	if lPtr, ok := c.Locals(CtxLocationIDKey).(*uint); ok && lPtr != nil {
		locationID = lPtr
	}

	return userID, role, locationID, nil
}

// ResolveLocationID: Operasyonun hedef lokasyonunu belirler.
// Bayi kullanıcısı her zaman kendi lokasyonuna sabitlenir; admin için
// body'den gelen lokasyon ya da ?location_id query parametresi kullanılır.
func ResolveLocationID(c *fiber.Ctx, bodyLocationID *uint) (uint, error) {
	_, role, ownLocationID, err := UserFromContext(c)
	if err != nil {
		return 0, err
	}

	if role == models.RoleFranchise {
		if ownLocationID == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Bayi kullanıcısının lokasyon bilgisi yok")
		}
		return *ownLocationID, nil
	}

	// Admin
	if bodyLocationID != nil && *bodyLocationID > 0 {
		return *bodyLocationID, nil
	}
	locStr := c.Query("location_id")
	if locStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Admin için location_id gerekli")
	}
	locID, err2 := strconv.ParseUint(locStr, 10, 32)
	if err2 != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz location_id")
	}
	return uint(locID), nil
}
