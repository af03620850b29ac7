package admin

import (
	"strings"

	"bayi-backend/internal/database"
	"bayi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LocationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateLocationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"` // Opsiyonel
}

type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type CreateFranchiseUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func toResponse(l *models.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Type:      string(l.Type),
		Address:   l.Address,
		Phone:     l.Phone,
		CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// BAYİ CRUD
// ----------------------------------------

// POST /api/admin/locations
// Yeni bayi açar. Merkez depo migration sırasında oluşur, buradan açılamaz.
func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Bayi adı boş olamaz")
		}

		loc := models.Location{
			Name:    body.Name,
			Type:    models.LocationFranchise,
			Address: body.Address,
		}
		if body.Phone != nil {
			loc.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bayi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&loc))
	}
}

func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var locations []models.Location
		if err := database.DB.Find(&locations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Lokasyonlar listelenemedi")
		}

		res := make([]LocationResponse, 0, len(locations))
		for i := range locations {
			res = append(res, toResponse(&locations[i]))
		}
		return c.JSON(res)
	}
}

func GetLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lokasyon bulunamadı")
		}
		return c.JSON(toResponse(&loc))
	}
}

func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lokasyon bulunamadı")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Lokasyon adı boş olamaz")
			}
			loc.Name = name
		}
		if body.Address != nil {
			loc.Address = *body.Address
		}
		if body.Phone != nil {
			loc.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Lokasyon güncellenemedi")
		}

		return c.JSON(toResponse(&loc))
	}
}

// DELETE /api/admin/locations/:id
// Depo silinemez; stok kaydı olan bayi de silinemez (miktar sahipliği kaybolur).
func DeleteLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lokasyon bulunamadı")
		}

		if loc.Type == models.LocationWarehouse {
			return fiber.NewError(fiber.StatusBadRequest, "Merkez depo silinemez")
		}

		var stockCount int64
		database.DB.Model(&models.StockRecord{}).Where("location_id = ?", loc.ID).Count(&stockCount)
		if stockCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Stok kaydı olan bayi silinemez, önce stokları kaldırın")
		}

		if err := database.DB.Delete(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bayi silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// BAYİ KULLANICISI OLUŞTURMA
// ----------------------------------------

// POST /api/admin/locations/:id/users
func CreateFranchiseUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := c.Params("id")

		var loc models.Location
		if err := database.DB.First(&loc, "id = ?", locationID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Lokasyon bulunamadı")
		}
		if loc.Type == models.LocationWarehouse {
			return fiber.NewError(fiber.StatusBadRequest, "Depoya bayi kullanıcısı açılamaz")
		}

		var body CreateFranchiseUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleFranchise,
			LocationID:   &loc.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bayi kullanıcısı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"role":        user.Role,
			"location_id": user.LocationID,
		})
	}
}

// GET /api/admin/locations/:id/users
func ListLocationUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := c.Params("id")

		var users []models.User
		if err := database.DB.
			Where("location_id = ? AND role = ?", locationID, models.RoleFranchise).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		res := make([]fiber.Map, 0, len(users))
		for _, u := range users {
			res = append(res, fiber.Map{
				"id":          u.ID,
				"name":        u.Name,
				"email":       u.Email,
				"role":        u.Role,
				"location_id": u.LocationID,
				"created_at":  u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
