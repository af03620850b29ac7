package orders

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

type CreateOrderRequest struct {
	Items      []LineItem `json:"items"`
	Notes      string     `json:"notes"`
	LocationID *uint      `json:"location_id"` // admin için
}

type OrderItemResponse struct {
	SKU      string `json:"sku"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	Outcome  string `json:"outcome,omitempty"`
}

type OrderResponse struct {
	ID           uint                `json:"id"`
	LocationID   uint                `json:"location_id"`
	LocationName string              `json:"location_name"`
	Status       string              `json:"status"`
	Notes        string              `json:"notes"`
	Items        []OrderItemResponse `json:"items"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

func toResponse(o *models.StockOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			SKU:      it.SKU,
			ItemName: it.ItemName,
			Quantity: it.Quantity,
			Outcome:  string(it.Outcome),
		})
	}
	return OrderResponse{
		ID:           o.ID,
		LocationID:   o.LocationID,
		LocationName: o.LocationName,
		Status:       string(o.Status),
		Notes:        o.Notes,
		Items:        items,
		CreatedAt:    o.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    o.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/stock-orders
// Bayi kendi lokasyonu için talep açar.
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		locationID, err := auth.ResolveLocationID(c, body.LocationID)
		if err != nil {
			return err
		}

		order, err := CreateOrder(database.DB, locationID, body.Items, body.Notes)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				return fiber.NewError(fiber.StatusBadRequest, vErr.Msg)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş oluşturulamadı")
		}

		writeOrderAudit(c, order, models.AuditActionCreate,
			fmt.Sprintf("Stok talebi açıldı: %s, %d kalem", order.LocationName, len(order.Items)))

		return c.Status(fiber.StatusCreated).JSON(toResponse(order))
	}
}

// GET /api/stock-orders?status=pending
// Bayi kendi taleplerini, admin tümünü görür.
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, ownLocationID, err := auth.UserFromContext(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.StockOrder{}).Preload("Items")

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

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var ordersList []models.StockOrder
		if err := dbq.Order("created_at DESC").Find(&ordersList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		res := make([]OrderResponse, 0, len(ordersList))
		for i := range ordersList {
			res = append(res, toResponse(&ordersList[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/stock-orders/:id/approve (sadece admin)
// Onay sonucu kalem bazında döner: transferred / skipped_insufficient_stock.
func ApproveOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseOrderID(c)
		if err != nil {
			return err
		}

		order, results, err := Approve(database.DB, orderID)
		if err != nil {
			return mapWorkflowError(err, "Sipariş onaylanamadı")
		}

		transferred := 0
		for _, r := range results {
			if r.Outcome == models.OutcomeTransferred {
				transferred++
			}
		}
		writeOrderAudit(c, order, models.AuditActionApprove,
			fmt.Sprintf("Stok talebi onaylandı: %d/%d kalem transfer edildi", transferred, len(results)))

		return c.JSON(fiber.Map{
			"order":   toResponse(order),
			"results": results,
		})
	}
}

// POST /api/admin/stock-orders/:id/reject (sadece admin)
func RejectOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseOrderID(c)
		if err != nil {
			return err
		}

		order, err := Reject(database.DB, orderID)
		if err != nil {
			return mapWorkflowError(err, "Sipariş reddedilemedi")
		}

		writeOrderAudit(c, order, models.AuditActionReject,
			fmt.Sprintf("Stok talebi reddedildi: %s", order.LocationName))

		return c.JSON(toResponse(order))
	}
}

func parseOrderID(c *fiber.Ctx) (uint, error) {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş ID")
	}
	return uint(id), nil
}

func mapWorkflowError(err error, fallback string) error {
	if errors.Is(err, ErrOrderNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
	}
	var npErr *NotPendingError
	if errors.As(err, &npErr) {
		return fiber.NewError(fiber.StatusConflict, npErr.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

func writeOrderAudit(c *fiber.Ctx, order *models.StockOrder, action models.AuditAction, desc string) {
	userID, _, _, err := auth.UserFromContext(c)
	if err != nil {
		return
	}
	var user models.User
	if database.DB.First(&user, "id = ?", userID).Error != nil {
		return
	}
	_ = audit.WriteLog(audit.LogOptions{
		LocationID:  &order.LocationID,
		UserID:      userID,
		UserName:    user.Name,
		EntityType:  "stock_order",
		EntityID:    order.ID,
		Action:      action,
		Description: desc,
		After:       order,
	})
}
