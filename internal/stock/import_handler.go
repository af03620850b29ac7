package stock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bayi-backend/internal/audit"
	"bayi-backend/internal/database"
	"bayi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// POST /api/admin/stock/import (sadece admin)
// XLSX dosyasından merkez depoya toplu stok girişi.
// Beklenen kolonlar: SKU | Ürün Adı | Kategori | Birim Fiyat | Miktar | Açıklama
// SKU depoda zaten varsa miktar eklenir, yoksa yeni kayıt açılır.
func ImportStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı? ("SKU", "ÜRÜN" vb. içeriyorsa atla)
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if firstCell == "SKU" || strings.Contains(firstCell, "ÜRÜN") || strings.Contains(firstCell, "STOK") {
				startIndex = 1
			}
		}

		warehouseID := database.WarehouseID
		createdCount := 0
		adjustedCount := 0
		failedRows := make([]string, 0)

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 {
				continue
			}

			sku := strings.TrimSpace(row[0])
			if sku == "" {
				continue
			}

			cell := func(idx int) string {
				if idx < len(row) {
					return strings.TrimSpace(row[idx])
				}
				return ""
			}

			itemName := cell(1)
			category := cell(2)

			unitPrice := 0.0
			if s := cell(3); s != "" {
				unitPrice, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
				if err != nil {
					failedRows = append(failedRows, fmt.Sprintf("satır %d: birim fiyat çözümlenemedi (%s)", i+1, s))
					continue
				}
			}

			quantity := 0
			if s := cell(4); s != "" {
				quantity, err = strconv.Atoi(s)
				if err != nil || quantity < 0 {
					failedRows = append(failedRows, fmt.Sprintf("satır %d: miktar çözümlenemedi (%s)", i+1, s))
					continue
				}
			}

			if _, err := GetRecord(database.DB, sku, warehouseID); err == nil {
				if quantity > 0 {
					if _, err := AdjustQuantity(database.DB, sku, warehouseID, quantity); err != nil {
						failedRows = append(failedRows, fmt.Sprintf("satır %d: miktar eklenemedi (%s)", i+1, sku))
						continue
					}
				}
				adjustedCount++
				continue
			} else if !errors.Is(err, ErrRecordNotFound) {
				failedRows = append(failedRows, fmt.Sprintf("satır %d: stok kaydı okunamadı (%s)", i+1, sku))
				continue
			}

			if itemName == "" {
				failedRows = append(failedRows, fmt.Sprintf("satır %d: yeni SKU için ürün adı zorunlu (%s)", i+1, sku))
				continue
			}

			if _, err := CreateRecord(database.DB, sku, warehouseID, RecordAttrs{
				ItemName:    itemName,
				Category:    category,
				UnitPrice:   unitPrice,
				Quantity:    quantity,
				Description: cell(5),
			}); err != nil {
				failedRows = append(failedRows, fmt.Sprintf("satır %d: kayıt oluşturulamadı (%s)", i+1, sku))
				continue
			}
			createdCount++
		}

		userID, userName, err := auditUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &warehouseID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_record",
				EntityID:    0,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Toplu stok girişi: %d yeni kayıt, %d miktar güncellemesi", createdCount, adjustedCount),
			})
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"created_count":  createdCount,
			"adjusted_count": adjustedCount,
			"failed_rows":    failedRows,
			"message":        fmt.Sprintf("%d yeni kayıt açıldı, %d kayda miktar eklendi. %d satır işlenemedi.", createdCount, adjustedCount, len(failedRows)),
		})
	}
}
