package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"bayi-backend/internal/database"
	"bayi-backend/internal/models"
)

type LogOptions struct {
	LocationID  *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		LocationID:  opts.LocationID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u geri al.
// Satışlar ve sipariş kararları defter kaydıdır, geri alınamaz; sadece
// manuel stok düzeltmeleri (stock_record update) önceki haline döndürülebilir.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	if log.EntityType != "stock_record" || log.Action != models.AuditActionUpdate {
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	var before models.StockRecord
	if err := json.Unmarshal([]byte(log.BeforeData), &before); err != nil {
		return fmt.Errorf("önceki durum çözümlenemedi: %w", err)
	}

	if err := database.DB.Model(&models.StockRecord{}).
		Where("id = ?", log.EntityID).
		Updates(map[string]interface{}{
			"item_name":   before.ItemName,
			"category":    before.Category,
			"unit_price":  before.UnitPrice,
			"quantity":    before.Quantity,
			"description": before.Description,
		}).Error; err != nil {
		return fmt.Errorf("stok kaydı geri yüklenemedi: %w", err)
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	undoLog := models.AuditLog{
		LocationID:  log.LocationID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}
