package scheduler

import (
	"log"

	"bayi-backend/internal/config"
	"bayi-backend/internal/database"
	"bayi-backend/internal/reports"

	"github.com/robfig/cron/v3"
)

// Scheduler: Günlük düşük stok taraması. Operasyon ekibi sabah loglardan
// hangi lokasyonda neyin azaldığını görür.
type Scheduler struct {
	cron      *cron.Cron
	threshold int
	spec      string
}

func New(cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		threshold: cfg.LowStockThreshold,
		spec:      cfg.LowStockCron,
	}
}

func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(s.spec, s.runLowStockSweep)
	if err != nil {
		log.Printf("[WARN] Düşük stok taraması zamanlanamadı (%s): %v", s.spec, err)
		return
	}
	s.cron.Start()
	log.Printf("Düşük stok taraması zamanlandı: %s (eşik: %d)", s.spec, s.threshold)
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runLowStockSweep() {
	records, err := reports.LowStock(database.DB, nil, s.threshold)
	if err != nil {
		log.Printf("[WARN] Düşük stok taraması başarısız: %v", err)
		return
	}

	if len(records) == 0 {
		log.Printf("Düşük stok taraması: eşiğin (%d) altında kayıt yok", s.threshold)
		return
	}

	log.Printf("Düşük stok taraması: %d kayıt eşiğin (%d) altında", len(records), s.threshold)
	for _, r := range records {
		log.Printf("  %s (%s) @ lokasyon %d: %d adet", r.SKU, r.ItemName, r.LocationID, r.Quantity)
	}
}
