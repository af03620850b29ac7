package forecast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bayi-backend/internal/sales"

	"github.com/go-resty/resty/v2"
)

// Client: Harici Prophet tahmin servisine giden istemci. Ledger sadece
// satış geçmişini gönderir; modelleme tamamen karşı tarafta.
type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{httpClient: restyClient}
}

// Point: Tahmin servisinin döndürdüğü bir günlük projeksiyon.
type Point struct {
	Date  string  `json:"ds"`
	YHat  float64 `json:"yhat"`
	Lower float64 `json:"yhat_lower"`
	Upper float64 `json:"yhat_upper"`
}

type forecastRequest struct {
	SalesData []sales.HistoryPoint `json:"sales_data"`
	Periods   int                  `json:"periods"`
	Frequency string               `json:"frequency"`
}

type forecastResponse struct {
	Success  bool    `json:"success"`
	Forecast []Point `json:"forecast"`
	Error    string  `json:"error"`
}

// Forecast: Günlük satış serisinden periods günlük projeksiyon ister.
// Servis en az 2 veri noktası bekler; daha azı burada reddedilir ki
// boş yere ağ turu atılmasın.
func (c *Client) Forecast(ctx context.Context, series []sales.HistoryPoint, periods int) ([]Point, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("tahmin için en az 2 günlük satış verisi gerekli (mevcut: %d)", len(series))
	}
	if periods <= 0 {
		periods = 90
	}

	var result forecastResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(forecastRequest{
			SalesData: series,
			Periods:   periods,
			Frequency: "D",
		}).
		SetResult(&result).
		Post("/api/forecast")
	if err != nil {
		return nil, fmt.Errorf("tahmin servisine ulaşılamadı: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tahmin servisi hata döndü: %s", resp.Status())
	}
	if !result.Success {
		return nil, fmt.Errorf("tahmin üretilemedi: %s", result.Error)
	}

	return result.Forecast, nil
}
