package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bayi-backend/internal/sales"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast(t *testing.T) {
	var gotBody forecastRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/forecast", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(forecastResponse{
			Success: true,
			Forecast: []Point{
				{Date: "2026-08-30", YHat: 4.2, Lower: 2.1, Upper: 6.3},
				{Date: "2026-08-31", YHat: 4.5, Lower: 2.3, Upper: 6.7},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series := []sales.HistoryPoint{
		{Date: "2026-08-27", Quantity: 3},
		{Date: "2026-08-28", Quantity: 5},
	}

	points, err := client.Forecast(context.Background(), series, 30)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-30", points[0].Date)
	assert.Equal(t, 4.2, points[0].YHat)

	// İstek gövdesi servisin beklediği şemada gitmeli
	assert.Equal(t, series, gotBody.SalesData)
	assert.Equal(t, 30, gotBody.Periods)
	assert.Equal(t, "D", gotBody.Frequency)
}

func TestForecastTooFewPoints(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")

	_, err := client.Forecast(context.Background(), []sales.HistoryPoint{{Date: "2026-08-27", Quantity: 3}}, 30)
	assert.Error(t, err)
}

func TestForecastServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(forecastResponse{Success: false, Error: "yetersiz veri"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series := []sales.HistoryPoint{
		{Date: "2026-08-27", Quantity: 3},
		{Date: "2026-08-28", Quantity: 5},
	}

	_, err := client.Forecast(context.Background(), series, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yetersiz veri")
}

func TestForecastHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "patladı", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series := []sales.HistoryPoint{
		{Date: "2026-08-27", Quantity: 3},
		{Date: "2026-08-28", Quantity: 5},
	}

	_, err := client.Forecast(context.Background(), series, 30)
	assert.Error(t, err)
}

func TestForecastDefaultPeriods(t *testing.T) {
	var gotBody forecastRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(forecastResponse{Success: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	series := []sales.HistoryPoint{
		{Date: "2026-08-27", Quantity: 3},
		{Date: "2026-08-28", Quantity: 5},
	}

	_, err := client.Forecast(context.Background(), series, 0)
	require.NoError(t, err)
	assert.Equal(t, 90, gotBody.Periods)
}
