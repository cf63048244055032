package router

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/seed"
	"github.com/mamadbah2/mandi/internal/server/handlers"
	"github.com/mamadbah2/mandi/internal/service/aggregator"
	"github.com/mamadbah2/mandi/internal/service/pricing"
	"github.com/mamadbah2/mandi/internal/service/whatsapp"
	"github.com/mamadbah2/mandi/internal/store"
)

var seededAt = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	clock := func() time.Time { return seededAt }
	st := store.New(store.WithClock(clock))
	rng := rand.New(rand.NewPCG(3, 4))
	catalog := seed.DefaultCatalog()
	require.NoError(t, seed.NewSeeder(catalog, rng, clock, nil).Load(st))

	agg := aggregator.NewService(st, 10, nil)
	refresher := pricing.NewService(st, catalog, rng, clock, nil)
	messaging := whatsapp.NewMetaWhatsAppService(whatsapp.Options{})

	engine := New(Handlers{
		Dashboard:       handlers.NewDashboardHandler(agg, nil),
		Catalog:         handlers.NewCatalogHandler(st, agg, 10, nil),
		Prices:          handlers.NewPriceHandler(st, agg, refresher, nil),
		Recommendations: handlers.NewRecommendationHandler(st, nil),
		Snapshots:       handlers.NewSnapshotHandler(nil, nil),
		Webhook:         handlers.NewWebhookHandler(messaging, nil),
	}, nil)
	return engine, st
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func cropID(t *testing.T, st *store.Store, name string) string {
	t.Helper()
	crop, ok := st.GetCropByName(name)
	require.True(t, ok)
	return crop.ID
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := do(t, engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDashboardRoutes(t *testing.T) {
	engine, st := newTestEngine(t)

	rec := do(t, engine, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode[models.Dashboard](t, rec)
	assert.Equal(t, "Rajesh", dashboard.User.Name)
	require.NotNil(t, dashboard.TodaysBestPrice)
	assert.Len(t, dashboard.MarketPrices, aggregator.DashboardPriceRows)
	assert.Len(t, dashboard.PriceChart.Labels, aggregator.ChartDays)
	assert.Len(t, dashboard.NearbyMarkets, 3)
	assert.Len(t, dashboard.Recommendations, 1)

	users := st.ListUsers()
	rec = do(t, engine, http.MethodGet, "/api/dashboard/"+users[0].ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/dashboard/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/crops", map[string]any{"name": "Ragi", "category": "Millets"})
	require.Equal(t, http.StatusCreated, rec.Code)
	crop := decode[models.Crop](t, rec)
	assert.Equal(t, models.DefaultCropUnit, crop.Unit)

	rec = do(t, engine, http.MethodGet, "/api/crops/"+crop.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, engine, http.MethodGet, "/api/crops/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/crops", map[string]any{"category": "Millets"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/crops", nil)
	assert.Len(t, decode[[]models.Crop](t, rec), 6)

	rec = do(t, engine, http.MethodPost, "/api/users", map[string]any{"name": "Lakshmi", "location": "Mandya"})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode[models.User](t, rec)
	assert.Equal(t, models.DefaultLanguage, user.PreferredLanguage)
	rec = do(t, engine, http.MethodGet, "/api/users/"+user.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, engine, http.MethodGet, "/api/users", nil)
	assert.Len(t, decode[[]models.User](t, rec), 2)
}

func TestMarketRoutes(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := do(t, engine, http.MethodPost, "/api/markets", map[string]any{
		"name": "Hassan Market", "location": "Hassan", "district": "Hassan", "state": "Karnataka", "distanceKm": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	hassan := decode[models.Market](t, rec)
	assert.Equal(t, models.DefaultMarketType, hassan.MarketType)

	rec = do(t, engine, http.MethodGet, "/api/markets/nearby?location=Bangalore&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nearby := decode[[]models.Market](t, rec)
	require.Len(t, nearby, 2)
	assert.Equal(t, "Hassan Market", nearby[0].Name)
	assert.Equal(t, "Mandya Market", nearby[1].Name)

	rec = do(t, engine, http.MethodGet, "/api/markets/nearby?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/markets/compare", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]models.MarketComparison](t, rec)
	require.Len(t, rows, 4)
	assert.Nil(t, rows[0].WheatPrice)
	assert.Equal(t, models.TrendStable, rows[0].Trend)
	assert.NotNil(t, rows[1].WheatPrice)
	assert.NotNil(t, rows[1].RicePrice)

	rec = do(t, engine, http.MethodGet, "/api/markets/"+hassan.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPriceRoutes(t *testing.T) {
	engine, st := newTestEngine(t)
	wheatID := cropID(t, st, "Wheat")
	markets := st.ListMarkets()

	rec := do(t, engine, http.MethodGet, "/api/prices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MarketPriceWithDetails](t, rec), 15)

	rec = do(t, engine, http.MethodGet, "/api/prices/crop/"+wheatID, nil)
	byCrop := decode[[]models.MarketPriceWithDetails](t, rec)
	require.Len(t, byCrop, 3)
	for _, row := range byCrop {
		assert.Equal(t, "Wheat", row.Crop.Name)
	}

	rec = do(t, engine, http.MethodGet, "/api/prices/market/"+markets[0].ID, nil)
	byMarket := decode[[]models.MarketPriceWithDetails](t, rec)
	require.Len(t, byMarket, 5)
	for _, row := range byMarket {
		assert.Equal(t, markets[0].Name, row.Market.Name)
	}

	rec = do(t, engine, http.MethodPost, "/api/prices", map[string]any{"cropId": wheatID, "marketId": "nowhere", "price": 2900})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid reference")

	rec = do(t, engine, http.MethodPatch, "/api/prices/"+byCrop[0].ID, map[string]any{"price": 2999.0, "trend": "rising"})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[models.MarketPrice](t, rec)
	assert.Equal(t, 2999.0, patched.Price)
	require.NotNil(t, patched.Trend)
	assert.Equal(t, models.TrendRising, *patched.Trend)
	assert.Equal(t, byCrop[0].MinPrice, patched.MinPrice)

	rec = do(t, engine, http.MethodPatch, "/api/prices/missing", map[string]any{"price": 1.0})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/prices/best?crop=wheat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	best := decode[map[string]any](t, rec)
	assert.Equal(t, 2999.0, best["bestPrice"])
	assert.Equal(t, "₹2,999", best["display"])

	rec = do(t, engine, http.MethodGet, "/api/prices/best?crop=saffron", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no data"}`, rec.Body.String())
}

func TestRefreshRoute(t *testing.T) {
	engine, st := newTestEngine(t)
	before := st.Counts().History

	rec := do(t, engine, http.MethodPost, "/api/prices/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[pricing.RefreshResult](t, rec)
	assert.Equal(t, 15, result.Updated)
	assert.Equal(t, before+15, st.Counts().History)
}

func TestHistoryAndChartRoutes(t *testing.T) {
	engine, st := newTestEngine(t)
	wheatID := cropID(t, st, "Wheat")
	market := st.ListMarkets()[0]

	rec := do(t, engine, http.MethodGet, "/api/price-history/"+wheatID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.PriceHistory](t, rec), 90)

	rec = do(t, engine, http.MethodGet, "/api/price-history/"+wheatID+"?marketId="+market.ID+"&days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	week := decode[[]models.PriceHistory](t, rec)
	require.Len(t, week, 8)
	for i := 1; i < len(week); i++ {
		assert.False(t, week[i].Date.Before(week[i-1].Date))
	}

	rec = do(t, engine, http.MethodGet, "/api/price-history/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/price-history", map[string]any{
		"cropId": wheatID, "marketId": market.ID, "price": 2875, "date": seededAt.Add(time.Hour),
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/chart-data/"+wheatID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[models.PriceChartData](t, rec)
	assert.Len(t, chart.Labels, 14)
	assert.Len(t, chart.CurrentPrices, 14)
	assert.Len(t, chart.AveragePrices, 14)
	require.Len(t, chart.PredictedPrices, 14)
	for i, p := range chart.PredictedPrices {
		if i < 10 {
			assert.Nil(t, p)
		} else {
			assert.NotNil(t, p)
		}
	}

	rec = do(t, engine, http.MethodGet, "/api/chart-data/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryExport(t *testing.T) {
	engine, st := newTestEngine(t)
	wheatID := cropID(t, st, "Wheat")

	rec := do(t, engine, http.MethodGet, "/api/price-history/"+wheatID+"/export?days=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=\"wheat-price-history.xlsx\"", rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Wheat")
	require.NoError(t, err)
	// header plus today and yesterday for three markets
	assert.Len(t, rows, 1+6)
	assert.Equal(t, []string{"Date", "Market", "Price"}, rows[0])
}

func TestRecommendationRoutes(t *testing.T) {
	engine, st := newTestEngine(t)
	user := st.ListUsers()[0]
	wheatID := cropID(t, st, "Wheat")

	rec := do(t, engine, http.MethodPost, "/api/recommendations", map[string]any{
		"userId": user.ID, "cropId": wheatID, "recommendation": "Hold for a week", "confidence": "medium",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Recommendation](t, rec)
	assert.True(t, created.Active)

	rec = do(t, engine, http.MethodPost, "/api/recommendations", map[string]any{
		"cropId": "ghost", "recommendation": "x", "confidence": "low",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/recommendations?userId="+user.ID, nil)
	assert.Len(t, decode[[]models.Recommendation](t, rec), 2)

	rec = do(t, engine, http.MethodPost, "/api/recommendations/"+created.ID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.Recommendation](t, rec).Active)

	rec = do(t, engine, http.MethodGet, "/api/recommendations?userId="+user.ID, nil)
	assert.Len(t, decode[[]models.Recommendation](t, rec), 1)

	rec = do(t, engine, http.MethodPost, "/api/recommendations/missing/deactivate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptionalIntegrationsAnswerUnavailable(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := do(t, engine, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=x&hub.challenge=1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, engine, http.MethodPost, "/send-message", map[string]any{"to": "1", "message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/snapshots", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
