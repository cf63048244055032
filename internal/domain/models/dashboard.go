package models

// PriceChartData holds the series rendered by the price trend chart. A nil
// predicted entry means no prediction for that point.
type PriceChartData struct {
	Labels          []string   `json:"labels"`
	CurrentPrices   []float64  `json:"currentPrices"`
	AveragePrices   []float64  `json:"averagePrices"`
	PredictedPrices []*float64 `json:"predictedPrices"`
}

// EmptyChart returns chart data with empty, non-nil series.
func EmptyChart() PriceChartData {
	return PriceChartData{
		Labels:          []string{},
		CurrentPrices:   []float64{},
		AveragePrices:   []float64{},
		PredictedPrices: []*float64{},
	}
}

// MarketComparison is a market row of the nearby markets table.
type MarketComparison struct {
	Market
	WheatPrice  *float64 `json:"wheatPrice,omitempty"`
	RicePrice   *float64 `json:"ricePrice,omitempty"`
	Trend       Trend    `json:"trend"`
	WheatChange float64  `json:"wheatChange"`
	RiceChange  float64  `json:"riceChange"`
}

// Dashboard is everything the landing page needs in one payload. TodaysBestPrice and
// PriceTrend are nil when no benchmark prices exist; BestPriceDisplay then reads "N/A".
type Dashboard struct {
	User             User                     `json:"user"`
	TodaysBestPrice  *float64                 `json:"todaysBestPrice"`
	PriceTrend       *float64                 `json:"priceTrend"`
	BestPriceDisplay string                   `json:"bestPriceDisplay"`
	MarketPrices     []MarketPriceWithDetails `json:"marketPrices"`
	Recommendations  []Recommendation         `json:"recommendations"`
	PriceChart       PriceChartData           `json:"priceChart"`
	NearbyMarkets    []MarketComparison       `json:"nearbyMarkets"`
}
