package models

import "time"

// Trend tags the short-term direction of a price.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Trends lists every valid trend tag.
var Trends = []Trend{TrendRising, TrendFalling, TrendStable}

// Valid reports whether t is a known trend tag.
func (t Trend) Valid() bool {
	switch t {
	case TrendRising, TrendFalling, TrendStable:
		return true
	}
	return false
}

// MarketPrice is the current price of one crop at one market.
type MarketPrice struct {
	ID            string    `json:"id"`
	CropID        string    `json:"cropId"`
	MarketID      string    `json:"marketId"`
	Price         float64   `json:"price"`
	MinPrice      *float64  `json:"minPrice"`
	MaxPrice      *float64  `json:"maxPrice"`
	Date          time.Time `json:"date"`
	Trend         *Trend    `json:"trend"`
	ChangePercent *float64  `json:"changePercent"`
}

// MarketPriceWithDetails is the denormalized read view of a MarketPrice.
type MarketPriceWithDetails struct {
	MarketPrice
	Crop   Crop   `json:"crop"`
	Market Market `json:"market"`
}

// NewMarketPrice is the payload accepted when recording a current price.
type NewMarketPrice struct {
	CropID        string     `json:"cropId" binding:"required"`
	MarketID      string     `json:"marketId" binding:"required"`
	Price         float64    `json:"price" binding:"required,gt=0"`
	MinPrice      *float64   `json:"minPrice"`
	MaxPrice      *float64   `json:"maxPrice"`
	Date          *time.Time `json:"date"`
	Trend         *Trend     `json:"trend" binding:"omitempty,oneof=rising falling stable"`
	ChangePercent *float64   `json:"changePercent"`
}

// MarketPricePatch lists the fields of a MarketPrice that may be changed in place.
// A nil field leaves the stored value untouched.
type MarketPricePatch struct {
	Price         *float64   `json:"price" binding:"omitempty,gt=0"`
	MinPrice      *float64   `json:"minPrice"`
	MaxPrice      *float64   `json:"maxPrice"`
	Date          *time.Time `json:"date"`
	Trend         *Trend     `json:"trend" binding:"omitempty,oneof=rising falling stable"`
	ChangePercent *float64   `json:"changePercent"`
}

// Apply merges the patch into p and returns the result.
func (patch MarketPricePatch) Apply(p MarketPrice) MarketPrice {
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.MinPrice != nil {
		p.MinPrice = Float(*patch.MinPrice)
	}
	if patch.MaxPrice != nil {
		p.MaxPrice = Float(*patch.MaxPrice)
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Trend != nil {
		trend := *patch.Trend
		p.Trend = &trend
	}
	if patch.ChangePercent != nil {
		p.ChangePercent = Float(*patch.ChangePercent)
	}
	return p
}

// PriceHistory is one observation in the time series of a (crop, market) pair.
type PriceHistory struct {
	ID       string    `json:"id"`
	CropID   string    `json:"cropId"`
	MarketID string    `json:"marketId"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
}

// NewPriceHistory is the payload accepted when appending a history point.
type NewPriceHistory struct {
	CropID   string    `json:"cropId" binding:"required"`
	MarketID string    `json:"marketId" binding:"required"`
	Price    float64   `json:"price" binding:"required,gt=0"`
	Date     time.Time `json:"date" binding:"required"`
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to a copy of v.
func String(v string) *string { return &v }

// Int returns a pointer to a copy of v.
func Int(v int) *int { return &v }
