package models

// DefaultMarketType is used when a market is created without a type.
const DefaultMarketType = "APMC"

// Market is a physical trading yard (mandi).
type Market struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	District   string   `json:"district"`
	State      string   `json:"state"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	DistanceKm *int     `json:"distanceKm"`
	MarketType string   `json:"marketType"`
}

// NewMarket is the payload accepted when registering a market.
type NewMarket struct {
	Name       string   `json:"name" binding:"required"`
	Location   string   `json:"location" binding:"required"`
	District   string   `json:"district" binding:"required"`
	State      string   `json:"state" binding:"required"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	DistanceKm *int     `json:"distanceKm" binding:"omitempty,min=0"`
	MarketType string   `json:"marketType"`
}
