package models

import "time"

// SnapshotMarket is one market line of a daily snapshot.
type SnapshotMarket struct {
	MarketID      string   `bson:"market_id" json:"marketId"`
	MarketName    string   `bson:"market_name" json:"marketName"`
	Price         *float64 `bson:"price,omitempty" json:"price"`
	ChangePercent float64  `bson:"change_percent" json:"changePercent"`
	Trend         Trend    `bson:"trend" json:"trend"`
}

// DailySnapshot archives the benchmark crop's market picture for one day.
type DailySnapshot struct {
	Date          time.Time        `bson:"date" json:"date"`
	CropName      string           `bson:"crop_name" json:"cropName"`
	BestPrice     *float64         `bson:"best_price,omitempty" json:"bestPrice"`
	AverageChange *float64         `bson:"average_change,omitempty" json:"averageChange"`
	Markets       []SnapshotMarket `bson:"markets" json:"markets"`
	CreatedAt     time.Time        `bson:"created_at" json:"createdAt"`
}
