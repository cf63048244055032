package models

import "time"

// Confidence grades how sure an advisory is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// AlertType classifies the optional alert attached to a recommendation.
type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
	AlertSuccess AlertType = "success"
)

// Recommendation is a selling advisory shown to a farmer. Once inactive it stays inactive.
type Recommendation struct {
	ID                  string     `json:"id"`
	UserID              *string    `json:"userId"`
	CropID              string     `json:"cropId"`
	RecommendedMarketID *string    `json:"recommendedMarketId"`
	Text                string     `json:"recommendation"`
	Confidence          Confidence `json:"confidence"`
	ExpectedPrice       *float64   `json:"expectedPrice"`
	Timeframe           *string    `json:"timeframe"`
	Alert               *string    `json:"alert"`
	AlertType           *AlertType `json:"alertType"`
	CreatedAt           time.Time  `json:"createdAt"`
	Active              bool       `json:"isActive"`
}

// NewRecommendation is the payload accepted when publishing an advisory.
// Active defaults to true when omitted.
type NewRecommendation struct {
	UserID              *string    `json:"userId"`
	CropID              string     `json:"cropId" binding:"required"`
	RecommendedMarketID *string    `json:"recommendedMarketId"`
	Text                string     `json:"recommendation" binding:"required"`
	Confidence          Confidence `json:"confidence" binding:"required,oneof=high medium low"`
	ExpectedPrice       *float64   `json:"expectedPrice"`
	Timeframe           *string    `json:"timeframe"`
	Alert               *string    `json:"alert"`
	AlertType           *AlertType `json:"alertType" binding:"omitempty,oneof=warning info success"`
	Active              *bool      `json:"isActive"`
}
