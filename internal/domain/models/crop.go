package models

const (
	DefaultCropUnit = "quintal"
	DefaultCropIcon = "seedling"
)

// Crop is a tradable commodity.
type Crop struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	NameLocal *string `json:"nameLocal"`
	Category  string  `json:"category"`
	Unit      string  `json:"unit"`
	Icon      *string `json:"icon"`
}

// NewCrop is the payload accepted when registering a crop.
type NewCrop struct {
	Name      string  `json:"name" binding:"required"`
	NameLocal *string `json:"nameLocal"`
	Category  string  `json:"category" binding:"required"`
	Unit      string  `json:"unit"`
	Icon      *string `json:"icon"`
}
