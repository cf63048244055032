package seed

import (
	"math"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// PriceBand is the synthetic price range of a crop, per unit.
type PriceBand struct {
	Base float64
	Min  float64
	Max  float64
}

// Clamp pulls v into [Min, Max].
func (b PriceBand) Clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Min), b.Max)
}

// CropSpec describes a crop to seed together with its price band.
type CropSpec struct {
	Crop models.NewCrop
	Band PriceBand
}

// RecommendationSpec is a canned advisory resolved by names at load time.
type RecommendationSpec struct {
	CropName      string
	MarketName    string
	Text          string
	Confidence    models.Confidence
	ExpectedPrice float64
	Timeframe     string
	Alert         string
	AlertType     models.AlertType
}

// Catalog is the fixed data set the seeder expands into prices and history.
type Catalog struct {
	Crops           []CropSpec
	Markets         []models.NewMarket
	Users           []models.NewUser
	Recommendations []RecommendationSpec
	HistoryDays     int
}

// DefaultCatalog is the demo data set: five crops, three Karnataka markets and one farmer.
func DefaultCatalog() Catalog {
	return Catalog{
		Crops: []CropSpec{
			{Crop: models.NewCrop{Name: "Wheat", NameLocal: models.String("गेहूं"), Category: "Cereals", Unit: "quintal", Icon: models.String("wheat-awn")}, Band: PriceBand{Base: 2850, Min: 2650, Max: 3000}},
			{Crop: models.NewCrop{Name: "Rice", NameLocal: models.String("चावल"), Category: "Cereals", Unit: "quintal", Icon: models.String("seedling")}, Band: PriceBand{Base: 3200, Min: 3000, Max: 3400}},
			{Crop: models.NewCrop{Name: "Sugarcane", NameLocal: models.String("गन्ना"), Category: "Cash Crops", Unit: "quintal", Icon: models.String("carrot")}, Band: PriceBand{Base: 380, Min: 350, Max: 420}},
			{Crop: models.NewCrop{Name: "Cotton", NameLocal: models.String("कपास"), Category: "Cash Crops", Unit: "quintal", Icon: models.String("cotton")}, Band: PriceBand{Base: 6200, Min: 5800, Max: 6500}},
			{Crop: models.NewCrop{Name: "Maize", NameLocal: models.String("मक्का"), Category: "Cereals", Unit: "quintal", Icon: models.String("corn")}, Band: PriceBand{Base: 2100, Min: 1950, Max: 2250}},
		},
		Markets: []models.NewMarket{
			{Name: "Mandya Market", Location: "Mandya", District: "Mandya", State: "Karnataka", DistanceKm: models.Int(12), MarketType: "APMC", Latitude: models.Float(12.5239), Longitude: models.Float(76.8956)},
			{Name: "Tumkur Market", Location: "Tumkur", District: "Tumkur", State: "Karnataka", DistanceKm: models.Int(28), MarketType: "APMC", Latitude: models.Float(13.3379), Longitude: models.Float(77.1006)},
			{Name: "Mysore Market", Location: "Mysore", District: "Mysore", State: "Karnataka", DistanceKm: models.Int(45), MarketType: "APMC", Latitude: models.Float(12.2958), Longitude: models.Float(76.6394)},
		},
		Users: []models.NewUser{
			{Name: "Rajesh", Location: "Bangalore, Karnataka", Phone: models.String("+919876543210"), PreferredLanguage: "en"},
		},
		Recommendations: []RecommendationSpec{
			{
				CropName:      "Wheat",
				MarketName:    "Mandya Market",
				Text:          "Sell your wheat crop at Mandya Market within the next 3-5 days. Expected price: ₹2,850-2,950 per quintal.",
				Confidence:    models.ConfidenceHigh,
				ExpectedPrice: 2900,
				Timeframe:     "3-5 days",
				Alert:         "Prices expected to drop by 8-12% next week due to increased supply from neighboring districts.",
				AlertType:     models.AlertWarning,
			},
		},
		HistoryDays: 30,
	}
}

// Band returns the price band registered for the crop name.
func (c Catalog) Band(cropName string) (PriceBand, bool) {
	for _, spec := range c.Crops {
		if spec.Crop.Name == cropName {
			return spec.Band, true
		}
	}
	return PriceBand{}, false
}
