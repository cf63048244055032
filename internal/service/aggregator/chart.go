package aggregator

import (
	"math"
	"sort"
	"time"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

const (
	// ChartDays is how many daily points the chart keeps.
	ChartDays = 14
	// PredictedPoints is how many trailing points carry a prediction.
	PredictedPoints = 4
	// AverageWindow is the width of the trailing moving average.
	AverageWindow = 3

	chartLabelLayout = "2 Jan"
	risingFactor     = 1.02
	fallingFactor    = 0.98
)

type dayPoint struct {
	day   time.Time
	price float64
}

// civilDate is a calendar day independent of any *time.Location value.
type civilDate [3]int

// BuildChart turns a price history into chart series. Rows are averaged per
// calendar day as seen in loc (UTC when nil), then the most recent ChartDays
// days are kept oldest first.
func BuildChart(history []models.PriceHistory, loc *time.Location) models.PriceChartData {
	if loc == nil {
		loc = time.UTC
	}
	points := dailyAverages(history, loc)
	if len(points) > ChartDays {
		points = points[len(points)-ChartDays:]
	}

	chart := models.PriceChartData{
		Labels:        make([]string, len(points)),
		CurrentPrices: make([]float64, len(points)),
	}
	for i, p := range points {
		chart.Labels[i] = p.day.Format(chartLabelLayout)
		chart.CurrentPrices[i] = p.price
	}
	chart.AveragePrices = MovingAverage(chart.CurrentPrices, AverageWindow)
	chart.PredictedPrices = Predict(chart.CurrentPrices, PredictedPoints)
	return chart
}

// MovingAverage returns the trailing mean of up to window points ending at
// each index, clipped at the start of the series.
func MovingAverage(prices []float64, window int) []float64 {
	out := make([]float64, len(prices))
	for i := range prices {
		start := max(0, i-window+1)
		var sum float64
		for _, p := range prices[start : i+1] {
			sum += p
		}
		out[i] = sum / float64(i+1-start)
	}
	return out
}

// Predict leaves all but the last tail entries empty and fills the tail by
// scaling the previous price with a growth factor. The factor is 1.02 when
// the last price beats the one tail points earlier, 0.98 otherwise, and 1
// (flat) when the series is too short to compare.
func Predict(prices []float64, tail int) []*float64 {
	n := len(prices)
	out := make([]*float64, n)
	if n == 0 {
		return out
	}

	factor := 1.0
	if n > tail {
		if prices[n-1] > prices[n-1-tail] {
			factor = risingFactor
		} else {
			factor = fallingFactor
		}
	}

	for i := max(0, n-tail); i < n; i++ {
		base := prices[0]
		if i > 0 {
			base = prices[i-1]
		}
		out[i] = models.Float(math.Round(base * factor))
	}
	return out
}

func dailyAverages(history []models.PriceHistory, loc *time.Location) []dayPoint {
	type bucket struct {
		day   time.Time
		sum   float64
		count int
	}

	buckets := make(map[civilDate]*bucket)
	for _, h := range history {
		y, m, d := h.Date.In(loc).Date()
		key := civilDate{y, int(m), d}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{day: time.Date(y, m, d, 0, 0, 0, 0, loc)}
			buckets[key] = b
		}
		b.sum += h.Price
		b.count++
	}

	points := make([]dayPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, dayPoint{day: b.day, price: b.sum / float64(b.count)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].day.Before(points[j].day) })
	return points
}
