package montecarlo

import (
	"fmt"
	"math"
)

// DefaultHistogramBuckets is the number of equal-width bins per horizon
const DefaultHistogramBuckets = 30

// DefaultCurrencySymbol prefixes histogram labels
const DefaultCurrencySymbol = "€"

// BuildHistogram bins sorted values into equal-width buckets over [min, max].
// Values equal to max land in the last bucket; when min == max every value
// lands in the first one.
func BuildHistogram(sorted []float64, buckets int, currency string) []HistogramBucket {
	if len(sorted) == 0 || buckets < 1 {
		return nil
	}

	minVal := sorted[0]
	maxVal := sorted[len(sorted)-1]
	width := (maxVal - minVal) / float64(buckets)

	histogram := make([]HistogramBucket, buckets)
	for i := range histogram {
		lower := minVal + float64(i)*width
		histogram[i] = HistogramBucket{
			Lower:               lower,
			Upper:               minVal + float64(i+1)*width,
			RepresentativeValue: minVal + (float64(i)+0.5)*width,
			Label:               fmt.Sprintf("%s%.0fk", currency, math.Round(lower/1000)),
		}
	}

	for _, v := range sorted {
		histogram[bucketIndex(v, minVal, width, buckets)].Count++
	}
	return histogram
}

func bucketIndex(v, minVal, width float64, buckets int) int {
	if width <= 0 {
		return 0
	}
	idx := int(math.Floor((v - minVal) / width))
	if idx >= buckets {
		return buckets - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}
