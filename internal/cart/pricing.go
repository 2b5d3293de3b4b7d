package cart

import "example.com/event-planner/gateway/internal/models"

const DefaultPrice = 1000

// ResolvePrice выбирает цену услуги: рекомендованная, минимум диапазона,
// базовая, иначе значение по умолчанию.
func ResolvePrice(vendor models.Vendor, fallback float64) float64 {
	for _, candidate := range []*float64{vendor.RecommendedPrice, vendor.PriceRangeMin, vendor.BasePrice} {
		if candidate != nil && *candidate > 0 {
			return *candidate
		}
	}

	return fallback
}
