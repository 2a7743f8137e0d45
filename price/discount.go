package price

// MaxDiscount is the largest discount percentage accepted as real.
// Sites occasionally report 100% or negative values.
const MaxDiscount = 95.0

// Derive computes the discount implied by the two prices when
// original > price > 0, rounded to two decimals.
func Derive(priceText, originalText string) (float64, bool) {
	p, okP := Number(priceText)
	o, okO := Number(originalText)
	if !okP || !okO || p <= 0 || o <= p {
		return 0, false
	}
	return round2((o - p) / o * 100), true
}

// Sanitize validates or derives a discount percentage. A missing discount
// is derived from the prices. A value outside [0, MaxDiscount] is replaced
// by the derived one when that is in range, otherwise the result is nil.
func Sanitize(discount *float64, priceText, originalText string) *float64 {
	if discount == nil {
		d, ok := Derive(priceText, originalText)
		if !ok {
			return nil
		}
		discount = &d
	}

	if inRange(*discount) {
		v := *discount
		return &v
	}

	if d, ok := Derive(priceText, originalText); ok && inRange(d) {
		return &d
	}
	return nil
}

func inRange(d float64) bool {
	return d >= 0 && d <= MaxDiscount
}
