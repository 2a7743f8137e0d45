package models

// DiscountSource records where a discount percentage came from.
type DiscountSource string

const (
	// DiscountScraped is a badge value read from the listing.
	DiscountScraped DiscountSource = "scraped"
	// DiscountDerived is computed from the selling and original prices.
	DiscountDerived DiscountSource = "derived"
	// DiscountNone means no plausible discount is known.
	DiscountNone DiscountSource = "none"
)

// RawItem is one product extracted from a listing, in canonical shape.
// Price fields hold the display form produced by price.DisplayString
// ("35,490" or "N/A"); the UI prepends the currency symbol.
type RawItem struct {
	Site              string         `json:"site"`
	Title             string         `json:"title"`
	PriceText         string         `json:"price_text"`
	OriginalPriceText string         `json:"original_price_text"`
	DiscountPercent   *float64       `json:"discount_percent"`
	DiscountSource    DiscountSource `json:"discount_source"`
	URL               string         `json:"url,omitempty"`
	Image             string         `json:"image,omitempty"`
}

// AggregateResult is the merged output of one scrape request.
//
// Every site appears either as a contributor to Items (possibly with zero
// items) or as a key of SiteErrors, never both.
type AggregateResult struct {
	Items      []RawItem         `json:"items"`
	SiteErrors map[string]string `json:"site_errors"`
}
