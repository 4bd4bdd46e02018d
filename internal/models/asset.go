package models

import "strings"

// AssetClass is the category an instrument belongs to.
type AssetClass string

const (
	Equity      AssetClass = "Equity"
	Bond        AssetClass = "Bond"
	Cash        AssetClass = "Cash"
	Alternative AssetClass = "Alternative"
)

// AssetClasses lists every asset class in display order.
var AssetClasses = []AssetClass{Equity, Bond, Cash, Alternative}

// ParseAssetClass accepts the canonical names and the plural forms used by the
// portal UI ("equities", "bonds", "alternatives"), case-insensitively.
func ParseAssetClass(s string) (AssetClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equity", "equities", "stock", "stocks":
		return Equity, true
	case "bond", "bonds", "fixed income":
		return Bond, true
	case "cash", "cash equivalents":
		return Cash, true
	case "alternative", "alternatives":
		return Alternative, true
	}
	return "", false
}

// Rating is the discrete performance bucket assigned to a holding or fund.
type Rating string

const (
	Poor         Rating = "Poor"
	BelowAverage Rating = "Below Average"
	Average      Rating = "Average"
	Good         Rating = "Good"
	Excellent    Rating = "Excellent"
)

// Underperforming reports whether the rating is Poor or Below Average.
func (r Rating) Underperforming() bool {
	return r == Poor || r == BelowAverage
}
