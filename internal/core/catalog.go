package core

import "strings"

// KnownLocation is a curated destination with the currency used there.
type KnownLocation struct {
	Name     string
	Currency string
}

// SupportedCategories is the fixed category set offered by the form.
var SupportedCategories = []string{
	"Food", "Transport", "Accommodation", "Activities", "Shopping", "Services", "Other",
}

// SupportedCurrencies lists the accepted currency codes.
var SupportedCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "SEK", "NZD", "MXN", "THB",
	"TRY", "MAD", "ARS", "INR", "BRL", "AED", "SGD", "HKD", "KRW", "CZK", "HUF",
}

// KnownLocations are suggested in the location picker. Choosing one fills
// in its currency.
var KnownLocations = []KnownLocation{
	{Name: "Mexico City, Mexico", Currency: "MXN"},
	{Name: "Bangkok, Thailand", Currency: "THB"},
	{Name: "Lisbon, Portugal", Currency: "EUR"},
	{Name: "Tokyo, Japan", Currency: "JPY"},
	{Name: "Berlin, Germany", Currency: "EUR"},
	{Name: "Barcelona, Spain", Currency: "EUR"},
	{Name: "Istanbul, Turkey", Currency: "TRY"},
	{Name: "Marrakech, Morocco", Currency: "MAD"},
	{Name: "Buenos Aires, Argentina", Currency: "ARS"},
	{Name: "New York, USA", Currency: "USD"},
	{Name: "London, UK", Currency: "GBP"},
	{Name: "Sydney, Australia", Currency: "AUD"},
	{Name: "Mumbai, India", Currency: "INR"},
	{Name: "São Paulo, Brazil", Currency: "BRL"},
	{Name: "Dubai, UAE", Currency: "AED"},
	{Name: "Singapore", Currency: "SGD"},
	{Name: "Hong Kong", Currency: "HKD"},
	{Name: "Seoul, South Korea", Currency: "KRW"},
	{Name: "Prague, Czech Republic", Currency: "CZK"},
	{Name: "Budapest, Hungary", Currency: "HUF"},
}

func IsCategory(c string) bool {
	return contains(SupportedCategories, c)
}

func IsSupportedCurrency(c string) bool {
	return contains(SupportedCurrencies, c)
}

// DefaultCurrencyFor returns the currency of a curated location. The match
// is exact, like every other location comparison.
func DefaultCurrencyFor(location string) (string, bool) {
	for _, l := range KnownLocations {
		if l.Name == location {
			return l.Currency, true
		}
	}
	return "", false
}

// SearchLocations returns the curated locations whose name contains query,
// ignoring case. An empty query returns the whole list.
func SearchLocations(query string) []KnownLocation {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]KnownLocation, 0, len(KnownLocations))
	for _, l := range KnownLocations {
		if q == "" || strings.Contains(strings.ToLower(l.Name), q) {
			out = append(out, l)
		}
	}
	return out
}

// InferCountry takes the text after the last comma of a "City, Country"
// label. A label without a comma (e.g. "Singapore") names its own country.
func InferCountry(location string) string {
	location = strings.TrimSpace(location)
	if i := strings.LastIndex(location, ","); i >= 0 {
		if c := strings.TrimSpace(location[i+1:]); c != "" {
			return c
		}
		return strings.TrimSpace(location[:i])
	}
	return location
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
