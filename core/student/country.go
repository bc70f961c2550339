package student

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Canonical country values. Country names arrive as free text (sometimes with
// bracket/quote contamination from older imports); everything is collapsed to
// one of these before any comparison.
const (
	CountryUK          = "United Kingdom"
	CountryUSA         = "United States"
	CountryCanada      = "Canada"
	CountryAustralia   = "Australia"
	CountryNewZealand  = "New Zealand"
	CountryIreland     = "Ireland"
	CountryGermany     = "Germany"
	CountryFrance      = "France"
	CountryNetherlands = "Netherlands"
	CountryUAE         = "United Arab Emirates"
)

var CanonicalCountries = []string{
	CountryUK,
	CountryUSA,
	CountryCanada,
	CountryAustralia,
	CountryNewZealand,
	CountryIreland,
	CountryGermany,
	CountryFrance,
	CountryNetherlands,
	CountryUAE,
}

// countryAliases maps lowercased variants to canonical values.
var countryAliases = map[string]string{
	"uk":             CountryUK,
	"u.k.":           CountryUK,
	"u.k":            CountryUK,
	"gb":             CountryUK,
	"great britain":  CountryUK,
	"britain":        CountryUK,
	"england":        CountryUK,
	"united kingdom": CountryUK,

	"us":                       CountryUSA,
	"usa":                      CountryUSA,
	"u.s.":                     CountryUSA,
	"u.s.a.":                   CountryUSA,
	"u.s.a":                    CountryUSA,
	"america":                  CountryUSA,
	"united states":            CountryUSA,
	"united states of america": CountryUSA,

	"ca":     CountryCanada,
	"canada": CountryCanada,

	"aus":       CountryAustralia,
	"australia": CountryAustralia,

	"nz":          CountryNewZealand,
	"new zealand": CountryNewZealand,

	"ie":      CountryIreland,
	"eire":    CountryIreland,
	"ireland": CountryIreland,

	"de":          CountryGermany,
	"deutschland": CountryGermany,
	"germany":     CountryGermany,

	"fr":     CountryFrance,
	"france": CountryFrance,

	"nl":          CountryNetherlands,
	"holland":     CountryNetherlands,
	"netherlands": CountryNetherlands,

	"uae":                  CountryUAE,
	"u.a.e.":               CountryUAE,
	"dubai":                CountryUAE,
	"united arab emirates": CountryUAE,
}

// contamination observed in stored data: bracket and quote characters leaking
// in from list-encoded imports.
var countryCleaner = strings.NewReplacer("[", "", "]", "", `"`, "", "'", "")

// CleanCountry strips contamination characters and collapses whitespace.
func CleanCountry(s string) string {
	s = countryCleaner.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalCountry cleans s and collapses known aliases ("UK", "U.K.",
// "United Kingdom") to one canonical value. Unknown countries pass through
// cleaned rather than erroring. Idempotent.
func CanonicalCountry(s string) string {
	cleaned := CleanCountry(s)
	if canonical, ok := countryAliases[strings.ToLower(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

// SameCountry reports whether two country strings refer to the same canonical
// country, ignoring case for pass-through values.
func SameCountry(a, b string) bool {
	return strings.EqualFold(CanonicalCountry(a), CanonicalCountry(b))
}

// countrySuggestMinRatio is the similarity floor below which no suggestion is
// offered; tuned so one-character typos match but unrelated names do not.
const countrySuggestMinRatio = 0.72

// SuggestCountry returns the closest canonical country for an unrecognized
// value, for the admin cleanup tooling. ok is false when nothing is close.
func SuggestCountry(s string) (suggestion string, ok bool) {
	cleaned := strings.ToLower(CleanCountry(s))
	if cleaned == "" {
		return "", false
	}
	if canonical, found := countryAliases[cleaned]; found {
		return canonical, true
	}

	var best float64
	for _, candidate := range CanonicalCountries {
		ratio := difflib.NewMatcher(
			strings.Split(cleaned, ""),
			strings.Split(strings.ToLower(candidate), ""),
		).Ratio()
		if ratio > best {
			best = ratio
			suggestion = candidate
		}
	}
	if best >= countrySuggestMinRatio {
		return suggestion, true
	}
	return "", false
}
