// Package plate decodes Argentine diplomatic plate codes and derives the
// presentation state shown for a decoded plate.
package plate

import (
	"regexp"
	"strings"
)

var (
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	fullPlatePattern   = regexp.MustCompile(`^[A-Z][0-9]{3}[A-Z]{2}[A-Z]$`)
)

// chiefOfMissionLetter marks a plate reserved for the head of a mission.
const chiefOfMissionLetter = 'A'

// ParseResult is the outcome of decoding one input. Empty strings mean "absent".
// Callers must check Error before trusting any other field.
type ParseResult struct {
	Input             string    `json:"input"`
	Code              string    `json:"code,omitempty"`
	Country           string    `json:"country,omitempty"`
	CategoryCode      string    `json:"categoryCode,omitempty"`
	Category          string    `json:"category,omitempty"`
	ChiefOfMissionUse bool      `json:"chiefOfMissionUse"`
	IsFullPlate       bool      `json:"isFullPlate"`
	Error             ErrorKind `json:"error,omitempty"`
}

// OK reports whether the parse succeeded with every lookup resolved.
func (r ParseResult) OK() bool {
	return r.Error == ""
}

// Err returns the failure as an error, or nil when the parse succeeded.
func (r ParseResult) Err() error {
	if r.OK() {
		return nil
	}
	return &ParseError{Kind: r.Error, Input: r.Input}
}

// Normalize upper-cases and trims an input the way Parse does.
func Normalize(raw string) string {
	return strings.TrimSpace(strings.ToUpper(raw))
}

// Parse decodes a country code ("BG") or a full plate ("D001BGA").
// It never panics; every failure is reported through ParseResult.Error.
func Parse(raw string) ParseResult {
	input := Normalize(raw)
	result := ParseResult{Input: input}

	switch {
	case countryCodePattern.MatchString(input):
		result.Code = input
		country, ok := LookupCountry(input)
		if !ok {
			result.Error = CountryNotFound
			return result
		}
		result.Country = country
		return result

	case fullPlatePattern.MatchString(input):
		result.IsFullPlate = true

		// Category is resolved before the country; an unknown category leaves the
		// country fields unset.
		result.CategoryCode = input[0:1]
		category, ok := LookupCategory(result.CategoryCode)
		if !ok {
			result.Error = CategoryNotFound
			return result
		}
		result.Category = category

		result.Code = input[4:6]
		country, ok := LookupCountry(result.Code)
		if !ok {
			result.Error = CountryNotFound
			return result
		}
		result.Country = country
		result.ChiefOfMissionUse = input[6] == chiefOfMissionLetter
		return result

	default:
		return ParseResult{Input: input, Error: InvalidFormat}
	}
}
