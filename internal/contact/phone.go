// Package contact normalizes free-text phone numbers and calendar dates
// into the fixed forms used for display and storage.
package contact

import (
	"regexp"
	"strings"
)

// DefaultCountryCode is assumed when a stored phone has no "+CC" prefix.
const DefaultCountryCode = "+1"

const maxNationalDigits = 10

var countryPrefixRe = regexp.MustCompile(`^(\+\d+)\s*(.*)$`)

// Phone is a phone number split into its country code and national digits.
type Phone struct {
	CountryCode string `json:"countryCode"`
	Number      string `json:"number"`
}

// Digits strips every non-digit character.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhoneDisplay renders up to ten digits as "(ddd) ddd-dddd",
// progressively for partial input. Digits beyond the tenth are dropped.
func FormatPhoneDisplay(raw string) string {
	digits := Digits(raw)
	if len(digits) > maxNationalDigits {
		digits = digits[:maxNationalDigits]
	}

	switch {
	case len(digits) == 0:
		return ""
	case len(digits) <= 3:
		return "(" + digits
	case len(digits) <= 6:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
}

// JoinCountryAndNumber builds the stored "<countryCode> <number>" form.
// The number is kept as typed; an input without digits yields "".
func JoinCountryAndNumber(countryCode, number string) string {
	if Digits(number) == "" {
		return ""
	}
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return countryCode + " " + strings.TrimSpace(number)
}

// SplitCountryAndNumber parses a stored phone. The number part keeps
// digits only; without a "+CC" prefix the country code defaults to +1.
func SplitCountryAndNumber(full string) Phone {
	full = strings.TrimSpace(full)
	if full == "" {
		return Phone{CountryCode: DefaultCountryCode}
	}

	if m := countryPrefixRe.FindStringSubmatch(full); m != nil {
		return Phone{CountryCode: m[1], Number: Digits(m[2])}
	}

	return Phone{CountryCode: DefaultCountryCode, Number: Digits(full)}
}

// NormalizePhone rewrites a typed phone into the stored form "+CC number".
// Ten-digit national numbers are stored as "(ddd) ddd-dddd"; longer ones
// keep every digit. Input without a separable national number is kept as
// typed.
func NormalizePhone(full string) string {
	full = strings.TrimSpace(full)
	p := SplitCountryAndNumber(full)
	switch {
	case p.Number == "":
		return full
	case len(p.Number) > maxNationalDigits:
		return p.CountryCode + " " + p.Number
	default:
		return JoinCountryAndNumber(p.CountryCode, FormatPhoneDisplay(p.Number))
	}
}
