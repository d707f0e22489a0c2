// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	return format(input, phonenumbers.E164)
}

// Display formats a phone number for directory listings, e.g. "(212) 555-0100".
// Numbers outside the default region keep their international form.
func Display(input string) string {
	trimmed := strings.TrimSpace(input)
	number, ok := parse(trimmed)
	if !ok {
		return trimmed
	}
	if phonenumbers.GetRegionCodeForNumber(number) == defaultRegion {
		return phonenumbers.Format(number, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

func format(input string, style phonenumbers.PhoneNumberFormat) string {
	trimmed := strings.TrimSpace(input)
	number, ok := parse(trimmed)
	if !ok {
		return trimmed
	}
	return phonenumbers.Format(number, style)
}

func parse(trimmed string) (*phonenumbers.PhoneNumber, bool) {
	if trimmed == "" {
		return nil, false
	}
	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return nil, false
	}
	if !phonenumbers.IsValidNumber(number) {
		return nil, false
	}
	return number, true
}
