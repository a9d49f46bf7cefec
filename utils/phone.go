// Package utils provides utility functions for the application.
package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeNumber canonicalizes a free-form phone number into international
// format. Non-digits are stripped, the local trunk prefix (06/07) is replaced
// with the country calling code and the international-dial prefix (00) is
// removed. Inputs that still do not begin with the country code are returned
// as the original trimmed string so that already-formatted or foreign numbers
// pass through unchanged. The function is pure and idempotent.
func NormalizeNumber(raw string) string {
	trimmed := strings.TrimSpace(raw)

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) >= 2 && digits[0] == '0' && (digits[1] == '6' || digits[1] == '7'):
		digits = CountryCallingCode + digits[1:]
	case strings.HasPrefix(digits, IntlDialPrefix+CountryCallingCode):
		digits = digits[len(IntlDialPrefix):]
	}

	if !strings.HasPrefix(digits, CountryCallingCode) {
		return trimmed
	}

	return "+" + digits
}

// ChatAddress returns the channel-addressable identifier for a raw number:
// the normalized number with the fixed channel suffix appended once.
func ChatAddress(raw string) string {
	addr := NormalizeNumber(raw)
	if !strings.HasSuffix(addr, ChannelSuffix) {
		addr += ChannelSuffix
	}
	return addr
}

// BareDigits strips the channel suffix and any leading plus from an address,
// leaving the form expected by the channel's resolver.
func BareDigits(address string) string {
	address = strings.TrimSuffix(address, ChannelSuffix)
	return strings.TrimPrefix(address, "+")
}

// NumberRegion derives the ISO 3166-1 region for a number, or empty when the
// number cannot be parsed. Advisory only; never blocks a delivery.
func NumberRegion(raw string) string {
	parsed, err := phonenumbers.Parse(NormalizeNumber(strings.TrimSuffix(strings.TrimSpace(raw), ChannelSuffix)), DefaultRegion)
	if err != nil {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(parsed)
}
