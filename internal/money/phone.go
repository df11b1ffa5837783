package money

import "strings"

// Digits strips everything except 0-9.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders 10 or 11 digit numbers as "(dd) ddddd-dddd".
// Anything else is returned untouched, or "-" when empty.
func FormatPhone(phone string) string {
	d := Digits(phone)
	switch len(d) {
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	}
	if phone == "" {
		return "-"
	}
	return phone
}

// WhatsAppNumber converts a stored phone into the provider address:
// numbers already carrying the 55 country code pass through, local
// 10/11 digit numbers get it prepended.
func WhatsAppNumber(phone string) string {
	d := Digits(phone)
	switch {
	case d == "":
		return ""
	case strings.HasPrefix(d, "55") && len(d) >= 12:
		return d
	case len(d) == 10 || len(d) == 11:
		return "55" + d
	}
	return d
}
