package models

import "strings"

// CleanSymbol maps a provider-native symbol to its canonical bare form used
// for storage keys: the exchange prefix and instrument-type suffix are
// stripped, e.g. "NSE:RELIANCE-EQ" -> "RELIANCE". Total: any input yields a
// usable key.
func CleanSymbol(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// ProviderSymbol maps a canonical symbol back to the provider request form,
// e.g. ("RELIANCE", "NSE", "EQ") -> "NSE:RELIANCE-EQ". Symbols already
// carrying an exchange prefix pass through unchanged.
func ProviderSymbol(s, exchange, series string) string {
	if strings.ContainsRune(s, ':') {
		return s
	}
	return exchange + ":" + strings.ToUpper(s) + "-" + series
}
