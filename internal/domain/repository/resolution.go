package repository

// Resolution is the provider-native candle width, expressed in the
// provider's resolution codes (minutes as a bare number).
type Resolution string

const (
	Res1m  Resolution = "1"
	Res5m  Resolution = "5"
	Res15m Resolution = "15"
	Res60m Resolution = "60"
)

// IsValidResolution returns true if r is a supported resolution.
func IsValidResolution(r Resolution) bool {
	switch r {
	case Res1m, Res5m, Res15m, Res60m:
		return true
	default:
		return false
	}
}

// DefaultResolution returns the default ingestion resolution.
func DefaultResolution() Resolution { return Res5m }

// NormalizeResolution converts a raw string to a valid resolution (or default).
func NormalizeResolution(s string) Resolution {
	if s == "" {
		return DefaultResolution()
	}
	r := Resolution(s)
	if IsValidResolution(r) {
		return r
	}
	return DefaultResolution()
}

// Seconds returns the native candle spacing for the resolution.
func (r Resolution) Seconds() int64 {
	switch r {
	case Res1m:
		return 60
	case Res5m:
		return 300
	case Res15m:
		return 900
	case Res60m:
		return 3600
	default:
		return 300
	}
}
