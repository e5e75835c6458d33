package models

// DayStats summarizes one symbol's candles for one calendar date.
type DayStats struct {
	Open           float64 `json:"open"`
	Close          float64 `json:"close"`
	High           float64 `json:"high"`
	Low            float64 `json:"low"`
	Volume         int64   `json:"volume"`
	AvgPrice       float64 `json:"avg_price"`
	PriceChange    float64 `json:"price_change"`
	PriceChangePct float64 `json:"price_change_pct"`
	NumRecords     int     `json:"num_records"`
}

// ComputeDayStats derives day statistics from a time-ordered candle list.
// Empty input yields the zero value; callers decide whether that is an error.
func ComputeDayStats(candles []Candle) DayStats {
	if len(candles) == 0 {
		return DayStats{}
	}
	s := DayStats{
		Open:       candles[0].Open,
		Close:      candles[len(candles)-1].Close,
		High:       candles[0].High,
		Low:        candles[0].Low,
		NumRecords: len(candles),
	}
	var closeSum float64
	for _, c := range candles {
		if c.High > s.High {
			s.High = c.High
		}
		if c.Low < s.Low {
			s.Low = c.Low
		}
		s.Volume += c.Volume
		closeSum += c.Close
	}
	s.AvgPrice = closeSum / float64(len(candles))
	s.PriceChange = s.Close - s.Open
	if s.Open != 0 {
		s.PriceChangePct = s.PriceChange / s.Open * 100
	}
	return s
}

// SymbolStatsResult is the SymbolStats query payload.
type SymbolStatsResult struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Stats  DayStats `json:"stats"`
}

// SummaryEntry is one symbol's row in a daily summary, sorted by
// PriceChangePct descending.
type SummaryEntry struct {
	Symbol string `json:"symbol"`
	DayStats
}

// DailySummaryResult is the DailySummary query payload.
type DailySummaryResult struct {
	Date         string         `json:"date"`
	Summary      []SummaryEntry `json:"summary"`
	TotalSymbols int            `json:"total_symbols"`
}

// DayEntry is per-day stats within a date-range series.
type DayEntry struct {
	Date string `json:"date"`
	DayStats
}

// DateRangeResult is the DateRange query payload. Days without data are
// omitted, never emitted as zero rows.
type DateRangeResult struct {
	Symbol  string     `json:"symbol"`
	Start   string     `json:"start_date"`
	End     string     `json:"end_date"`
	Data    []DayEntry `json:"data"`
	NumDays int        `json:"num_days"`
}

// Mover is one entry in a gainers/losers ranking.
type Mover struct {
	Symbol         string  `json:"symbol"`
	PriceChangePct float64 `json:"price_change_pct"`
	Close          float64 `json:"close"`
	Volume         int64   `json:"volume"`
}

// TopMoversResult is the TopMovers query payload. Gainers and losers are
// ranked independently and may overlap for large limits.
type TopMoversResult struct {
	Date    string  `json:"date"`
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}

// CandleSeriesResult is the resampled candle series payload.
type CandleSeriesResult struct {
	Symbol          string   `json:"symbol"`
	IntervalSeconds int64    `json:"interval_seconds"`
	Candles         []Candle `json:"candles"`
	Count           int      `json:"count"`
}
