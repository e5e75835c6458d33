package models

// Requests for query HTTP endpoints. Defined in domain for consistency and reuse.

type SymbolStatsRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Date   string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

type DailySummaryRequest struct {
	Date string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

type DateRangeRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Start  string `query:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End    string `query:"end" json:"end" validate:"required,datetime=2006-01-02"`
}

type TopMoversRequest struct {
	Date  string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=500"`
}

type ListSymbolsRequest struct {
	Date string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

type CandleSeriesRequest struct {
	Symbol   string `param:"symbol" json:"symbol" validate:"required"`
	Date     string `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Interval int64  `query:"interval" json:"interval" default:"300" validate:"gt=0"`
	Limit    int    `query:"limit" json:"limit" validate:"gte=0,lte=50000"`
}
