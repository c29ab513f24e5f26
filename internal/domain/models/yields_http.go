package models

import "YieldDesk/pkg/date"

// Requests for the yield and news HTTP endpoints.

type CurveRequest struct {
	Date       date.Date `query:"date" json:"date"`
	Maturities []string  `query:"maturities" json:"maturities"`
	Format     string    `query:"format" json:"format" default:"json" validate:"oneof=json csv"`
}

type CompareRequest struct {
	Date1      date.Date `query:"date1" json:"date1"`
	Date2      date.Date `query:"date2" json:"date2"`
	Maturities []string  `query:"maturities" json:"maturities"`
	Format     string    `query:"format" json:"format" default:"json" validate:"oneof=json csv"`
}

type HistoryRequest struct {
	Labels []string  `query:"labels" json:"labels"`
	Start  date.Date `query:"start" json:"start"`
	End    date.Date `query:"end" json:"end"`
	Format string    `query:"format" json:"format" default:"json" validate:"oneof=json csv"`
}

type NewsRequest struct {
	Query    string    `query:"q" json:"q" validate:"max=500"`
	PageSize int       `query:"page_size" json:"page_size" default:"20" validate:"gte=1,lte=100"`
	SortBy   string    `query:"sort_by" json:"sort_by" default:"publishedAt" validate:"oneof=publishedAt relevancy popularity"`
	From     date.Date `query:"from" json:"from"`
	To       date.Date `query:"to" json:"to"`
}
