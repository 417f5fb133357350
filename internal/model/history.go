// internal/model/history.go
package model

// 直近履歴の件数
const (
	DefaultRecentLimit = 3
	MinRecentLimit     = 1
	MaxRecentLimit     = 20
)

// CalendarMark は 1 日あたりの抽選件数です。
type CalendarMark struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DrawRangeFilter は期間指定の履歴検索条件です。Start/End は YYYY-MM-DD。
type DrawRangeFilter struct {
	Start     string
	End       string
	CardCount *int
}

// DateRangeQuery は marks / 一覧のクエリパラメータです。
type DateRangeQuery struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}
