// Package period переводит выбранный период отчёта в подпись и глубину поиска в днях.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Поддерживаемые периоды.
const (
	Yesterday  = "yesterday"
	ThisWeek   = "this_week"
	Last7Days  = "last_7_days"
	Last30Days = "last_30_days"
	LastWeek   = "last_week"
	ThisMonth  = "this_month"
	LastMonth  = "last_month"
	ThisYear   = "this_year"
	Custom     = "custom"
)

// ErrUnknownPeriod возвращается для неизвестного вида периода.
var ErrUnknownPeriod = errors.New("unknown period")

// Window — разрешённый период отчёта.
type Window struct {
	Kind    string    `json:"kind"`
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	DaysAgo int       `json:"days_ago"`
}

// Kinds возвращает все виды периодов в порядке меню.
func Kinds() []string {
	return []string{Yesterday, ThisWeek, Last7Days, Last30Days, LastWeek, ThisMonth, LastMonth, ThisYear, Custom}
}

// Resolve вычисляет окно для вида kind относительно now.
// start и end используются только для Custom.
func Resolve(kind string, now, start, end time.Time) (Window, error) {
	today := midnight(now)
	w := Window{Kind: kind, End: now}

	switch kind {
	case Yesterday:
		yesterday := today.AddDate(0, 0, -1)
		w.Start = yesterday
		w.End = today.Add(12 * time.Hour)
		w.DaysAgo = 2
		w.Label = fmt.Sprintf("전일+오전 (%s~%s)", md(yesterday), md(now))
	case ThisWeek:
		w.Start = today.AddDate(0, 0, -weekday(now))
		w.DaysAgo = 7
		w.Label = fmt.Sprintf("이번주 (%s~%s)", md(w.Start), md(now))
	case Last7Days:
		w.Start = now.AddDate(0, 0, -7)
		w.DaysAgo = 7
		w.Label = fmt.Sprintf("최근 일주일 (%s~%s)", md(w.Start), md(now))
	case Last30Days:
		w.Start = now.AddDate(0, 0, -30)
		w.DaysAgo = 30
		w.Label = fmt.Sprintf("최근 30일 (%s~%s)", md(w.Start), md(now))
	case LastWeek:
		w.Start = today.AddDate(0, 0, -(weekday(now) + 7))
		w.End = w.Start.AddDate(0, 0, 6)
		w.DaysAgo = 14
		w.Label = fmt.Sprintf("전주 (%s~%s)", md(w.Start), md(w.End))
	case ThisMonth:
		w.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		w.DaysAgo = 30
		w.Label = fmt.Sprintf("이번달 (%s)", w.Start.Format("2006.01"))
	case LastMonth:
		firstThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		w.End = firstThis.AddDate(0, 0, -1)
		w.Start = time.Date(w.End.Year(), w.End.Month(), 1, 0, 0, 0, 0, now.Location())
		w.DaysAgo = 60
		w.Label = fmt.Sprintf("지난달 (%s)", w.Start.Format("2006.01"))
	case ThisYear:
		w.Start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		w.DaysAgo = 365
		w.Label = fmt.Sprintf("올해 (%s)", w.Start.Format("2006"))
	case Custom:
		if start.IsZero() || end.IsZero() || end.Before(start) {
			return Window{}, fmt.Errorf("custom period needs start <= end, got %s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		w.Start = midnight(start)
		w.End = midnight(end)
		w.DaysAgo = int(now.Sub(w.Start).Hours() / 24)
		if w.DaysAgo < 1 {
			w.DaysAgo = 1
		}
		w.Label = fmt.Sprintf("%s~%s", md(w.Start), md(w.End))
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}
	return w, nil
}

// weekday возвращает номер дня недели, понедельник = 0.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func md(t time.Time) string {
	return t.Format("01/02")
}
