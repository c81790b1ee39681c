// Package dateparse приводит разнородные строки дат из поисковых источников
// («3일 전», «2 hours ago», RFC-2822, «2025-10-14», «2025.10.14») к сравнимому времени.
// Один и тот же разбор используется и фильтром по дате, и оценкой свежести.
package dateparse

import (
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDaysAgo — смещение в днях для строк, которые не удалось разобрать.
const DefaultDaysAgo = 7

// maxDaysBack ограничивает относительное смещение, чтобы не переполнить time.Duration.
const maxDaysBack = 36500

var firstNumber = regexp.MustCompile(`\d+`)

var (
	hourMarkers  = []string{"hour", "minute", "시간", "분"}
	dayMarkers   = []string{"day", "일 전"}
	weekMarkers  = []string{"week", "주"}
	monthMarkers = []string{"month", "달", "개월"}
)

// Parse разбирает строку даты. Возвращает false, если ни один формат не подошёл.
// Смещение часового пояса отбрасывается: результат — «настенное» время в зоне now.
func Parse(value string, now time.Time) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if t, ok := parseRelative(value, now); ok {
		return t, true
	}

	if t, err := mail.ParseDate(value); err == nil {
		return wallClock(t, now.Location()), true
	}

	if len(value) >= 10 {
		prefix := value[:10]
		for _, layout := range []string{"2006-01-02", "2006.01.02"} {
			if t, err := time.ParseInLocation(layout, prefix, now.Location()); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// DaysAgo возвращает приблизительное число полных дней между датой и now.
// Неразобранная дата даёт DefaultDaysAgo, даты из будущего — 0.
func DaysAgo(value string, now time.Time) int {
	t, ok := Parse(value, now)
	if !ok {
		return DefaultDaysAgo
	}
	days := int(now.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func parseRelative(value string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(value)

	// «2주일 전» содержит «일 전», поэтому недели проверяются раньше дней.
	switch {
	case containsAny(lower, hourMarkers):
		return now, true
	case containsAny(lower, weekMarkers):
		return daysBefore(now, value, 7), true
	case containsAny(lower, dayMarkers):
		return daysBefore(now, value, 1), true
	case containsAny(lower, monthMarkers):
		return daysBefore(now, value, 30), true
	default:
		return time.Time{}, false
	}
}

func daysBefore(now time.Time, value string, unit int) time.Time {
	days := leadingCount(value)
	if days > maxDaysBack/unit {
		days = maxDaysBack
	} else {
		days *= unit
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// leadingCount возвращает первое число в строке, 1 если чисел нет.
// Слишком длинное число считается максимальным.
func leadingCount(value string) int {
	match := firstNumber.FindString(value)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return maxDaysBack
		}
		return 1
	}
	return n
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
