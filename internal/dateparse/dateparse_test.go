package dateparse

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	now := time.Date(2025, 10, 16, 12, 0, 0, 0, loc)

	tests := []struct {
		name   string
		value  string
		want   time.Time
		wantOK bool
	}{
		{name: "korean days ago", value: "3일 전", want: now.Add(-3 * 24 * time.Hour), wantOK: true},
		{name: "english hours ago", value: "2 hours ago", want: now, wantOK: true},
		{name: "korean minutes ago", value: "15분 전", want: now, wantOK: true},
		{name: "english days ago", value: "5 days ago", want: now.Add(-5 * 24 * time.Hour), wantOK: true},
		{name: "weeks ago", value: "2 weeks ago", want: now.Add(-14 * 24 * time.Hour), wantOK: true},
		{name: "korean weeks ago", value: "1주 전", want: now.Add(-7 * 24 * time.Hour), wantOK: true},
		{name: "korean one week with 일", value: "1주일 전", want: now.Add(-7 * 24 * time.Hour), wantOK: true},
		{name: "korean two weeks with 일", value: "2주일 전", want: now.Add(-14 * 24 * time.Hour), wantOK: true},
		{name: "huge count is clamped", value: "99999999999 days ago", want: now.Add(-maxDaysBack * 24 * time.Hour), wantOK: true},
		{name: "months ago", value: "2 months ago", want: now.Add(-60 * 24 * time.Hour), wantOK: true},
		{name: "korean months ago", value: "3개월 전", want: now.Add(-90 * 24 * time.Hour), wantOK: true},
		{name: "day without number", value: "a day ago", want: now.Add(-24 * time.Hour), wantOK: true},
		{
			name:   "rfc2822 keeps wall clock",
			value:  "Tue, 14 Oct 2025 11:40:00 +0900",
			want:   time.Date(2025, 10, 14, 11, 40, 0, 0, loc),
			wantOK: true,
		},
		{
			name:   "rfc2822 gmt drops offset",
			value:  "Mon, 13 Oct 2025 07:05:00 GMT",
			want:   time.Date(2025, 10, 13, 7, 5, 0, 0, loc),
			wantOK: true,
		},
		{name: "iso prefix", value: "2025-10-14T08:00:00Z", want: time.Date(2025, 10, 14, 0, 0, 0, 0, loc), wantOK: true},
		{name: "dotted prefix", value: "2025.10.14. 오전 9:12", want: time.Date(2025, 10, 14, 0, 0, 0, 0, loc), wantOK: true},
		{name: "empty", value: "", wantOK: false},
		{name: "garbage", value: "not a date", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.value, now)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := got.Sub(tt.want); diff > time.Second || diff < -time.Second {
				t.Errorf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParse_RealClock(t *testing.T) {
	now := time.Now()
	got, ok := Parse("3일 전", now)
	if !ok {
		t.Fatal("Parse() should accept korean relative date")
	}
	want := time.Now().Add(-72 * time.Hour)
	if diff := got.Sub(want); diff > 5*time.Second || diff < -5*time.Second {
		t.Errorf("Parse() = %v, want about %v", got, want)
	}
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value string
		want  int
	}{
		{"3 hours ago", 0},
		{"1 day ago", 1},
		{"4일 전", 4},
		{"2 weeks ago", 14},
		{"1주일 전", 7},
		{"2주일 전", 14},
		{"2주 전", 14},
		{"99999999999 days ago", maxDaysBack},
		{"999999999999999999999999 weeks ago", maxDaysBack},
		{"5000 months ago", maxDaysBack},
		{"1 month ago", 30},
		{"Tue, 14 Oct 2025 11:40:00 +0000", 2},
		{"2025-10-09", 7},
		{"2025-10-20", 0},
		{"unknown", DefaultDaysAgo},
		{"", DefaultDaysAgo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := DaysAgo(tt.value, now); got != tt.want {
				t.Errorf("DaysAgo(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
