package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

func fixedClock() time.Time {
	return time.Date(2025, 10, 16, 8, 5, 0, 0, time.UTC)
}

func TestFormatter_BuildDigest(t *testing.T) {
	f := NewFormatter(config.Mail{SubjectPrefix: "[Polymer 뉴스]"}, fixedClock)

	tests := []struct {
		name       string
		articles   []news.Article
		wantHTML   []string
		absentHTML []string
		wantText   []string
	}{
		{
			name:       "empty articles",
			articles:   []news.Article{},
			wantHTML:   []string{"(Top 0)", "생성일시: 2025-10-16 08:05"},
			absentHTML: []string{"<table>"},
			wantText:   []string{"(Top 0)"},
		},
		{
			name: "rows are numbered with keywords and link",
			articles: []news.Article{
				{
					Title:   "S-OIL 폴리에틸렌 증설",
					Link:    "https://example.com/1",
					Summary: "에쓰오일이 증설을 발표했다.",
					Match:   news.Match{MainKeywords: "PE, S-OIL", BonusKeywords: "국내유화사"},
				},
				{
					Title: "Aramco deal",
					Link:  "https://example.com/2",
					Match: news.Match{MainKeywords: "ARAMCO"},
				},
			},
			wantHTML: []string{
				"<th style=\"width:3%\">No.</th>",
				"<td style=\"text-align:center\">1</td>",
				"<td>PE, S-OIL</td>",
				"<td>국내유화사</td>",
				"<a href=\"https://example.com/2\">보기</a>",
				"(Top 2)",
			},
			wantText: []string{
				"1. S-OIL 폴리에틸렌 증설\n   [PE, S-OIL / 국내유화사]\n   에쓰오일이 증설을 발표했다.\n   https://example.com/1",
				"2. Aramco deal\n   [ARAMCO]\n   https://example.com/2",
			},
		},
		{
			name: "html in title is escaped",
			articles: []news.Article{
				{Title: "<script>alert(1)</script>", Link: "https://example.com/x"},
			},
			wantHTML:   []string{"&lt;script&gt;"},
			absentHTML: []string{"<script>alert(1)</script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := f.BuildDigest(tt.articles, "최근 일주일 (10/09~10/16)")
			if err != nil {
				t.Fatalf("BuildDigest() error = %v", err)
			}
			if digest.Subject != "[Polymer 뉴스] 최근 일주일 (10/09~10/16) 주요 동향" {
				t.Errorf("Subject = %q", digest.Subject)
			}
			for _, want := range tt.wantHTML {
				if !strings.Contains(digest.HTML, want) {
					t.Errorf("HTML should contain %q", want)
				}
			}
			for _, absent := range tt.absentHTML {
				if strings.Contains(digest.HTML, absent) {
					t.Errorf("HTML should not contain %q", absent)
				}
			}
			for _, want := range tt.wantText {
				if !strings.Contains(digest.Text, want) {
					t.Errorf("Text should contain %q, got:\n%s", want, digest.Text)
				}
			}
		})
	}
}

func TestFormatter_DefaultPrefix(t *testing.T) {
	f := NewFormatter(config.Mail{}, nil)
	if got := f.Subject("이번주"); got != "[Polymer 뉴스] 이번주 주요 동향" {
		t.Errorf("Subject() = %q", got)
	}
}
