package ranking

import (
	"fmt"
	"testing"

	"github.com/maine/polymer_news/internal/news"
)

func TestSelectTop(t *testing.T) {
	articles := make([]news.Article, 5)
	for i := range articles {
		articles[i] = news.Article{Link: fmt.Sprintf("l%d", i), StrategyScore: float64(10 - i)}
	}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"fewer than available", 3, 3},
		{"exactly available", 5, 5},
		{"more than available", 30, 5},
		{"zero", 0, 0},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectTop(articles, tt.n)
			if len(got) != tt.want {
				t.Fatalf("SelectTop() len = %d, want %d", len(got), tt.want)
			}
			for i := range got {
				if got[i].Link != articles[i].Link {
					t.Errorf("SelectTop()[%d] = %q, want %q", i, got[i].Link, articles[i].Link)
				}
			}
		})
	}
}

func TestSelectTop_DoesNotAlias(t *testing.T) {
	articles := []news.Article{{Link: "a"}, {Link: "b"}}
	got := SelectTop(articles, 1)
	got[0].Link = "changed"
	if articles[0].Link != "a" {
		t.Error("SelectTop() result shares memory with input")
	}
}
