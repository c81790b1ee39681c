package classify

import (
	"testing"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

func testTaxonomy() config.Taxonomy {
	return config.NewTaxonomy(
		[]config.Category{
			{Name: "PE", Keywords: []string{"Polyethylene", "HDPE", "폴리에틸렌"}},
			{Name: "PP", Keywords: []string{"Polypropylene", "폴리프로필렌"}},
		},
		[]config.Category{
			{Name: "S-OIL", Keywords: []string{"S-OIL", "에쓰오일"}},
			{Name: "ARAMCO", Keywords: []string{"Aramco", "아람코"}},
		},
		[]config.Category{
			{Name: "EVA", Keywords: []string{"EVA"}},
		},
		[]config.Category{
			{Name: "국내유화사", Keywords: []string{"LG화학", "롯데케미칼"}},
			{Name: "Global유화사", Keywords: []string{"Sabic", "Dow", "LyondellBasell"}},
		},
		map[string]string{
			"폴리에틸렌":        "polyethylene",
			"polyethylene": "폴리에틸렌",
			"에쓰오일":         "s-oil",
			"아람코":          "aramco",
		},
	)
}

func TestClassify(t *testing.T) {
	tax := testTaxonomy()

	tests := []struct {
		name    string
		article news.Article
		want    news.Match
	}{
		{
			name:    "main product and main company",
			article: news.Article{Title: "S-OIL expands Polyethylene output"},
			want: news.Match{
				MainProduct:  true,
				MainCompany:  true,
				MainKeywords: "PE, S-OIL",
			},
		},
		{
			name:    "synonym in snippet",
			article: news.Article{Title: "시황", Snippet: "polyethylene 가격 하락"},
			want: news.Match{
				MainProduct:  true,
				MainKeywords: "PE",
			},
		},
		{
			name:    "main company only",
			article: news.Article{Title: "Aramco results"},
			want: news.Match{
				MainCompany:  true,
				MainKeywords: "ARAMCO",
			},
		},
		{
			name:    "bonus tiers only",
			article: news.Article{Title: "LG화학 EVA 증설", Snippet: "Sabic 도 참여"},
			want: news.Match{
				BonusProduct:  true,
				BonusCompany:  true,
				BonusKeywords: "EVA, 국내유화사, Global유화사",
			},
		},
		{
			name:    "case insensitive",
			article: news.Article{Title: "hdpe spot prices"},
			want: news.Match{
				MainProduct:  true,
				MainKeywords: "PE",
			},
		},
		{
			name:    "no match",
			article: news.Article{Title: "Weather forecast"},
			want:    news.Match{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.article, tax)
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTitleHasMain(t *testing.T) {
	tax := testTaxonomy()

	tests := []struct {
		title string
		want  bool
	}{
		{"폴리에틸렌 수출 증가", true},
		{"Aramco Q3", true},
		{"Sabic Q3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := TitleHasMain(tt.title, tax); got != tt.want {
				t.Errorf("TitleHasMain(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestCountKeywordHits(t *testing.T) {
	tax := testTaxonomy()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"none", "polyethylene market", 0},
		{"one", "Sabic market", 1},
		{"three across categories", "LG화학, Sabic and Dow", 3},
		{"repeated keyword counted once", "Dow Dow Dow", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountKeywordHits(tt.text, tax, config.TierBonusCompany); got != tt.want {
				t.Errorf("CountKeywordHits() = %d, want %d", got, tt.want)
			}
		})
	}
}
