package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRoot_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
pipeline:
  search_delay: 2s
scoring:
  top_n: 10
source_priority:
  Nikkei: 1.1
mail:
  to: [sales@example.com]
`)

	cfg, err := LoadRoot(path)
	if err != nil {
		t.Fatalf("LoadRoot() error = %v", err)
	}
	if cfg.Scoring.TopN != 10 {
		t.Errorf("TopN = %d, want 10", cfg.Scoring.TopN)
	}
	if cfg.Pipeline.SearchDelay != 2*time.Second {
		t.Errorf("SearchDelay = %v, want 2s", cfg.Pipeline.SearchDelay)
	}
	if cfg.Scoring.SimilarityThreshold != 0.4 || cfg.Scoring.ComboScores.MainProductMainCompany != 10 {
		t.Errorf("defaults lost: %+v", cfg.Scoring)
	}
	if cfg.SourcePriority["Nikkei"] != 1.1 || cfg.SourcePriority["ICIS"] != 1.3 {
		t.Errorf("SourcePriority = %v", cfg.SourcePriority)
	}
	if !reflect.DeepEqual(cfg.Mail.To, []string{"sales@example.com"}) || cfg.Mail.SubjectPrefix != "[Polymer 뉴스]" {
		t.Errorf("Mail = %+v", cfg.Mail)
	}
}

func TestLoadRoot_RepositoryConfig(t *testing.T) {
	cfg, err := LoadRoot(filepath.Join("..", "..", "configs", "pipeline.yaml"))
	if err != nil {
		t.Fatalf("LoadRoot() error = %v", err)
	}
	if cfg.Scoring.TopN != 30 || cfg.Gemini.ModelSummary == "" || cfg.Schedule.Timezone != "Asia/Seoul" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRoot_Errors(t *testing.T) {
	if _, err := LoadRoot(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadRoot() should fail for a missing file")
	}
	if _, err := LoadRoot(writeFile(t, "scoring: [")); err == nil {
		t.Error("LoadRoot() should fail for invalid YAML")
	}
	if _, err := LoadRoot(writeFile(t, "scoring:\n  similarity_threshold: 1.5\n")); err == nil {
		t.Error("LoadRoot() should reject threshold above 1")
	}
}

func TestScoring_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Scoring)
		wantErr bool
	}{
		{name: "defaults", mutate: func(s *Scoring) {}},
		{name: "zero threshold", mutate: func(s *Scoring) { s.SimilarityThreshold = 0 }, wantErr: true},
		{name: "threshold of one", mutate: func(s *Scoring) { s.SimilarityThreshold = 1 }},
		{name: "tiers not decreasing", mutate: func(s *Scoring) { s.ComboScores.MainOnly = 7.0 }, wantErr: true},
		{name: "negative decay", mutate: func(s *Scoring) { s.RecencyDecay = -0.1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScoring()
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTaxonomy(t *testing.T) {
	tax, err := LoadTaxonomy(filepath.Join("..", "..", "configs", "taxonomy.yaml"))
	if err != nil {
		t.Fatalf("LoadTaxonomy() error = %v", err)
	}

	names := tax.CategoryNames()
	want := []string{"PE", "PP", "PO", "S-OIL", "ARAMCO", "SABIC", "POE", "POP", "EVA", "Polyol", "MTBE", "국내유화사", "Global유화사"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("CategoryNames() = %v, want %v", names, want)
	}
	if got := tax.Synonyms["s-oil"]; got != "에쓰오일" {
		t.Errorf("synonym of s-oil = %q", got)
	}
	if tier, ok := tax.TierOf("Global유화사"); !ok || tier != TierBonusCompany {
		t.Errorf("TierOf(Global유화사) = %v, %v", tier, ok)
	}
}

func testTaxonomy() Taxonomy {
	return NewTaxonomy(
		[]Category{{Name: "PE", Keywords: []string{"Polyethylene", "폴리에틸렌"}}},
		[]Category{{Name: "S-OIL", Keywords: []string{"S-OIL", "에쓰오일"}}},
		[]Category{{Name: "EVA", Keywords: []string{"EVA"}}},
		[]Category{{Name: "국내유화사", Keywords: []string{"LG화학"}}},
		map[string]string{" Polyethylene ": "폴리에틸렌", "S-OIL": "에쓰오일"},
	)
}

func TestTaxonomy_Variants(t *testing.T) {
	tax := testTaxonomy()
	tests := []struct {
		keyword string
		want    []string
	}{
		{"Polyethylene", []string{"polyethylene", "폴리에틸렌"}},
		{"s-oil", []string{"s-oil", "에쓰오일"}},
		{"EVA", []string{"eva"}},
	}
	for _, tt := range tests {
		if got := tax.Variants(tt.keyword); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Variants(%q) = %v, want %v", tt.keyword, got, tt.want)
		}
	}
}

func TestTaxonomy_Queries(t *testing.T) {
	tax := testTaxonomy()

	all := tax.Queries(nil)
	if len(all) != 6 {
		t.Fatalf("Queries(nil) len = %d, want 6", len(all))
	}
	if all[0] != (KeywordQuery{Category: "PE", Keyword: "Polyethylene"}) {
		t.Errorf("first query = %+v", all[0])
	}

	selected := tax.Queries([]string{"EVA", "S-OIL", "unknown"})
	want := []KeywordQuery{
		{Category: "S-OIL", Keyword: "S-OIL"},
		{Category: "S-OIL", Keyword: "에쓰오일"},
		{Category: "EVA", Keyword: "EVA"},
	}
	if !reflect.DeepEqual(selected, want) {
		t.Errorf("Queries(selected) = %+v, want %+v", selected, want)
	}
}

func TestTaxonomy_HasMainCategory(t *testing.T) {
	tax := testTaxonomy()
	tests := []struct {
		selected []string
		want     bool
	}{
		{nil, true},
		{[]string{"PE"}, true},
		{[]string{"EVA", "S-OIL"}, true},
		{[]string{"EVA", "국내유화사"}, false},
		{[]string{"unknown"}, false},
	}
	for _, tt := range tests {
		if got := tax.HasMainCategory(tt.selected); got != tt.want {
			t.Errorf("HasMainCategory(%v) = %v, want %v", tt.selected, got, tt.want)
		}
	}
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("NAVER_CLIENT_ID", "id")
	t.Setenv("NAVER_CLIENT_SECRET", "secret")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SKIP_SUMMARY", "1")
	t.Setenv("SKIP_FULLTEXT", "0")

	env := LoadEnvConfig()
	if env.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", env.SMTPPort)
	}
	if env.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", env.LogLevel)
	}
	if !env.SkipSummary || env.SkipFullText {
		t.Errorf("skip flags = %v/%v", env.SkipSummary, env.SkipFullText)
	}
	if err := env.RequireSearch(); err != nil {
		t.Errorf("RequireSearch() error = %v", err)
	}
}

func TestRequireSearch_Missing(t *testing.T) {
	env := &EnvConfig{NaverClientID: "id"}
	if err := env.RequireSearch(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("RequireSearch() error = %v, want ErrMissingCredentials", err)
	}
}
