package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Root объединяет все конфигурационные блоки configs/pipeline.yaml.
	Root struct {
		Pipeline       Pipeline           `yaml:"pipeline"`
		Search         Search             `yaml:"search"`
		Scoring        Scoring            `yaml:"scoring"`
		SourcePriority map[string]float64 `yaml:"source_priority"`
		Gemini         Gemini             `yaml:"gemini"`
		Mail           Mail               `yaml:"mail"`
		Storage        Storage            `yaml:"storage"`
		Schedule       Schedule           `yaml:"schedule"`
	}

	// Pipeline описывает параметры главного прогона.
	Pipeline struct {
		DaysAgo          int           `yaml:"days_ago"`
		Period           string        `yaml:"period"`
		Categories       []string      `yaml:"categories"`
		SearchDelay      time.Duration `yaml:"search_delay"`
		FullTextDelay    time.Duration `yaml:"fulltext_delay"`
		FullTextMaxRunes int           `yaml:"fulltext_max_runes"`
		SnippetMaxRunes  int           `yaml:"snippet_max_runes"`
		ExportDir        string        `yaml:"export_dir"`
	}

	// Search содержит параметры двух поисковых источников.
	Search struct {
		NaverEndpoint  string        `yaml:"naver_endpoint"`
		NaverDisplay   int           `yaml:"naver_display"`
		GoogleEndpoint string        `yaml:"google_endpoint"`
		GoogleNum      int           `yaml:"google_num"`
		GoogleLanguage string        `yaml:"google_language"`
		Timeout        time.Duration `yaml:"timeout"`
	}

	// Scoring — константы стратегической оценки.
	Scoring struct {
		TopN                int             `yaml:"top_n"`
		SimilarityThreshold float64         `yaml:"similarity_threshold"`
		ComboScores         ComboScores     `yaml:"combo_scores"`
		Weights             Weights         `yaml:"weights"`
		RecencyBase         float64         `yaml:"recency_base"`
		RecencyDecay        float64         `yaml:"recency_decay"`
		CompetitorBoost     CompetitorBoost `yaml:"competitor_boost"`
	}

	// ComboScores — базовые баллы tier1..tier6, строго убывающие.
	ComboScores struct {
		MainProductMainCompany   float64 `yaml:"main_product_main_company"`
		MainProductBonusCompany  float64 `yaml:"main_product_bonus_company"`
		MainCompanyBonusProduct  float64 `yaml:"main_company_bonus_product"`
		MainOnly                 float64 `yaml:"main_only"`
		BonusProductBonusCompany float64 `yaml:"bonus_product_bonus_company"`
		BonusCompanyOnly         float64 `yaml:"bonus_company_only"`
	}

	// Weights задаёт аддитивные надбавки.
	Weights struct {
		TitleBoost      float64 `yaml:"title_boost"`
		MultiCompetitor float64 `yaml:"multi_competitor"`
		ExposureCount   float64 `yaml:"exposure_count"`
	}

	// CompetitorBoost — плоская надбавка за свежие новости конкурентов.
	CompetitorBoost struct {
		Today   float64 `yaml:"today"`
		OneDay  float64 `yaml:"one_day"`
		TwoDays float64 `yaml:"two_days"`
	}

	// Gemini содержит настройки модели для суммаризации.
	Gemini struct {
		ModelSummary   string        `yaml:"model_summary"`
		SystemPrompt   string        `yaml:"system_prompt"`
		ContentMaxRune int           `yaml:"content_max_runes"`
		RequestDelay   time.Duration `yaml:"request_delay"`
	}

	// Mail описывает параметры письма с дайджестом.
	Mail struct {
		SubjectPrefix string   `yaml:"subject_prefix"`
		From          string   `yaml:"from"`
		To            []string `yaml:"to"`
		CC            []string `yaml:"cc"`
		DraftDir      string   `yaml:"draft_dir"`
	}

	// Storage описывает пути к локальному состоянию.
	Storage struct {
		StatsDB      string `yaml:"stats_db"`
		SnapshotPath string `yaml:"snapshot_path"`
	}

	// Schedule задаёт расписание для режима schedule.
	Schedule struct {
		Cron     string `yaml:"cron"`
		Timezone string `yaml:"timezone"`
	}
)

// Default возвращает эталонную конфигурацию; значения из YAML накладываются поверх неё.
func Default() Root {
	return Root{
		Pipeline: Pipeline{
			DaysAgo:          7,
			Period:           "last_7_days",
			SearchDelay:      500 * time.Millisecond,
			FullTextDelay:    300 * time.Millisecond,
			FullTextMaxRunes: 3000,
			SnippetMaxRunes:  500,
			ExportDir:        "result",
		},
		Search: Search{
			NaverEndpoint:  "https://openapi.naver.com/v1/search/news.json",
			NaverDisplay:   20,
			GoogleEndpoint: "https://news.google.com/rss/search",
			GoogleNum:      20,
			GoogleLanguage: "en",
			Timeout:        10 * time.Second,
		},
		Scoring: DefaultScoring(),
		SourcePriority: map[string]float64{
			"ICIS":          1.3,
			"Platts":        1.3,
			"Reuters":       1.2,
			"Bloomberg":     1.2,
			"Chemical Week": 1.15,
			"McKinsey":      1.15,
			"네이버뉴스":         1.0,
			"연합뉴스":          1.05,
			"한국경제":          1.0,
			"매일경제":          1.0,
			"BBC":           1.1,
			"Google News":   1.0,
		},
		Gemini: Gemini{
			ModelSummary:   "gemini-2.5-flash",
			SystemPrompt:   "석유화학/폴리머 산업 전문가로서 뉴스를 2-3문장으로 한글 요약하세요.\n핵심 내용과 시장 영향을 간결하게 작성하세요.",
			ContentMaxRune: 2000,
			RequestDelay:   500 * time.Millisecond,
		},
		Mail: Mail{
			SubjectPrefix: "[Polymer 뉴스]",
			DraftDir:      "drafts",
		},
		Storage: Storage{
			StatsDB:      "state/stats.db",
			SnapshotPath: "state/last_run.json",
		},
		Schedule: Schedule{
			Cron:     "0 8 * * 1-5",
			Timezone: "Asia/Seoul",
		},
	}
}

// DefaultScoring возвращает эталонные константы оценки.
func DefaultScoring() Scoring {
	return Scoring{
		TopN:                30,
		SimilarityThreshold: 0.4,
		ComboScores: ComboScores{
			MainProductMainCompany:   10.0,
			MainProductBonusCompany:  9.0,
			MainCompanyBonusProduct:  7.0,
			MainOnly:                 6.0,
			BonusProductBonusCompany: 5.0,
			BonusCompanyOnly:         2.0,
		},
		Weights: Weights{
			TitleBoost:      1.8,
			MultiCompetitor: 1.5,
			ExposureCount:   1.0,
		},
		RecencyBase:  1.15,
		RecencyDecay: 0.1,
		CompetitorBoost: CompetitorBoost{
			Today:   3.0,
			OneDay:  2.0,
			TwoDays: 1.0,
		},
	}
}

// LoadRoot читает основной файл конфигурации.
func LoadRoot(path string) (Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Root{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Root{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return Root{}, fmt.Errorf("validate scoring: %w", err)
	}
	return cfg, nil
}

// Validate проверяет инварианты констант оценки.
func (s Scoring) Validate() error {
	if s.SimilarityThreshold <= 0 || s.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0,1], got %v", s.SimilarityThreshold)
	}
	tiers := []float64{
		s.ComboScores.MainProductMainCompany,
		s.ComboScores.MainProductBonusCompany,
		s.ComboScores.MainCompanyBonusProduct,
		s.ComboScores.MainOnly,
		s.ComboScores.BonusProductBonusCompany,
		s.ComboScores.BonusCompanyOnly,
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i] >= tiers[i-1] {
			return fmt.Errorf("combo score of tier %d (%v) must be below tier %d (%v)", i+1, tiers[i], i, tiers[i-1])
		}
	}
	if s.RecencyBase <= 0 || s.RecencyDecay < 0 {
		return fmt.Errorf("recency_base must be positive and recency_decay non-negative")
	}
	return nil
}
