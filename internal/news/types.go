package news

import "time"

// RankExcluded — служебный ранг для статей, не попавших ни в один допустимый tier.
const RankExcluded = 99

// Article — одна запись, проходящая через весь пайплайн.
// Ingestion заполняет исходные поля, каждая следующая стадия добавляет свои.
type Article struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	FullText string `json:"full_text,omitempty"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Keyword  string `json:"keyword"`
	Category string `json:"category"`

	ExposureCount int       `json:"exposure_count"`
	Match         Match     `json:"match"`
	Scores        Breakdown `json:"scores"`
	RankCombo     int       `json:"rank_combo"`
	StrategyScore float64   `json:"strategy_score"`
	Summary       string    `json:"summary,omitempty"`
}

// Match — результат классификации по таксономии.
type Match struct {
	MainProduct   bool   `json:"has_main_product"`
	MainCompany   bool   `json:"has_main_company"`
	BonusProduct  bool   `json:"has_bonus_product"`
	BonusCompany  bool   `json:"has_bonus_company"`
	MainKeywords  string `json:"main_keywords"`
	BonusKeywords string `json:"bonus_keywords"`
}

// Breakdown хранит промежуточные компоненты оценки.
type Breakdown struct {
	Combo             float64 `json:"score_combo"`
	Title             float64 `json:"score_title"`
	MultiCompetitor   float64 `json:"score_multi_comp"`
	Exposure          float64 `json:"score_exposure"`
	RecencyBoost      float64 `json:"score_recency_boost"`
	Base              float64 `json:"base_score"`
	RecencyMultiplier float64 `json:"recency_mult"`
	SourceMultiplier  float64 `json:"source_mult"`
}

// StatRecord — строка накопительного журнала статистики по категориям.
type StatRecord struct {
	Period     string    `json:"period"`
	Category   string    `json:"category"`
	Count      int       `json:"count"`
	AvgScore   float64   `json:"avg_score"`
	TopKeyword string    `json:"top_keyword"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot — сохранённый результат последнего прогона (режимы build/send/serve).
type Snapshot struct {
	RunID       string    `json:"run_id"`
	PeriodLabel string    `json:"period_label"`
	CreatedAt   time.Time `json:"created_at"`
	Articles    []Article `json:"articles"`
	ReportPath  string    `json:"report_path,omitempty"`
}

// Digest — готовое к отправке письмо.
type Digest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}
