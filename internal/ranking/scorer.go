package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/classify"
	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/dateparse"
	"github.com/maine/polymer_news/internal/news"
)

// Params — неизменяемый набор настроек одного прогона оценки.
type Params struct {
	Scoring        config.Scoring
	SourcePriority map[string]float64
	Taxonomy       config.Taxonomy
	Now            time.Time
}

// Scorer реализует app.Scorer.
type Scorer struct {
	scoring        config.Scoring
	sourcePriority map[string]float64
	taxonomy       config.Taxonomy
	clock          func() time.Time
	logger         zerolog.Logger
}

// NewScorer создаёт оценщик. clock == nil означает time.Now.
func NewScorer(scoring config.Scoring, sourcePriority map[string]float64, tax config.Taxonomy, clock func() time.Time, logger zerolog.Logger) *Scorer {
	if clock == nil {
		clock = time.Now
	}
	return &Scorer{
		scoring:        scoring,
		sourcePriority: sourcePriority,
		taxonomy:       tax,
		clock:          clock,
		logger:         logger,
	}
}

// Score реализует app.Scorer.
func (s *Scorer) Score(articles []news.Article) []news.Article {
	scored := Score(articles, Params{
		Scoring:        s.scoring,
		SourcePriority: s.sourcePriority,
		Taxonomy:       s.taxonomy,
		Now:            s.clock(),
	})

	byTier := make(map[int]int)
	for _, a := range scored {
		byTier[a.RankCombo]++
	}
	s.logger.Info().
		Int("before", len(articles)).
		Int("eligible", len(scored)).
		Interface("by_tier", byTier).
		Msg("strategy scores computed")
	return scored
}

// Score классифицирует и оценивает статьи, отбрасывает исключённые (rank 99)
// и сортирует: rank_combo по возрастанию, затем strategy_score по убыванию.
// Вход не изменяется.
func Score(articles []news.Article, p Params) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if scored, ok := ScoreArticle(a, p); ok {
			out = append(out, scored)
		}
	}
	if len(out) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RankCombo != out[j].RankCombo {
			return out[i].RankCombo < out[j].RankCombo
		}
		return out[i].StrategyScore > out[j].StrategyScore
	})
	return out
}

// ScoreArticle оценивает одну статью. false означает, что статья исключена.
func ScoreArticle(a news.Article, p Params) (news.Article, bool) {
	a.Match = classify.Classify(a, p.Taxonomy)

	combo, rank := AssignTier(a.Match, p.Scoring.ComboScores)
	a.RankCombo = rank
	if rank == news.RankExcluded {
		return a, false
	}

	w := p.Scoring.Weights
	b := news.Breakdown{Combo: combo}

	if classify.TitleHasMain(a.Title, p.Taxonomy) {
		b.Title = w.TitleBoost
	}

	hits := classify.CountKeywordHits(a.Title+" "+a.Snippet, p.Taxonomy, config.TierBonusCompany)
	if hits >= 2 {
		b.MultiCompetitor = float64(hits-1) * w.MultiCompetitor
	}

	exposure := a.ExposureCount
	if exposure < 1 {
		exposure = 1
	}
	a.ExposureCount = exposure
	b.Exposure = math.Log1p(float64(exposure)) * w.ExposureCount

	if involvesCompetitor(rank) {
		b.RecencyBoost = CompetitorRecencyBoost(a.Date, p.Scoring.CompetitorBoost)
	}

	b.Base = b.Combo + b.Title + b.MultiCompetitor + b.Exposure + b.RecencyBoost
	b.RecencyMultiplier = RecencyMultiplier(a.Date, p.Scoring.RecencyBase, p.Scoring.RecencyDecay, p.Now)
	b.SourceMultiplier = SourceMultiplier(a.Source, p.SourcePriority)

	a.Scores = b
	a.StrategyScore = b.Base * b.RecencyMultiplier * b.SourceMultiplier
	return a, true
}

// AssignTier возвращает базовый балл и номер уровня по первому подходящему правилу.
func AssignTier(m news.Match, c config.ComboScores) (float64, int) {
	mp, mc, bp, bc := m.MainProduct, m.MainCompany, m.BonusProduct, m.BonusCompany
	switch {
	case mp && mc:
		return c.MainProductMainCompany, 1
	case mp && bc:
		return c.MainProductBonusCompany, 2
	case mc && bp:
		return c.MainCompanyBonusProduct, 3
	case mp || mc:
		return c.MainOnly, 4
	case bp && bc:
		return c.BonusProductBonusCompany, 5
	case bc:
		return c.BonusCompanyOnly, 6
	default:
		return 0, news.RankExcluded
	}
}

// involvesCompetitor сообщает, есть ли в уровне совпадение Bonus-компании.
func involvesCompetitor(rank int) bool {
	return rank == 2 || rank == 5 || rank == 6
}

// todayMarkers уже, чем разбор дат: английские «minutes ago» надбавку не получают.
var todayMarkers = []string{"hour", "시간", "분"}

// CompetitorRecencyBoost даёт плоскую надбавку за свежие новости конкурентов.
// Проверяются только буквальные «N hours/분/시간», «1 day/1일», «2 day/2일».
func CompetitorRecencyBoost(date string, boost config.CompetitorBoost) float64 {
	lower := strings.ToLower(date)
	switch {
	case containsAnyMarker(lower, todayMarkers):
		return boost.Today
	case strings.Contains(lower, "1 day") || strings.Contains(lower, "1일"):
		return boost.OneDay
	case strings.Contains(lower, "2 day") || strings.Contains(lower, "2일"):
		return boost.TwoDays
	default:
		return 0
	}
}

// RecencyMultiplier = base / (1 + decay*days). Пустая дата даёт 1.0.
func RecencyMultiplier(date string, base, decay float64, now time.Time) float64 {
	if strings.TrimSpace(date) == "" {
		return 1.0
	}
	days := dateparse.DaysAgo(date, now)
	return base / (1.0 + decay*float64(days))
}

// SourceMultiplier возвращает коэффициент доверия к источнику, 1.0 для неизвестных.
func SourceMultiplier(source string, table map[string]float64) float64 {
	if m, ok := table[source]; ok {
		return m
	}
	return 1.0
}

func containsAnyMarker(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
