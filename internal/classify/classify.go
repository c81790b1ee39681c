// Package classify сопоставляет текст статьи с таксономией ключевых слов.
package classify

import (
	"strings"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

// Contains сообщает, встречается ли ключевое слово или его синоним в тексте без учёта регистра.
func Contains(text, keyword string, tax config.Taxonomy) bool {
	lower := strings.ToLower(text)
	for _, variant := range tax.Variants(keyword) {
		if variant != "" && strings.Contains(lower, variant) {
			return true
		}
	}
	return false
}

// Classify проверяет title+snippet статьи по четырём уровням таксономии.
func Classify(article news.Article, tax config.Taxonomy) news.Match {
	text := article.Title + " " + article.Snippet

	mainProduct := matchedCategories(text, tax.MainProduct, tax)
	mainCompany := matchedCategories(text, tax.MainCompany, tax)
	bonusProduct := matchedCategories(text, tax.BonusProduct, tax)
	bonusCompany := matchedCategories(text, tax.BonusCompany, tax)

	return news.Match{
		MainProduct:   len(mainProduct) > 0,
		MainCompany:   len(mainCompany) > 0,
		BonusProduct:  len(bonusProduct) > 0,
		BonusCompany:  len(bonusCompany) > 0,
		MainKeywords:  strings.Join(append(mainProduct, mainCompany...), ", "),
		BonusKeywords: strings.Join(append(bonusProduct, bonusCompany...), ", "),
	}
}

// TitleHasMain сообщает, есть ли в заголовке хотя бы одно ключевое слово Main-уровня.
func TitleHasMain(title string, tax config.Taxonomy) bool {
	for _, kw := range tax.Keywords(config.TierMainProduct, config.TierMainCompany) {
		if Contains(title, kw, tax) {
			return true
		}
	}
	return false
}

// CountKeywordHits считает, сколько разных ключевых слов уровня встречается в тексте.
// Синонимы, записанные отдельными ключевыми словами, считаются отдельно.
func CountKeywordHits(text string, tax config.Taxonomy, tier config.Tier) int {
	seen := make(map[string]struct{})
	count := 0
	for _, kw := range tax.Keywords(tier) {
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if Contains(text, kw, tax) {
			count++
		}
	}
	return count
}

func matchedCategories(text string, categories []config.Category, tax config.Taxonomy) []string {
	var names []string
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if Contains(text, kw, tax) {
				names = append(names, cat.Name)
				break
			}
		}
	}
	return names
}
