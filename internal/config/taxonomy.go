package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier — один из четырёх уровней таксономии.
type Tier string

const (
	TierMainProduct  Tier = "main_product"
	TierMainCompany  Tier = "main_company"
	TierBonusProduct Tier = "bonus_product"
	TierBonusCompany Tier = "bonus_company"
)

// Category — именованная группа ключевых слов. Порядок категорий в файле сохраняется,
// он определяет порядок имён в main_keywords/bonus_keywords.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy — неизменяемая после загрузки конфигурация ключевых слов.
type Taxonomy struct {
	MainProduct  []Category        `yaml:"main_product"`
	MainCompany  []Category        `yaml:"main_company"`
	BonusProduct []Category        `yaml:"bonus_product"`
	BonusCompany []Category        `yaml:"bonus_company"`
	Synonyms     map[string]string `yaml:"synonyms"`
}

// KeywordQuery — один поисковый запрос с категорией, к которой он относится.
type KeywordQuery struct {
	Category string
	Keyword  string
}

// LoadTaxonomy читает configs/taxonomy.yaml.
func LoadTaxonomy(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy: %w", err)
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return Taxonomy{}, fmt.Errorf("unmarshal taxonomy: %w", err)
	}
	return tax.normalized(), nil
}

// normalized приводит ключи и значения таблицы синонимов к нижнему регистру.
func (t Taxonomy) normalized() Taxonomy {
	syn := make(map[string]string, len(t.Synonyms))
	for k, v := range t.Synonyms {
		syn[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	t.Synonyms = syn
	return t
}

// NewTaxonomy собирает таксономию в коде (используется в тестах и для встраивания).
func NewTaxonomy(mainProduct, mainCompany, bonusProduct, bonusCompany []Category, synonyms map[string]string) Taxonomy {
	return Taxonomy{
		MainProduct:  mainProduct,
		MainCompany:  mainCompany,
		BonusProduct: bonusProduct,
		BonusCompany: bonusCompany,
		Synonyms:     synonyms,
	}.normalized()
}

// Variants возвращает ключевое слово в нижнем регистре и его синоним, если он задан.
func (t Taxonomy) Variants(keyword string) []string {
	kw := strings.ToLower(keyword)
	variants := []string{kw}
	if mapped, ok := t.Synonyms[kw]; ok && mapped != "" {
		variants = append(variants, mapped)
	}
	return variants
}

// Tier возвращает категории указанного уровня.
func (t Taxonomy) Tier(tier Tier) []Category {
	switch tier {
	case TierMainProduct:
		return t.MainProduct
	case TierMainCompany:
		return t.MainCompany
	case TierBonusProduct:
		return t.BonusProduct
	case TierBonusCompany:
		return t.BonusCompany
	default:
		return nil
	}
}

// TierOf возвращает уровень категории по имени.
func (t Taxonomy) TierOf(name string) (Tier, bool) {
	for _, tier := range []Tier{TierMainProduct, TierMainCompany, TierBonusProduct, TierBonusCompany} {
		for _, cat := range t.Tier(tier) {
			if cat.Name == name {
				return tier, true
			}
		}
	}
	return "", false
}

// Keywords разворачивает уровень в плоский список ключевых слов.
func (t Taxonomy) Keywords(tiers ...Tier) []string {
	var out []string
	for _, tier := range tiers {
		for _, cat := range t.Tier(tier) {
			out = append(out, cat.Keywords...)
		}
	}
	return out
}

// CategoryNames возвращает имена всех категорий в порядке уровней.
func (t Taxonomy) CategoryNames() []string {
	var names []string
	for _, tier := range []Tier{TierMainProduct, TierMainCompany, TierBonusProduct, TierBonusCompany} {
		for _, cat := range t.Tier(tier) {
			names = append(names, cat.Name)
		}
	}
	return names
}

// Queries возвращает поисковые запросы для выбранных категорий.
// Пустой selected означает «все категории». Неизвестные имена игнорируются.
func (t Taxonomy) Queries(selected []string) []KeywordQuery {
	want := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		want[name] = struct{}{}
	}

	var out []KeywordQuery
	for _, tier := range []Tier{TierMainProduct, TierMainCompany, TierBonusProduct, TierBonusCompany} {
		for _, cat := range t.Tier(tier) {
			if len(want) > 0 {
				if _, ok := want[cat.Name]; !ok {
					continue
				}
			}
			for _, kw := range cat.Keywords {
				out = append(out, KeywordQuery{Category: cat.Name, Keyword: kw})
			}
		}
	}
	return out
}

// HasMainCategory сообщает, выбрана ли хотя бы одна категория Main-уровня.
func (t Taxonomy) HasMainCategory(selected []string) bool {
	if len(selected) == 0 {
		return len(t.MainProduct)+len(t.MainCompany) > 0
	}
	for _, name := range selected {
		tier, ok := t.TierOf(name)
		if ok && (tier == TierMainProduct || tier == TierMainCompany) {
			return true
		}
	}
	return false
}
