package dedup

import (
	"errors"
	"math"
	"regexp"
	"unicode/utf8"
)

// ErrEmptyVocabulary возвращается, если ни в одном документе не нашлось ни одного токена.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// Токен — непрерывная последовательность букв/цифр длиной от двух символов.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) >= 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// SimilarityMatrix строит TF-IDF векторы (сглаженный idf, l2-нормировка)
// и возвращает попарное косинусное сходство документов.
func SimilarityMatrix(texts []string) ([][]float64, error) {
	n := len(texts)
	docs := make([]map[string]float64, n)
	df := make(map[string]int)

	for i, text := range texts {
		tf := make(map[string]float64)
		for _, tok := range tokenize(text) {
			tf[tok]++
		}
		for tok := range tf {
			df[tok]++
		}
		docs[i] = tf
	}

	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log(float64(1+n)/float64(1+count)) + 1
	}

	for _, vec := range docs {
		var norm float64
		for tok, tf := range vec {
			w := tf * idf[tok]
			vec[tok] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for tok := range vec {
			vec[tok] /= norm
		}
	}

	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if len(docs[i]) > 0 {
			sim[i][i] = 1
		}
		for j := i + 1; j < n; j++ {
			s := dot(docs[i], docs[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim, nil
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for tok, w := range a {
		sum += w * b[tok]
	}
	return sum
}
