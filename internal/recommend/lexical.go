package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"NewsRecommender/internal/domain"
)

const (
	defaultMaxFeatures = 5000
	defaultMinDocFreq  = 1
	defaultMaxDocShare = 0.7
	maxNGram           = 3
	titleRepeat        = 3
)

// LexicalStrategy builds TF-IDF feature vectors from article text: a global
// 1..3-gram vocabulary with sub-linear term frequency, smoothed inverse
// document frequency, and L2-normalized rows. The title is concatenated three
// times ahead of the content so title terms dominate.
//
// The vocabulary is fit per corpus snapshot; only corpus members can be
// queried afterwards.
type LexicalStrategy struct {
	// MaxFeatures caps the vocabulary; the most frequent terms win.
	MaxFeatures int
	// MinDocFreq drops terms appearing in fewer documents than this floor.
	MinDocFreq int
	// MaxDocShare drops terms appearing in more than this share of documents.
	MaxDocShare float64
}

var _ Strategy = (*LexicalStrategy)(nil)

// NewLexicalStrategy returns a strategy with the stock vectorizer parameters.
func NewLexicalStrategy() *LexicalStrategy {
	return &LexicalStrategy{
		MaxFeatures: defaultMaxFeatures,
		MinDocFreq:  defaultMinDocFreq,
		MaxDocShare: defaultMaxDocShare,
	}
}

// Name identifies the strategy inside the registry.
func (s *LexicalStrategy) Name() string {
	return "lexical"
}

// RequiresEmbeddings is false: vectors are derived from the text itself.
func (s *LexicalStrategy) RequiresEmbeddings() bool {
	return false
}

// Vectorize fits the vocabulary on the corpus and returns one dense TF-IDF
// vector per article, aligned with the input order.
func (s *LexicalStrategy) Vectorize(articles []domain.Article) ([][]float64, error) {
	maxFeatures := s.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = defaultMaxFeatures
	}
	minDocFreq := s.MinDocFreq
	if minDocFreq <= 0 {
		minDocFreq = defaultMinDocFreq
	}
	maxDocShare := s.MaxDocShare
	if maxDocShare <= 0 || maxDocShare > 1 {
		maxDocShare = defaultMaxDocShare
	}

	docTerms := make([]map[string]int, len(articles))
	docFreq := map[string]int{}
	corpusFreq := map[string]int{}

	for i, article := range articles {
		counts := termCounts(combineText(article))
		docTerms[i] = counts
		for term, count := range counts {
			docFreq[term]++
			corpusFreq[term] += count
		}
	}

	maxDocs := int(maxDocShare * float64(len(articles)))
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < minDocFreq || df > maxDocs {
			continue
		}
		kept = append(kept, term)
	}

	// Most frequent terms first; ties resolved alphabetically so two fits of
	// the same corpus always produce the same vocabulary.
	sort.Slice(kept, func(i, j int) bool {
		if corpusFreq[kept[i]] != corpusFreq[kept[j]] {
			return corpusFreq[kept[i]] > corpusFreq[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if len(kept) > maxFeatures {
		kept = kept[:maxFeatures]
	}
	sort.Strings(kept)

	vocab := make(map[string]int, len(kept))
	for idx, term := range kept {
		vocab[term] = idx
	}

	idf := make([]float64, len(kept))
	totalDocs := float64(len(articles))
	for idx, term := range kept {
		// Smoothed IDF: log((1+n)/(1+df)) + 1 keeps zero-df terms finite and
		// never fully discounts ubiquitous ones.
		idf[idx] = math.Log((1+totalDocs)/(1+float64(docFreq[term]))) + 1
	}

	matrix := make([][]float64, len(articles))
	for i := range articles {
		row := make([]float64, len(kept))
		for term, count := range docTerms[i] {
			idx, ok := vocab[term]
			if !ok {
				continue
			}
			tf := 1 + math.Log(float64(count)) // sub-linear scaling
			row[idx] = tf * idf[idx]
		}
		normalize(row)
		matrix[i] = row
	}

	return matrix, nil
}

func combineText(article domain.Article) string {
	var b strings.Builder
	for i := 0; i < titleRepeat; i++ {
		b.WriteString(article.Title)
		b.WriteByte(' ')
	}
	b.WriteString(article.Content)
	return b.String()
}

// termCounts tokenizes the text and counts 1..3-grams built from the
// stopword-filtered token stream.
func termCounts(text string) map[string]int {
	tokens := tokenize(text)
	counts := map[string]int{}
	for n := 1; n <= maxNGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			counts[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return counts
}

// tokenize lowercases, splits on non-alphanumeric runs, and drops stopwords
// and single-character fragments.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 2 {
			continue
		}
		if _, stop := stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 || math.IsNaN(magnitude) {
		return
	}
	for i := range vec {
		vec[i] /= magnitude
	}
}

// English stopwords filtered before n-gram construction.
var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an",
		"and", "any", "are", "as", "at", "be", "because", "been", "before",
		"being", "below", "between", "both", "but", "by", "can", "could",
		"did", "do", "does", "doing", "down", "during", "each", "few", "for",
		"from", "further", "had", "has", "have", "having", "he", "her", "here",
		"hers", "herself", "him", "himself", "his", "how", "i", "if", "in",
		"into", "is", "it", "its", "itself", "just", "me", "more", "most",
		"my", "myself", "no", "nor", "not", "now", "of", "off", "on", "once",
		"only", "or", "other", "our", "ours", "ourselves", "out", "over",
		"own", "same", "she", "should", "so", "some", "such", "than", "that",
		"the", "their", "theirs", "them", "themselves", "then", "there",
		"these", "they", "this", "those", "through", "to", "too", "under",
		"until", "up", "very", "was", "we", "were", "what", "when", "where",
		"which", "while", "who", "whom", "why", "will", "with", "would",
		"you", "your", "yours", "yourself", "yourselves",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()
