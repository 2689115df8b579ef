package ranking

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenRe matches runs of two or more word characters.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Outcome tells whether a corpus could be vectorized.
type Outcome int

const (
	// OutcomeScored means every document got a vector.
	OutcomeScored Outcome = iota
	// OutcomeDegenerate means the joint vocabulary is empty after stop word
	// removal and no document can be compared.
	OutcomeDegenerate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScored:
		return "scored"
	case OutcomeDegenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// Vector is a sparse TF-IDF row. Indices are sorted and point into the
// vocabulary of the Vectorization it came from.
type Vector struct {
	Indices []int
	Values  []float64
}

// Vectorization is the result of Vectorize. Vectors are only set for
// OutcomeScored, in corpus order.
type Vectorization struct {
	Outcome    Outcome
	Vocabulary []string
	Vectors    []Vector
}

func (v *Vectorization) Degenerate() bool {
	return v.Outcome == OutcomeDegenerate
}

// Tokenize lowercases text and returns its tokens without stop words.
func Tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, token := range raw {
		if IsStopWord(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Vectorize computes L2 normalized TF-IDF vectors for docs using raw term
// counts and the smoothed idf ln((1+n)/(1+df))+1. The vocabulary is sorted
// alphabetically.
func Vectorize(docs []string) *Vectorization {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, token := range Tokenize(doc) {
			counts[i][token]++
		}
		for token := range counts[i] {
			df[token]++
		}
	}

	if len(df) == 0 {
		return &Vectorization{Outcome: OutcomeDegenerate}
	}

	vocabulary := make([]string, 0, len(df))
	for token := range df {
		vocabulary = append(vocabulary, token)
	}
	sort.Strings(vocabulary)

	n := float64(len(docs))
	idf := make([]float64, len(vocabulary))
	for i, token := range vocabulary {
		idf[i] = math.Log((1+n)/(1+float64(df[token]))) + 1
	}

	vectors := make([]Vector, len(docs))
	for d := range docs {
		var vec Vector
		var norm float64
		for i, token := range vocabulary {
			tf, ok := counts[d][token]
			if !ok {
				continue
			}
			weight := float64(tf) * idf[i]
			vec.Indices = append(vec.Indices, i)
			vec.Values = append(vec.Values, weight)
			norm += weight * weight
		}

		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec.Values {
				vec.Values[i] /= norm
			}
		}
		vectors[d] = vec
	}

	return &Vectorization{
		Outcome:    OutcomeScored,
		Vocabulary: vocabulary,
		Vectors:    vectors,
	}
}

// Cosine returns the cosine similarity of two sparse vectors, 0 when either
// of them is empty. The result is clamped to [0, 1].
func Cosine(a, b Vector) float64 {
	dot := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}

	normA, normB := norm(a), norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (normA * normB)
	return math.Max(0, math.Min(1, sim))
}

func norm(v Vector) float64 {
	sum := 0.0
	for _, value := range v.Values {
		sum += value * value
	}
	return math.Sqrt(sum)
}
