// Package textstats computes review length statistics and word frequencies.
package textstats

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinTextChars drops one-word reviews such as "Great!" before analysis.
	MinTextChars = 10
	// MinWordLength excludes short tokens from frequency counts.
	MinWordLength = 3

	DefaultTopWords = 20
	DefaultBins     = 50
)

// Summary is the basic statistics panel.
type Summary struct {
	Count     int     `json:"count"`
	MeanChars float64 `json:"mean_chars"`
	MeanWords float64 `json:"mean_words"`
	MaxChars  int     `json:"max_chars"`
}

// Term is a word or word pair with its count.
type Term struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Bin is one histogram bucket covering [Lower, Upper). The last bucket includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Filter keeps texts longer than MinTextChars code points.
func Filter(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		if utf8.RuneCountInString(strings.TrimSpace(text)) > MinTextChars {
			out = append(out, text)
		}
	}
	return out
}

// Summarize reports count and mean lengths of the texts that pass Filter.
func Summarize(texts []string) Summary {
	kept := Filter(texts)
	summary := Summary{Count: len(kept)}
	if len(kept) == 0 {
		return summary
	}

	var chars, words int
	for _, text := range kept {
		n := utf8.RuneCountInString(text)
		chars += n
		words += len(strings.Fields(text))
		if n > summary.MaxChars {
			summary.MaxChars = n
		}
	}
	summary.MeanChars = float64(chars) / float64(len(kept))
	summary.MeanWords = float64(words) / float64(len(kept))
	return summary
}

// CharLengths returns the code point length of every text that passes Filter.
func CharLengths(texts []string) []float64 {
	kept := Filter(texts)
	out := make([]float64, 0, len(kept))
	for _, text := range kept {
		out = append(out, float64(utf8.RuneCountInString(text)))
	}
	return out
}

// WordCounts returns the whitespace word count of every text that passes Filter.
func WordCounts(texts []string) []float64 {
	kept := Filter(texts)
	out := make([]float64, 0, len(kept))
	for _, text := range kept {
		out = append(out, float64(len(strings.Fields(text))))
	}
	return out
}

// Tokens lowercases text and returns its letter-only words of at least
// MinWordLength letters that are not stopwords.
func Tokens(text string, stopwords map[string]struct{}) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := fields[:0]
	for _, word := range fields {
		if utf8.RuneCountInString(word) < MinWordLength {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		out = append(out, word)
	}
	return out
}

// WordFrequencies counts tokens across the filtered texts and returns the top n,
// ordered by count then word.
func WordFrequencies(texts []string, stopwords map[string]struct{}, n int) []Term {
	counts := make(map[string]int)
	for _, text := range Filter(texts) {
		for _, word := range Tokens(text, stopwords) {
			counts[word]++
		}
	}
	return top(counts, n)
}

// Bigrams counts adjacent token pairs within each text, after stopword removal.
func Bigrams(texts []string, stopwords map[string]struct{}, n int) []Term {
	counts := make(map[string]int)
	for _, text := range Filter(texts) {
		tokens := Tokens(text, stopwords)
		for i := 0; i+1 < len(tokens); i++ {
			counts[tokens[i]+" "+tokens[i+1]]++
		}
	}
	return top(counts, n)
}

// Histogram splits values into bins of equal width between their min and max.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return []Bin{}
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func top(counts map[string]int, n int) []Term {
	terms := make([]Term, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, Term{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
