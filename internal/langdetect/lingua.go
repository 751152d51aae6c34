package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

var reviewLanguages = []lingua.Language{
	lingua.Arabic,
	lingua.Chinese,
	lingua.Czech,
	lingua.Danish,
	lingua.Dutch,
	lingua.English,
	lingua.Finnish,
	lingua.French,
	lingua.German,
	lingua.Greek,
	lingua.Hebrew,
	lingua.Hungarian,
	lingua.Italian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Bokmal,
	lingua.Polish,
	lingua.Portuguese,
	lingua.Romanian,
	lingua.Russian,
	lingua.Spanish,
	lingua.Swedish,
	lingua.Thai,
	lingua.Turkish,
	lingua.Ukrainian,
	lingua.Vietnamese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter code of the most likely language of a review,
// or "" when the text has fewer than six letters or lingua has no answer.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Reviews in the exports come from a few dozen languages; restricting the model set
// keeps memory bounded for the CLI.
func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(reviewLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}
