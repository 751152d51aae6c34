package textstats

var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "cannot", "could",
	"did", "didn", "do", "does", "doing", "don", "down", "during", "each", "else",
	"ever", "few", "for", "from", "further", "had", "has", "have", "having", "he",
	"hence", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"however", "http", "i", "if", "in", "into", "is", "isn", "it", "its", "itself",
	"just", "like", "me", "more", "most", "must", "my", "myself", "no", "nor", "not",
	"of", "off", "on", "once", "only", "or", "other", "otherwise", "ought", "our",
	"ours", "ourselves", "out", "over", "own", "same", "shall", "she", "should",
	"since", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "therefore", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "us", "very", "was", "wasn", "we",
	"were", "weren", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "won", "www", "you", "your", "yours", "yourself", "yourselves",
}

// Markup left over from <br/> tags in the review export.
var markupStopwords = []string{"br"}

// Words that dominate every London review and say nothing about a listing.
var reviewStopwords = []string{
	"stay", "great", "good", "get", "would", "london", "little", "really", "well",
	"one", "place", "time", "nice",
}

// DefaultStopwords returns a fresh set of the English, markup and review stopwords.
func DefaultStopwords() map[string]struct{} {
	return StopwordSet(englishStopwords, markupStopwords, reviewStopwords)
}

// StopwordSet merges word lists into a set.
func StopwordSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, word := range list {
			set[word] = struct{}{}
		}
	}
	return set
}
