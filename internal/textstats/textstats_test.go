package textstats

import "testing"

func TestSummarize_DropsShortTexts(t *testing.T) {
	t.Parallel()

	texts := []string{
		"Great!",
		"0123456789",
		"Lovely flat near the canal",
		"Quiet room, friendly host",
	}
	got := Summarize(texts)
	if got.Count != 2 {
		t.Fatalf("expected texts of 10 chars or less to be dropped, got %+v", got)
	}
	if got.MeanChars != 25.5 || got.MeanWords != 4.5 || got.MaxChars != 26 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if empty := Summarize(nil); empty.Count != 0 || empty.MeanChars != 0 {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}
}

func TestWordFrequencies(t *testing.T) {
	t.Parallel()

	texts := []string{
		"Great location, clean flat.<br/>Clean bathroom!",
		"The flat was clean and the location superb",
		"London stay was really nice, clean",
	}
	got := WordFrequencies(texts, DefaultStopwords(), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 terms, got %+v", got)
	}
	if got[0] != (Term{Term: "clean", Count: 4}) {
		t.Fatalf("unexpected top term: %+v", got[0])
	}
	if got[1] != (Term{Term: "flat", Count: 2}) || got[2] != (Term{Term: "location", Count: 2}) {
		t.Fatalf("expected ties ordered by word: %+v", got)
	}
	for _, term := range WordFrequencies(texts, DefaultStopwords(), 0) {
		switch term.Term {
		case "br", "london", "great", "the", "was":
			t.Fatalf("stopword %q leaked into frequencies", term.Term)
		}
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	got := Tokens("Très BIEN, 10/10 à refaire", nil)
	want := []string{"très", "bien", "refaire"}
	if len(got) != len(want) {
		t.Fatalf("unexpected tokens: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected tokens: %v", got)
		}
	}
}

func TestBigrams(t *testing.T) {
	t.Parallel()

	texts := []string{
		"walking distance to the tube station",
		"short walking distance from tube station",
	}
	got := Bigrams(texts, DefaultStopwords(), 3)
	want := []string{"distance tube", "tube station", "walking distance"}
	if len(got) != len(want) {
		t.Fatalf("unexpected bigrams: %+v", got)
	}
	for i := range want {
		if got[i].Term != want[i] || got[i].Count != 2 {
			t.Fatalf("unexpected bigrams: %+v", got)
		}
	}
}

func TestHistogram(t *testing.T) {
	t.Parallel()

	got := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(got))
	}
	counts := []int{2, 2, 1, 0, 1}
	for i, want := range counts {
		if got[i].Count != want {
			t.Fatalf("bin %d: got %d want %d (%+v)", i, got[i].Count, want, got)
		}
	}
	if got[4].Upper != 10 {
		t.Fatalf("last bin must end at the maximum, got %v", got[4].Upper)
	}

	single := Histogram([]float64{7, 7}, 10)
	if len(single) != 1 || single[0].Count != 2 {
		t.Fatalf("unexpected degenerate histogram: %+v", single)
	}
	if empty := Histogram(nil, 3); len(empty) != 0 {
		t.Fatalf("expected no bins for no values")
	}
}

func TestLengthSeries_SkipShortTexts(t *testing.T) {
	t.Parallel()

	texts := []string{"ok", "Très bon séjour", "Clean and quiet flat"}
	chars := CharLengths(texts)
	words := WordCounts(texts)
	if len(chars) != 2 || chars[0] != 15 || chars[1] != 20 {
		t.Fatalf("unexpected char lengths: %v", chars)
	}
	if len(words) != 2 || words[0] != 3 || words[1] != 4 {
		t.Fatalf("unexpected word counts: %v", words)
	}
}
