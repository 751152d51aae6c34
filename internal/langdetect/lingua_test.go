package langdetect

import "testing"

func TestDetectISO6391_ShortTextIsUndetermined(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "ok!", "5 * 5"} {
		if got := DetectISO6391(text); got != "" {
			t.Fatalf("DetectISO6391(%q) = %q, want empty", text, got)
		}
	}
}
