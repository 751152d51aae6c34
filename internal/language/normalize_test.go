package language

import "testing"

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	if got := NormalizeTag(" EN_us "); got != "en-us" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := NormalizeTag("zh-Hans"); got != "zh-hans" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := NormalizeTag("en--US"); got != "en-us" {
		t.Fatalf("unexpected collapsed tag: %q", got)
	}
	if got := NormalizeTag("en_123"); got != "" {
		t.Fatalf("expected invalid tag to normalize to empty string, got %q", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	if got := NormalizeCode(" EN-us "); got != "en" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode("zh"); got != "zh" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode(" "); got != "" {
		t.Fatalf("expected empty code for blank input, got %q", got)
	}
}

func TestCanonicalCode(t *testing.T) {
	t.Parallel()

	if got := CanonicalCode("iw"); got != "he" {
		t.Fatalf("expected deprecated iw to canonicalize to he, got %q", got)
	}
	if got := CanonicalCode("FR-ca"); got != "fr" {
		t.Fatalf("unexpected canonical code: %q", got)
	}
	if got := CanonicalCode("und"); got != "und" {
		t.Fatalf("expected und to pass through, got %q", got)
	}
}

func TestEnglishName(t *testing.T) {
	t.Parallel()

	if got := EnglishName("fr"); got != "French" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := EnglishName(""); got != "" {
		t.Fatalf("expected empty name for blank input, got %q", got)
	}
}

func TestSame(t *testing.T) {
	t.Parallel()

	if !Same("en-GB", "EN") {
		t.Fatalf("expected en-GB and EN to match")
	}
	if Same("und", "und") {
		t.Fatalf("did not expect und to match")
	}
	if Same("", "en") {
		t.Fatalf("did not expect empty code to match")
	}
}

func TestNativeName(t *testing.T) {
	t.Parallel()

	if got := NativeName("de"); got != "Deutsch" {
		t.Fatalf("unexpected native name: %q", got)
	}
	if got := NativeName("und"); got != "" {
		t.Fatalf("expected empty native name for und, got %q", got)
	}
}
