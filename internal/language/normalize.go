package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeTag normalizes a language tag to lowercase and "-" separators.
// Returns an empty string when the value is blank or contains invalid characters.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := strings.Split(trimmed, "-")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isAlphaLower(part) {
			return ""
		}
		normalized = append(normalized, part)
	}

	if len(normalized) == 0 {
		return ""
	}
	return strings.Join(normalized, "-")
}

// NormalizeCode returns the primary language subtag (for example, "en" from "en-US").
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

// CanonicalCode resolves deprecated or aliased codes ("iw" -> "he", "in" -> "id")
// through the BCP 47 registry. Unknown but well-formed codes pass through unchanged.
func CanonicalCode(raw string) string {
	code := NormalizeCode(raw)
	if code == "" || code == "und" {
		return code
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return code
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return code
	}
	return base.String()
}

// EnglishName returns the English display name of a code, or the upper-cased code
// when the registry has no name for it.
func EnglishName(raw string) string {
	code := CanonicalCode(raw)
	if code == "" {
		return ""
	}
	tag, err := xlanguage.Parse(code)
	if err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

// NativeName returns the name of the language in itself ("Français" for "fr"),
// or "" when unknown.
func NativeName(raw string) string {
	code := CanonicalCode(raw)
	if code == "" || code == "und" {
		return ""
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return ""
	}
	return display.Self.Name(tag)
}

// Same reports whether two tags share a primary language. Undetermined never matches.
func Same(a, b string) bool {
	left := CanonicalCode(a)
	right := CanonicalCode(b)
	if left == "" || right == "" || left == "und" || right == "und" {
		return false
	}
	return left == right
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
