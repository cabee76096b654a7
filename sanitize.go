package lingocache

import (
	"strings"
	"unicode/utf8"
)

// labelSeparators are the characters a provider may place between a
// language label and the translation, e.g. "Italian: Ciao".
const labelSeparators = ":：-–"

// SanitizeTranslation scrubs a provider translation for the given
// target locale: stray leading language-label prefixes are stripped
// case-insensitively and surrounding whitespace removed. If the result
// is empty or was label-only, the source text is returned instead so a
// sanitized value is never blank.
//
// The same function runs on the write path (before persisting) and the
// read path (stored values may predate a sanitizer fix).
func SanitizeTranslation(translated, source, targetLocale string) string {
	out := strings.TrimSpace(translated)
	out = stripLanguageLabel(out, targetLocale)
	if out == "" {
		return source
	}
	return out
}

// stripLanguageLabel removes a leading "<language name>:" marker for
// the target locale, checking both the English and native names as
// well as the raw locale codes.
func stripLanguageLabel(s, targetLocale string) string {
	for _, label := range languageLabels(targetLocale) {
		if label == "" {
			continue
		}
		if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
			continue
		}
		rest := strings.TrimLeft(s[len(label):], " \t")
		if rest == "" {
			// Label-only output: nothing usable remains.
			return ""
		}
		if r, size := utf8.DecodeRuneInString(rest); strings.ContainsRune(labelSeparators, r) {
			return strings.TrimSpace(rest[size:])
		}
	}
	return s
}

// languageLabels returns the candidate label spellings for a locale.
func languageLabels(locale string) []string {
	base := BaseLang(locale)
	labels := []string{locale, NormalizeLocale(locale), base}
	if name, ok := LanguageNames[base]; ok {
		labels = append(labels, name)
	}
	if name, ok := NativeNames[base]; ok {
		labels = append(labels, name)
	}
	return labels
}
