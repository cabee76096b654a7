package lingocache

import "strings"

// LanguageNames maps base language codes to English display names.
// Used by provider prompts and by the sanitizer's label stripping.
var LanguageNames = map[string]string{
	"en": "English",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"ja": "Japanese",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ko": "Korean",
	"ru": "Russian",
	"ar": "Arabic",
	"he": "Hebrew",
	"hi": "Hindi",
	"nl": "Dutch",
	"pl": "Polish",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"sv": "Swedish",
	"da": "Danish",
	"fi": "Finnish",
	"no": "Norwegian",
	"cs": "Czech",
	"el": "Greek",
	"hu": "Hungarian",
	"ro": "Romanian",
	"uk": "Ukrainian",
	"id": "Indonesian",
	"th": "Thai",
	"bg": "Bulgarian",
	"hr": "Croatian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sr": "Serbian",
}

// NativeNames maps base language codes to the language's own name.
// Providers occasionally prefix output with these labels.
var NativeNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
	"es": "Español",
	"fr": "Français",
	"it": "Italiano",
	"ja": "日本語",
	"pt": "Português",
	"zh": "中文",
	"ko": "한국어",
	"ru": "Русский",
	"ar": "العربية",
	"he": "עברית",
	"hi": "हिन्दी",
	"nl": "Nederlands",
	"pl": "Polski",
	"tr": "Türkçe",
	"vi": "Tiếng Việt",
	"sv": "Svenska",
	"da": "Dansk",
	"fi": "Suomi",
	"no": "Norsk",
	"cs": "Čeština",
	"el": "Ελληνικά",
	"hu": "Magyar",
	"ro": "Română",
	"uk": "Українська",
	"id": "Bahasa Indonesia",
	"th": "ไทย",
	"bg": "Български",
	"hr": "Hrvatski",
	"sk": "Slovenčina",
	"sl": "Slovenščina",
	"sr": "Српски",
}

// NormalizeLocale converts a locale code to the canonical separator
// form (e.g. "pt-BR" → "pt_BR").
func NormalizeLocale(locale string) string {
	return strings.ReplaceAll(locale, "-", "_")
}

// BaseLang extracts the lowercase base language code (e.g. "pt" from
// "pt_BR").
func BaseLang(locale string) string {
	base, _, _ := strings.Cut(NormalizeLocale(locale), "_")
	return strings.ToLower(base)
}

// SameLocale reports whether two locale codes name the same language,
// ignoring separator style and region casing.
func SameLocale(a, b string) bool {
	na := strings.ToLower(NormalizeLocale(a))
	nb := strings.ToLower(NormalizeLocale(b))
	return na == nb
}

// LanguageName returns the English display name for a locale code,
// falling back to the code itself.
func LanguageName(locale string) string {
	if name, ok := LanguageNames[BaseLang(locale)]; ok {
		return name
	}
	return locale
}
