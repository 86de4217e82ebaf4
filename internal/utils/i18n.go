package utils

// Minimal server-side i18n for fixed keys.
// Report content is returned as stored; only API messages are translated.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":          "ok",
		"error.unauthorized": "unauthorized",
	},
	"zh": {
		"health.ok":          "好的",
		"error.unauthorized": "未授权",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
