// Package i18n serves localized bot replies from embedded JSON dictionaries.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

//go:embed locales/*.json
var localesFS embed.FS

// SupportedLanguages lists the languages with an embedded dictionary. The first one is the fallback.
var SupportedLanguages = []string{"en", "uk"}

// languageAliases maps client language codes that differ from the dictionary names.
var languageAliases = map[string]string{
	"ua": "uk",
}

type catalog map[string]string

// Localizer resolves message keys against the embedded dictionaries.
// It is read-only after NewLocalizer and safe for concurrent use.
type Localizer struct {
	catalogs map[string]catalog
}

// NewLocalizer loads the dictionary of every supported language.
func NewLocalizer() (*Localizer, error) {
	catalogs := make(map[string]catalog, len(SupportedLanguages))

	for _, lang := range SupportedLanguages {
		messages, err := readCatalog(lang)
		if err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
		catalogs[lang] = messages
	}

	return &Localizer{catalogs: catalogs}, nil
}

func readCatalog(lang string) (catalog, error) {
	filename := path.Join("locales", lang+".json")
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var messages catalog
	if err = json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locale file %s: %w", filename, err)
	}

	return messages, nil
}

// fallbackLanguage is the language used when a key is missing from the requested dictionary.
func fallbackLanguage() string {
	return SupportedLanguages[0]
}

// Get returns the message for key in lang, then in the fallback language, then the key itself.
func (l *Localizer) Get(lang, key string) string {
	for _, candidate := range []string{lang, fallbackLanguage()} {
		if message, ok := l.catalogs[candidate][key]; ok {
			return message
		}
	}

	return key
}

// GetWithData returns the message for key with every {name} placeholder replaced by data[name].
// Placeholders without data are left as they are.
func (l *Localizer) GetWithData(lang, key string, data map[string]any) string {
	pairs := make([]string, 0, 2*len(data)) //nolint:mnd // old/new pairs
	for name, value := range data {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}

	return strings.NewReplacer(pairs...).Replace(l.Get(lang, key))
}

// NormalizeLanguageCode maps a Telegram language code such as "en-US" or "ua" to a supported
// language, or to the fallback language when there is no match.
func NormalizeLanguageCode(telegramLang string) string {
	base, _, _ := strings.Cut(strings.ToLower(telegramLang), "-")
	base, _, _ = strings.Cut(base, "_")
	if alias, ok := languageAliases[base]; ok {
		base = alias
	}

	for _, lang := range SupportedLanguages {
		if lang == base {
			return lang
		}
	}

	return fallbackLanguage()
}
