package users

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var localeFiles = []string{
	"locales/active.en.json",
	"locales/active.id.json",
}

// Localizer resolves message keys into text for a requested language,
// falling back to English for unsupported locales.
type Localizer struct {
	bundle *i18n.Bundle
}

// NewLocalizer loads the embedded message catalogs.
func NewLocalizer() (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("unable to load message catalog %q: %w", file, err)
		}
	}

	return &Localizer{bundle: bundle}, nil
}

// Translate renders key for the given Accept-Language value. The header
// is passed through as-is; quality values and unsupported tags resolve
// to the default language silently. Unknown keys come back verbatim so
// a missing catalog entry never hides the failure it describes.
func (l *Localizer) Translate(lang, key string, data map[string]any) string {
	loc := i18n.NewLocalizer(l.bundle, lang)
	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}
