package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"nomadlybot/internal/domain/model"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator holds the bot reply strings of one language.
type Translator struct {
	translations map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(data)
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the formatted string for key, or key itself when missing.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle groups translators by language with a fallback to the default language.
type Bundle struct {
	byLang map[model.Language]*Translator
}

func NewBundle(fsys fs.FS, langs []model.Language) (*Bundle, error) {
	b := &Bundle{byLang: make(map[model.Language]*Translator, len(langs))}
	for _, l := range langs {
		tr, err := NewTranslator(fsys, string(l))
		if err != nil {
			return nil, err
		}
		b.byLang[l] = tr
	}
	if _, ok := b.byLang[model.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("translations for %q are required", model.DefaultLanguage)
	}
	return b, nil
}

func (b *Bundle) T(lang model.Language, key string, args ...interface{}) string {
	tr, ok := b.byLang[lang]
	if !ok {
		tr = b.byLang[model.DefaultLanguage]
	}
	if _, found := tr.translations[key]; !found && lang != model.DefaultLanguage {
		tr = b.byLang[model.DefaultLanguage]
	}
	return tr.T(key, args...)
}

// Plural picks key_one or key_other for n.
func (b *Bundle) Plural(lang model.Language, key string, n int) string {
	if n == 1 {
		return b.T(lang, key+"_one", n)
	}
	return b.T(lang, key+"_other", n)
}
