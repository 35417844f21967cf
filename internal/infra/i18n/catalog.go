package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"

	"gopkg.in/yaml.v3"
)

//go:embed promos
var PromosFS embed.FS

// Catalog is the static (language, theme, index) -> text lookup table.
type Catalog struct {
	variants map[model.Language]map[model.Theme][]string
	langs    []model.Language
}

// LoadCatalog reads promos/<lang>.yaml for every language and checks that each
// theme carries exactly model.VariationCount non-empty variants.
func LoadCatalog(fsys fs.FS, langs []model.Language) (*Catalog, error) {
	if len(langs) == 0 {
		return nil, fmt.Errorf("%w: no languages", domain.ErrInvalidCatalog)
	}
	c := &Catalog{variants: make(map[model.Language]map[model.Theme][]string, len(langs))}

	for _, lang := range langs {
		data, err := fs.ReadFile(fsys, path.Join("promos", string(lang)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidCatalog, lang, err)
		}
		var raw map[model.Theme][]string
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidCatalog, lang, err)
		}
		for _, theme := range model.Themes() {
			vs := raw[theme]
			if len(vs) != model.VariationCount {
				return nil, fmt.Errorf("%w: %s/%s has %d variants, want %d",
					domain.ErrInvalidCatalog, lang, theme, len(vs), model.VariationCount)
			}
			for i, v := range vs {
				if strings.TrimSpace(v) == "" {
					return nil, fmt.Errorf("%w: %s/%s variant %d is empty", domain.ErrInvalidCatalog, lang, theme, i+1)
				}
			}
		}
		c.variants[lang] = raw
		c.langs = append(c.langs, lang)
	}
	if _, ok := c.variants[model.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("%w: default language %q missing", domain.ErrInvalidCatalog, model.DefaultLanguage)
	}
	return c, nil
}

// Variant returns the static text for (lang, theme, index). Unknown languages
// fall back to the default language; the index wraps modulo the variant count.
func (c *Catalog) Variant(lang model.Language, theme model.Theme, index int) string {
	byTheme, ok := c.variants[lang]
	if !ok || len(byTheme[theme]) == 0 {
		byTheme = c.variants[model.DefaultLanguage]
	}
	vs := byTheme[theme]
	if len(vs) == 0 {
		return ""
	}
	return vs[model.NormalizeIndex(index)]
}

// Supports reports whether lang has its own catalog.
func (c *Catalog) Supports(lang model.Language) bool {
	_, ok := c.variants[lang]
	return ok
}

// Languages returns the loaded languages in load order.
func (c *Catalog) Languages() []model.Language {
	out := make([]model.Language, len(c.langs))
	copy(out, c.langs)
	return out
}
