//go:build !integration

package i18n

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
)

func fiveOf(prefix string) string {
	var sb strings.Builder
	for i := 1; i <= 5; i++ {
		sb.WriteString("  - \"" + prefix + string(rune('0'+i)) + "\"\n")
	}
	return sb.String()
}

func catalogYAML(prefix string) string {
	return "domains:\n" + fiveOf(prefix+"d") + "shortener:\n" + fiveOf(prefix+"s") + "leads:\n" + fiveOf(prefix+"l")
}

func TestLoadCatalog(t *testing.T) {
	t.Run("should load the embedded catalog", func(t *testing.T) {
		c, err := LoadCatalog(PromosFS, []model.Language{"en", "fr", "zh", "hi"})
		if err != nil {
			t.Fatalf("LoadCatalog failed: %v", err)
		}
		if !strings.Contains(c.Variant("en", model.ThemeDomains, 0), "YOUR WEBSITE, YOUR RULES") {
			t.Errorf("unexpected first english domains variant: %q", c.Variant("en", model.ThemeDomains, 0))
		}
		for _, l := range c.Languages() {
			for _, th := range model.Themes() {
				if !strings.Contains(c.Variant(l, th, 4), "@hostbay_bot") {
					t.Errorf("%s/%s variant 5 lacks the cross-promo handle", l, th)
				}
			}
		}
	})

	t.Run("should reject a theme with the wrong variant count", func(t *testing.T) {
		fsys := fstest.MapFS{
			"promos/en.yaml": {Data: []byte("domains:\n  - a\nshortener:\n" + fiveOf("s") + "leads:\n" + fiveOf("l"))},
		}
		_, err := LoadCatalog(fsys, []model.Language{"en"})
		if !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("should reject an empty variant", func(t *testing.T) {
		y := strings.Replace(catalogYAML("x"), "\"xl3\"", "\"  \"", 1)
		fsys := fstest.MapFS{"promos/en.yaml": {Data: []byte(y)}}
		if _, err := LoadCatalog(fsys, []model.Language{"en"}); !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("should reject a missing language file", func(t *testing.T) {
		fsys := fstest.MapFS{"promos/en.yaml": {Data: []byte(catalogYAML("e"))}}
		if _, err := LoadCatalog(fsys, []model.Language{"en", "de"}); !errors.Is(err, domain.ErrInvalidCatalog) {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})
}

func TestCatalogVariant(t *testing.T) {
	fsys := fstest.MapFS{
		"promos/en.yaml": {Data: []byte(catalogYAML("e"))},
		"promos/fr.yaml": {Data: []byte(catalogYAML("f"))},
	}
	c, err := LoadCatalog(fsys, []model.Language{"en", "fr"})
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	if got := c.Variant("fr", model.ThemeLeads, 2); got != "fl3" {
		t.Errorf("got %q, want fl3", got)
	}
	if got := c.Variant("fr", model.ThemeShortener, 7); got != "fs3" {
		t.Errorf("index should wrap, got %q", got)
	}
	if got := c.Variant("de", model.ThemeDomains, 0); got != "ed1" {
		t.Errorf("unknown language should fall back to en, got %q", got)
	}
	if !c.Supports("fr") || c.Supports("de") {
		t.Error("unexpected Supports result")
	}
}
