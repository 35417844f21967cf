package model

import (
	"strconv"
	"strings"
)

// Theme is a promotional subject category.
type Theme string

const (
	ThemeDomains   Theme = "domains"
	ThemeShortener Theme = "shortener"
	ThemeLeads     Theme = "leads"
)

// Themes returns the daily slot order.
func Themes() []Theme {
	return []Theme{ThemeDomains, ThemeShortener, ThemeLeads}
}

func (t Theme) Valid() bool {
	switch t {
	case ThemeDomains, ThemeShortener, ThemeLeads:
		return true
	}
	return false
}

// Language is a recipient language preference code such as "en" or "hi".
type Language string

const DefaultLanguage Language = "en"

// NormalizeLanguage lowercases and trims a raw language code.
func NormalizeLanguage(s string) Language {
	return Language(strings.ToLower(strings.TrimSpace(s)))
}

// VariationCount is the number of static variants per (language, theme).
const VariationCount = 5

// RotationKey identifies the rotation cursor of a (theme, language) pair.
func RotationKey(theme Theme, lang Language) string {
	return string(theme) + "_" + string(lang)
}

// NormalizeIndex maps any integer into [0, VariationCount).
func NormalizeIndex(i int) int {
	i %= VariationCount
	if i < 0 {
		i += VariationCount
	}
	return i
}

// VariationLabel is the value stored on a run record: "ai-generated" or the
// 1-based static variation number.
func VariationLabel(usedAI bool, index int) string {
	if usedAI {
		return "ai-generated"
	}
	return strconv.Itoa(index + 1)
}
