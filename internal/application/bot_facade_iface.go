package application

import "nomadlybot/internal/domain/model"

// ---- small interfaces to decouple the facade from concrete infra types ----
// These describe the minimal surface that the facade needs. Using interfaces
// enables tests to pass in light-weight mocks.

// Translator renders localized replies.
type Translator interface {
	T(lang model.Language, key string, args ...interface{}) string
	Plural(lang model.Language, key string, n int) string
}

// LanguageOption is one entry of the language picker.
type LanguageOption struct {
	Code  model.Language
	Label string
}
