package xlsexport

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Translator resolves a column name under a scope to a display label.
// A missing key is an error; no fallback is applied.
type Translator interface {
	Translate(key string, scope []string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(key string, scope []string) (string, error)

func (f TranslatorFunc) Translate(key string, scope []string) (string, error) {
	return f(key, scope)
}

// Humanize derives a label from a field name: a trailing _id is dropped,
// underscores become spaces and every word is capitalized.
// published_on becomes "Published On", author_id becomes "Author".
func Humanize(name string) string {
	s := strings.TrimSuffix(name, "_id")
	if s == "" {
		s = name
	}
	// Casers keep state, so each call gets its own.
	caser := cases.Title(language.Und, cases.NoLower)
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
