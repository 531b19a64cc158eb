// Package msg holds the localized label strings used by the built-in block types.
package msg

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	ListsCreateEmptyTitle    = "LISTS_CREATE_EMPTY_TITLE"
	ListsCreateWithInputWith = "LISTS_CREATE_WITH_INPUT_WITH"
	TextJoinTitleCreateWith  = "TEXT_JOIN_TITLE_CREATEWITH"
)

// supported lists the available languages; the first is the fallback.
var supported = []language.Tag{language.English, language.French, language.German}

var entries = map[language.Tag]map[string]string{
	language.English: {
		ListsCreateEmptyTitle:    "create empty list",
		ListsCreateWithInputWith: "create list with",
		TextJoinTitleCreateWith:  "create text with",
	},
	language.French: {
		ListsCreateEmptyTitle:    "créer une liste vide",
		ListsCreateWithInputWith: "créer une liste avec",
		TextJoinTitleCreateWith:  "créer un texte avec",
	},
	language.German: {
		ListsCreateEmptyTitle:    "Erzeuge eine leere Liste",
		ListsCreateWithInputWith: "Erzeuge Liste mit",
		TextJoinTitleCreateWith:  "Erstelle Text aus",
	},
}

// Catalog returns a catalog with every built-in translation.
// English is the fallback language.
func Catalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range entries {
		for key, text := range msgs {
			// SetString only fails for malformed keys; ours are constants.
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

// Localizer resolves message keys for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer matches the requested BCP 47 tag against the available
// languages. Unknown or malformed tags fall back to English.
func NewLocalizer(tag string) *Localizer {
	cat := Catalog()
	matcher := language.NewMatcher(supported)
	requested, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(requested) == 0 {
		requested = []language.Tag{language.English}
	}
	matched, _, _ := matcher.Match(requested...)
	base, _ := matched.Base()
	resolved := language.Make(base.String())
	return &Localizer{
		tag:     resolved,
		printer: message.NewPrinter(resolved, message.Catalog(cat)),
	}
}

// Tag returns the resolved language.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Text returns the translation for key. Unknown keys are returned unchanged.
func (l *Localizer) Text(key string) string {
	return l.printer.Sprintf(message.Key(key, key))
}
