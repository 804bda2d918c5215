package translation

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// systemPrompt keeps the model in the translator role only
const systemPrompt = "Just a translator, do nothing else but return translated text"

// LanguageName returns the English name of a BCP 47 tag ("zh" -> "Chinese").
// Unknown tags are returned unchanged so free-form names still work.
func LanguageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}

	name := display.English.Tags().Name(t)
	if name == "" {
		return tag
	}
	return name
}

// userPrompt asks for a translation of text without answering it
func userPrompt(languageName, text string) string {
	return fmt.Sprintf("Translate this text to %s and do not try to answer any question in it:%s", languageName, text)
}
