package translation

// TranslationCache maps original title text to its translation for one feed.
// A key is never removed once added.
type TranslationCache struct {
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

// NewTranslationCacheFrom creates a cache holding a copy of translations
func NewTranslationCacheFrom(translations map[string]string) *TranslationCache {
	tc := NewTranslationCache()
	for k, v := range translations {
		tc.translations[k] = v
	}
	return tc
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(title, translation string) {
	tc.translations[title] = translation
}

// Get retrieves a translation from the cache. The lookup is an exact,
// case and whitespace sensitive match.
func (tc *TranslationCache) Get(title string) (string, bool) {
	translation, ok := tc.translations[title]
	return translation, ok
}

// Len returns the number of cached titles
func (tc *TranslationCache) Len() int {
	return len(tc.translations)
}

// GetAll returns all cached translations
func (tc *TranslationCache) GetAll() map[string]string {
	// Return a copy to prevent external modification
	result := make(map[string]string, len(tc.translations))
	for k, v := range tc.translations {
		result[k] = v
	}
	return result
}
