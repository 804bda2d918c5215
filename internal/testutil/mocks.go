package testutil

import (
	"context"
	"fmt"

	"codeberg.org/snonux/rsstranslator/internal/translation"
)

// MockTranslator mocks the translation client
type MockTranslator struct {
	// Responses maps a title to its translation. Titles without a response
	// are translated by Translate, or to "[zh] <title>" if Translate is nil.
	Responses map[string]string
	Errors    map[string]error
	// Err fails every call when set
	Err       error
	Translate func(text string) string
	Calls     []string
}

// TranslateTitle mocks a translation call
func (m *MockTranslator) TranslateTitle(ctx context.Context, text string) (string, error) {
	m.Calls = append(m.Calls, text)

	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translated, ok := m.Responses[text]; ok {
		return translated, nil
	}
	if m.Translate != nil {
		return m.Translate(text), nil
	}

	return fmt.Sprintf("[zh] %s", text), nil
}

// MockFetcher mocks the feed fetcher
type MockFetcher struct {
	Feeds  map[string][]byte
	Errors map[string]error
	Calls  []string
}

// Fetch mocks downloading a feed
func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.Calls = append(m.Calls, url)

	if err, ok := m.Errors[url]; ok {
		return nil, err
	}
	if data, ok := m.Feeds[url]; ok {
		return data, nil
	}

	return nil, fmt.Errorf("no such feed: %s", url)
}

// MockStore keeps translation caches in memory
type MockStore struct {
	Caches    map[string]map[string]string
	LoadErrs  map[string]error
	SaveErr   error
	SaveCalls int
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{
		Caches:   make(map[string]map[string]string),
		LoadErrs: make(map[string]error),
	}
}

// Load returns a copy of the stored cache
func (m *MockStore) Load(feedName string) (*translation.TranslationCache, error) {
	if err, ok := m.LoadErrs[feedName]; ok {
		return nil, err
	}
	return translation.NewTranslationCacheFrom(m.Caches[feedName]), nil
}

// Save stores a copy of cache
func (m *MockStore) Save(feedName string, cache *translation.TranslationCache) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Caches[feedName] = cache.GetAll()
	return nil
}

// Close does nothing
func (m *MockStore) Close() error {
	return nil
}
