package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"codeberg.org/snonux/rsstranslator/internal"
)

// ErrNotFound is returned by Load when the registry file does not exist
var ErrNotFound = errors.New("feed registry not found")

// Entry is one registered feed
type Entry struct {
	Name string
	URL  string
}

// Registry is the ordered feed list backed by a JSON file
type Registry struct {
	path    string
	entries []Entry
}

// New creates a registry for path holding entries. Nothing is written
// until Save is called.
func New(path string, entries []Entry) *Registry {
	r := &Registry{path: path}
	for _, e := range entries {
		r.set(e.Name, e.URL)
	}
	return r
}

// Load reads the registry file at path
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feed registry: %w", err)
	}

	entries, err := decodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed registry %s: %w", path, err)
	}

	for _, e := range entries {
		if !internal.ValidFeedName(e.Name) {
			return nil, fmt.Errorf("invalid feed name %q in %s", e.Name, path)
		}
	}

	return New(path, entries), nil
}

// LoadOrSeed loads the registry, writing the default feed list first if the
// file does not exist yet
func LoadOrSeed(path string) (*Registry, bool, error) {
	r, err := Load(path)
	if err == nil {
		return r, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	r, err = Seed(path)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Seed overwrites the registry file with the default feed list
func Seed(path string) (*Registry, error) {
	r := New(path, DefaultFeeds())
	if err := r.Save(); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeOrdered decodes a flat JSON object of strings keeping key order.
// A repeated key keeps its first position and its last value.
func decodeOrdered(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	r := &Registry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a feed name, got %v", tok)
		}

		var url string
		if err := dec.Decode(&url); err != nil {
			return nil, fmt.Errorf("feed %q: %w", name, err)
		}
		r.set(name, url)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the registry object")
	}

	return r.entries, nil
}

// Path returns the registry file path
func (r *Registry) Path() string {
	return r.path
}

// Entries returns the feeds in registry order
func (r *Registry) Entries() []Entry {
	result := make([]Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Lookup returns the entry registered under name
func (r *Registry) Lookup(name string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// HasURL reports whether url is already registered under any name
func (r *Registry) HasURL(url string) bool {
	for _, e := range r.entries {
		if e.URL == url {
			return true
		}
	}
	return false
}

// Add registers url under name and saves the registry. An existing name is
// updated in place. Returns false without saving if url is already
// registered.
func (r *Registry) Add(name, url string) (bool, error) {
	if !internal.ValidFeedName(name) {
		return false, fmt.Errorf("invalid feed name %q", name)
	}
	if strings.TrimSpace(url) == "" {
		return false, fmt.Errorf("feed URL must not be empty")
	}
	if r.HasURL(url) {
		return false, nil
	}

	r.set(name, url)
	if err := r.Save(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Registry) set(name, url string) {
	for i := range r.entries {
		if r.entries[i].Name == name {
			r.entries[i].URL = url
			return
		}
	}
	r.entries = append(r.entries, Entry{Name: name, URL: url})
}

// Save writes the registry as an indented JSON object in entry order
func (r *Registry) Save() error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		writeJSONString(&buf, e.Name)
		buf.WriteString(": ")
		writeJSONString(&buf, e.URL)
	}
	if len(r.entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")

	if err := internal.WriteFileAtomic(r.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save feed registry: %w", err)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail
	enc.Encode(s)
	// Drop the newline Encode appends
	buf.Truncate(buf.Len() - 1)
}
