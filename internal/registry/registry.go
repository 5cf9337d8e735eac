package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"factoriowiki/internal"
)

var (
	ErrNotFound      = errors.New("item not found in registry")
	ErrDuplicateCode = errors.New("item code already registered")
)

// NotFoundError carries near matches for an unknown name or code.
type NotFoundError struct {
	Query       string
	Suggestions []Suggestion
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q: %v", e.Query, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Registry is the ordered identity store backed by one CSV file. Locale is
// a lookup parameter, never registry state.
type Registry struct {
	path    string
	baseURL string
	items   []internal.Identity
	index   *Index
}

// Load reads path. A missing file yields an empty registry.
func Load(path, baseURL string) (*Registry, error) {
	items, err := readCSV(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("registry file not found, starting empty", "path", path)
		items = []internal.Identity{}
	} else if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	slog.Debug("registry loaded", "path", path, "items", len(items))
	return &Registry{path: path, baseURL: baseURL, items: items, index: BuildIndex(items)}, nil
}

func (r *Registry) Path() string { return r.path }

func (r *Registry) Len() int { return len(r.items) }

// Items returns a copy in insertion order.
func (r *Registry) Items() []internal.Identity {
	out := make([]internal.Identity, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Registry) FindByName(name string, locale internal.Locale) (internal.Identity, bool) {
	names, ok := r.index.ByName[locale]
	if !ok {
		return internal.Identity{}, false
	}
	pos, ok := names[strings.TrimSpace(name)]
	if !ok {
		return internal.Identity{}, false
	}
	return r.items[pos], true
}

func (r *Registry) FindByCode(code string) (internal.Identity, bool) {
	pos, ok := r.index.ByCode[strings.TrimSpace(code)]
	if !ok {
		return internal.Identity{}, false
	}
	return r.items[pos], true
}

// Resolve tries the display name first and falls back to the code.
func (r *Registry) Resolve(nameOrCode string, locale internal.Locale) (internal.Identity, bool) {
	if id, ok := r.FindByName(nameOrCode, locale); ok {
		return id, true
	}
	return r.FindByCode(nameOrCode)
}

// Lookup is Resolve with a NotFoundError carrying suggestions on a miss.
func (r *Registry) Lookup(nameOrCode string, locale internal.Locale) (internal.Identity, error) {
	if id, ok := r.Resolve(nameOrCode, locale); ok {
		return id, nil
	}
	return internal.Identity{}, &NotFoundError{Query: nameOrCode, Suggestions: r.Suggest(nameOrCode, locale)}
}

func (r *Registry) ResolveURL(nameOrCode string, locale internal.Locale) (string, bool) {
	id, ok := r.Resolve(nameOrCode, locale)
	if !ok {
		return "", false
	}
	return r.URLFor(id, locale), true
}

// URLFor returns the stored URL, or derives one from the code.
func (r *Registry) URLFor(id internal.Identity, locale internal.Locale) string {
	if id.URL != "" {
		return id.URL
	}
	return DeriveURL(r.baseURL, id.Code, locale)
}

// DeriveURL builds the canonical page address: base/<code> for en and
// base/<code>/<locale> otherwise.
func DeriveURL(baseURL, code string, locale internal.Locale) string {
	page := url.PathEscape(code)
	if locale != internal.LocaleEN {
		page += "/" + string(locale)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + page
	}
	// "./" keeps a code like "Tips:foo" from reading as a scheme.
	ref, err := url.Parse("./" + page)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + page
	}
	return base.ResolveReference(ref).String()
}

// Add appends one identity and rewrites the whole file.
func (r *Registry) Add(id internal.Identity) error {
	id.NameJA = strings.TrimSpace(id.NameJA)
	id.Code = strings.TrimSpace(id.Code)
	id.URL = strings.TrimSpace(id.URL)
	if id.NameJA == "" || id.Code == "" {
		return errors.New("name and code are required")
	}
	if _, exists := r.index.ByCode[id.Code]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, id.Code)
	}

	next := append(r.Items(), id)
	if err := writeCSV(r.path, next); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	r.items = next
	r.index.add(len(next)-1, id)
	slog.Info("registry item added", "code", id.Code, "name", id.NameJA, "path", r.path)
	return nil
}

// Replace swaps the whole contents, as the bootstrapper does. Later
// duplicates of a code are dropped.
func (r *Registry) Replace(items []internal.Identity) error {
	next := make([]internal.Identity, 0, len(items))
	seen := map[string]struct{}{}
	for _, it := range items {
		if _, dup := seen[it.Code]; dup || it.Code == "" {
			continue
		}
		seen[it.Code] = struct{}{}
		next = append(next, it)
	}
	if err := writeCSV(r.path, next); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	r.items = next
	r.index = BuildIndex(next)
	return nil
}
