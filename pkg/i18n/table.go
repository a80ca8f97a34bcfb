// Package i18n loads nested YAML translation files and resolves keys under a
// scope, in the layout used by Rails locale files:
//
//	en:
//	  xls:
//	    post:
//	      title: Title
//	      published_on: Published on
package i18n

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// ErrMissingTranslation is matched by every lookup miss.
var ErrMissingTranslation = errors.New("translation missing")

// MissingTranslationError describes a lookup miss.
type MissingTranslationError struct {
	Locale string
	Key    string
	Scope  []string
}

func (e *MissingTranslationError) Error() string {
	path := append([]string{e.Locale}, e.Scope...)
	path = append(path, e.Key)
	return fmt.Sprintf("translation missing: %s", strings.Join(path, "."))
}

func (e *MissingTranslationError) Is(target error) bool {
	return target == ErrMissingTranslation
}

// Table holds the translations of every loaded locale.
type Table struct {
	mu     sync.RWMutex
	locale string
	data   map[string]map[interface{}]interface{}
}

// NewTable returns an empty table whose active locale is locale.
func NewTable(locale string) *Table {
	return &Table{
		locale: canonical(locale),
		data:   make(map[string]map[interface{}]interface{}),
	}
}

// canonical normalizes a locale tag, e.g. "en_us" becomes "en-US".
func canonical(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return locale
	}
	return tag.String()
}

// Locale returns the active locale.
func (t *Table) Locale() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locale
}

// SetLocale changes the active locale.
func (t *Table) SetLocale(locale string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locale = canonical(locale)
}

// Locales lists the loaded locales.
func (t *Table) Locales() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.data))
	for l := range t.data {
		out = append(out, l)
	}
	return out
}

// Load merges the YAML document read from r into the table. Top level keys
// are locales.
func (t *Table) Load(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var doc map[string]map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for locale, tree := range doc {
		locale = canonical(locale)
		if existing, ok := t.data[locale]; ok {
			deepMerge(existing, tree)
			continue
		}
		t.data[locale] = tree
	}
	return nil
}

// LoadFile merges one YAML file into the table.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := t.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDir merges every .yml and .yaml file of dir, in name order.
func (t *Table) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		if err := t.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Translate looks key up under scope in the active locale.
func (t *Table) Translate(key string, scope []string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	miss := &MissingTranslationError{Locale: t.locale, Key: key, Scope: scope}
	node, ok := t.data[t.locale]
	if !ok {
		return "", miss
	}
	for _, part := range scope {
		child, ok := node[part].(map[interface{}]interface{})
		if !ok {
			return "", miss
		}
		node = child
	}

	switch v := node[key].(type) {
	case nil:
		return "", miss
	case string:
		return v, nil
	case map[interface{}]interface{}:
		// Scopes are not labels.
		return "", miss
	default:
		return fmt.Sprint(v), nil
	}
}

func deepMerge(dst, src map[interface{}]interface{}) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[interface{}]interface{})
		dstMap, dstIsMap := dst[k].(map[interface{}]interface{})
		if srcIsMap && dstIsMap {
			deepMerge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
