package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/locvowork/xlsexport/pkg/xlsexport"
	"gopkg.in/yaml.v2"
)

var (
	ErrUnknownResource   = errors.New("unknown resource")
	ErrDuplicateResource = errors.New("resource already registered")
)

// Loader fetches the collection a resource exports.
type Loader func(ctx context.Context) (interface{}, error)

// Namespace is the registry of exportable resources. Builders created by the
// namespace start from its default options.
type Namespace struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	defaults  []xlsexport.Option
}

func NewNamespace(defaults ...xlsexport.Option) *Namespace {
	return &Namespace{
		resources: make(map[string]*Resource),
		defaults:  defaults,
	}
}

// Register adds a resource under name.
func (n *Namespace) Register(name string, schema xlsexport.Schema, load Loader) (*Resource, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.resources[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateResource, name)
	}
	r := &Resource{
		Name:     name,
		Schema:   schema,
		load:     load,
		defaults: n.defaults,
	}
	n.resources[name] = r
	return r, nil
}

// Resource looks a resource up by name.
func (n *Namespace) Resource(name string) (*Resource, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	r, ok := n.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return r, nil
}

// Names lists the registered resources in name order.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	names := make([]string, 0, len(n.resources))
	for name := range n.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyExportConfig configures resource builders from a YAML document keyed
// by resource name:
//
//	posts:
//	  i18n_scope: [xls, post]
//	  header_format: {bold: true}
//	  delete_columns: [body]
func (n *Namespace) ApplyExportConfig(data []byte) error {
	var config map[string]xlsexport.Options
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("decode export config: %w", err)
	}

	names := make([]string, 0, len(config))
	for name := range config {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r, err := n.Resource(name)
		if err != nil {
			return err
		}
		r.Configure(config[name].Configure)
	}
	return nil
}

// ApplyExportConfigFile reads the export config from path.
func (n *Namespace) ApplyExportConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := n.ApplyExportConfig(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
