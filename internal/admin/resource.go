package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/locvowork/xlsexport/pkg/xlsexport"
)

// Resource is one exportable collection.
type Resource struct {
	Name   string
	Schema xlsexport.Schema

	load     Loader
	defaults []xlsexport.Option

	// mu serializes builder access; a Builder is single-use at a time.
	mu      sync.Mutex
	builder *xlsexport.Builder
}

// XLSBuilder returns the resource's builder, creating it with the namespace
// defaults on first use.
func (r *Resource) XLSBuilder() *xlsexport.Builder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builderLocked()
}

func (r *Resource) builderLocked() *xlsexport.Builder {
	if r.builder == nil {
		r.builder = xlsexport.NewBuilder(r.Schema, r.defaults...)
	}
	return r.builder
}

// SetXLSBuilder replaces the resource's builder.
func (r *Resource) SetXLSBuilder(b *xlsexport.Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builder = b
}

// XLS replaces the builder with a fresh one built from options and then
// customized by configure. options uses the keys understood by
// xlsexport.OptionsFromMap.
//
//	posts.XLS(map[string]interface{}{"i18n_scope": "xls.post"}, func(b *xlsexport.Builder) {
//		b.DeleteColumns("body")
//		b.Column("author", authorName)
//	})
func (r *Resource) XLS(options map[string]interface{}, configure func(*xlsexport.Builder)) *xlsexport.Builder {
	opts := append(append([]xlsexport.Option{}, r.defaults...), xlsexport.OptionsFromMap(options)...)
	b := xlsexport.NewBuilder(r.Schema, opts...).Configure(configure)
	r.SetXLSBuilder(b)
	return b
}

// Configure runs fn against the current builder.
func (r *Resource) Configure(fn func(*xlsexport.Builder)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builderLocked().Configure(fn)
}

// Export loads the collection and serializes it with the resource builder.
func (r *Resource) Export(ctx context.Context, view xlsexport.ViewContext, opts ...ExportOption) ([]byte, error) {
	if r.load == nil {
		return nil, fmt.Errorf("resource %s has no loader", r.Name)
	}
	collection, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.builderLocked()
	var cfg exportConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.document != nil {
		prev := b.DocumentFactory()
		b.SetDocumentFactory(cfg.document)
		defer b.SetDocumentFactory(prev)
	}
	return b.Serialize(ctx, collection, view)
}

type exportConfig struct {
	document xlsexport.DocumentFactory
}

// ExportOption tunes a single Export call.
type ExportOption func(*exportConfig)

// AsDocument renders the export with factory instead of the builder's
// document type.
func AsDocument(factory xlsexport.DocumentFactory) ExportOption {
	return func(c *exportConfig) { c.document = factory }
}
